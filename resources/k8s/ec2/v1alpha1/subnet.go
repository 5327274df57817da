package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Subnet represents an ACK EC2 Subnet resource.
// +kubebuilder:object:root=true
type Subnet struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec SubnetSpec `json:"spec,omitempty"`
}

// SubnetSpec defines the desired state of a Subnet.
type SubnetSpec struct {
	// AvailabilityZone is the Availability Zone for the subnet.
	AvailabilityZone *string `json:"availabilityZone,omitempty"`

	// CIDRBlock is the IPv4 CIDR block for the subnet.
	CIDRBlock *string `json:"cidrBlock,omitempty"`

	// VPCRef is a reference to a VPC resource.
	VPCRef *AWSResourceReferenceWrapper `json:"vpcRef,omitempty"`

	// MapPublicIPOnLaunch indicates whether instances receive public IPs.
	MapPublicIPOnLaunch *bool `json:"mapPublicIPOnLaunch,omitempty"`

	// RouteTableRefs associates the subnet with route tables.
	RouteTableRefs []*AWSResourceReferenceWrapper `json:"routeTableRefs,omitempty"`

	Tags []*Tag `json:"tags,omitempty"`
}
