package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// RouteTable represents an ACK EC2 RouteTable resource. Routes are declared inline.
// +kubebuilder:object:root=true
type RouteTable struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec RouteTableSpec `json:"spec,omitempty"`
}

// RouteTableSpec defines the desired state of a RouteTable.
type RouteTableSpec struct {
	VPCRef *AWSResourceReferenceWrapper `json:"vpcRef,omitempty"`
	Routes []*CreateRouteInput          `json:"routes,omitempty"`
	Tags   []*Tag                       `json:"tags,omitempty"`
}

// CreateRouteInput is one route. Exactly one destination and one target are set.
type CreateRouteInput struct {
	DestinationCIDRBlock     *string `json:"destinationCIDRBlock,omitempty"`
	DestinationIPv6CIDRBlock *string `json:"destinationIPv6CIDRBlock,omitempty"`

	GatewayRef             *AWSResourceReferenceWrapper `json:"gatewayRef,omitempty"`
	NATGatewayID           *string                      `json:"natGatewayID,omitempty"`
	VPCPeeringConnectionID *string                      `json:"vpcPeeringConnectionID,omitempty"`
}
