package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// SecurityGroup represents an ACK EC2 SecurityGroup resource.
// +kubebuilder:object:root=true
type SecurityGroup struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec SecurityGroupSpec `json:"spec,omitempty"`
}

// SecurityGroupSpec defines the desired state of a SecurityGroup.
type SecurityGroupSpec struct {
	// Description is the description for the security group.
	Description *string `json:"description,omitempty"`

	// Name is the name of the security group.
	Name *string `json:"name,omitempty"`

	// VPCRef is a reference to a VPC resource.
	VPCRef *AWSResourceReferenceWrapper `json:"vpcRef,omitempty"`

	// IngressRules are the inbound rules.
	IngressRules []*IPPermission `json:"ingressRules,omitempty"`

	// Tags are key-value pairs to categorize resources.
	Tags []*Tag `json:"tags,omitempty"`
}

// IPPermission describes an IP permission (security group rule).
type IPPermission struct {
	// FromPort is the start of the port range.
	FromPort *int64 `json:"fromPort,omitempty"`

	// ToPort is the end of the port range.
	ToPort *int64 `json:"toPort,omitempty"`

	// IPProtocol is the IP protocol name or number.
	IPProtocol *string `json:"ipProtocol,omitempty"`

	// IPRanges are the IPv4 ranges.
	IPRanges []*IPRange `json:"ipRanges,omitempty"`

	// IPv6Ranges are the IPv6 ranges.
	IPv6Ranges []*IPv6Range `json:"ipv6Ranges,omitempty"`
}

// IPRange describes an IPv4 address range.
type IPRange struct {
	// CIDRIP is the IPv4 CIDR range.
	CIDRIP *string `json:"cidrIP,omitempty"`

	// Description is a description for the rule.
	Description *string `json:"description,omitempty"`
}

// IPv6Range describes an IPv6 address range.
type IPv6Range struct {
	// CIDRIPv6 is the IPv6 CIDR range.
	CIDRIPv6 *string `json:"cidrIPv6,omitempty"`

	// Description is a description for the rule.
	Description *string `json:"description,omitempty"`
}
