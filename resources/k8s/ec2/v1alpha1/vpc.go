package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// GroupVersion is the API version of every type in this package.
const GroupVersion = "ec2.services.k8s.aws/v1alpha1"

// Kinds of the EC2 custom resources.
const (
	KindVPC             = "VPC"
	KindInternetGateway = "InternetGateway"
	KindSubnet          = "Subnet"
	KindRouteTable      = "RouteTable"
	KindSecurityGroup   = "SecurityGroup"
)

// TypeMeta returns the type header for kind.
func TypeMeta(kind string) metav1.TypeMeta {
	return metav1.TypeMeta{APIVersion: GroupVersion, Kind: kind}
}

// VPC represents an ACK EC2 VPC resource.
// +kubebuilder:object:root=true
type VPC struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec VPCSpec `json:"spec,omitempty"`
}

// VPCSpec defines the desired state of a VPC.
type VPCSpec struct {
	// CIDRBlocks are the IPv4 CIDR blocks for the VPC.
	CIDRBlocks []*string `json:"cidrBlocks,omitempty"`

	EnableDNSHostnames *bool `json:"enableDNSHostnames,omitempty"`
	EnableDNSSupport   *bool `json:"enableDNSSupport,omitempty"`

	Tags []*Tag `json:"tags,omitempty"`
}

// Tag represents an AWS tag.
type Tag struct {
	Key   *string `json:"key,omitempty"`
	Value *string `json:"value,omitempty"`
}

// AWSResourceReferenceWrapper wraps a reference to another ACK resource.
type AWSResourceReferenceWrapper struct {
	From *AWSResourceReference `json:"from,omitempty"`
}

// AWSResourceReference names an ACK resource in the same namespace.
type AWSResourceReference struct {
	Name *string `json:"name,omitempty"`
}

// RefTo returns a reference to the resource named name.
func RefTo(name string) *AWSResourceReferenceWrapper {
	return &AWSResourceReferenceWrapper{From: &AWSResourceReference{Name: String(name)}}
}

// String returns a pointer to s.
func String(s string) *string { return &s }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Int64 returns a pointer to n.
func Int64(n int64) *int64 { return &n }
