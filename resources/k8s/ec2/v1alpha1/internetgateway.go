package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// InternetGateway represents an ACK EC2 InternetGateway resource. Setting VPCRef
// attaches the gateway; there is no separate attachment resource.
// +kubebuilder:object:root=true
type InternetGateway struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec InternetGatewaySpec `json:"spec,omitempty"`
}

// InternetGatewaySpec defines the desired state of an InternetGateway.
type InternetGatewaySpec struct {
	VPCRef *AWSResourceReferenceWrapper `json:"vpcRef,omitempty"`
	Tags   []*Tag                       `json:"tags,omitempty"`
}
