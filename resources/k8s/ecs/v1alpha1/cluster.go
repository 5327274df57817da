// Package v1alpha1 contains the ACK ECS resource types the netgraph ACK emitter renders.
package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// GroupVersion is the API version of every type in this package.
const GroupVersion = "ecs.services.k8s.aws/v1alpha1"

// KindCluster is the kind of the ECS cluster custom resource.
const KindCluster = "Cluster"

// Cluster represents an ACK ECS Cluster resource.
// +kubebuilder:object:root=true
type Cluster struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec ClusterSpec `json:"spec,omitempty"`
}

// ClusterSpec defines the desired state of a Cluster.
type ClusterSpec struct {
	// Name is the cluster name. The controller defaults it to the object name.
	Name *string `json:"name,omitempty"`

	// CapacityProviders are the short names of the providers, e.g. FARGATE.
	CapacityProviders []*string `json:"capacityProviders,omitempty"`

	Settings []*ClusterSetting `json:"settings,omitempty"`
	Tags     []*Tag            `json:"tags,omitempty"`
}

// ClusterSetting is a cluster-level setting such as containerInsights.
type ClusterSetting struct {
	Name  *string `json:"name,omitempty"`
	Value *string `json:"value,omitempty"`
}

// Tag represents an ECS tag.
type Tag struct {
	Key   *string `json:"key,omitempty"`
	Value *string `json:"value,omitempty"`
}
