// Package v1alpha1 contains the ACK EC2 resource types the netgraph ACK emitter renders.
//
// Only the desired-state (spec) half of each custom resource is modelled; status is
// owned by the controller and never emitted. Cross-references between resources use
// the `*Ref.from.name` form so the controller resolves identifiers at reconcile time.
//
// Example usage:
//
//	import (
//		ec2v1alpha1 "github.com/lex00/netgraph-go/resources/k8s/ec2/v1alpha1"
//		metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
//	)
//
//	var vpc = ec2v1alpha1.VPC{
//		TypeMeta: ec2v1alpha1.TypeMeta(ec2v1alpha1.KindVPC),
//		ObjectMeta: metav1.ObjectMeta{
//			Name:      "ecs-stack-vpc",
//			Namespace: "ack-system",
//		},
//		Spec: ec2v1alpha1.VPCSpec{
//			CIDRBlocks:         []*string{ec2v1alpha1.String("10.0.0.0/16")},
//			EnableDNSHostnames: ec2v1alpha1.Bool(true),
//		},
//	}
package v1alpha1
