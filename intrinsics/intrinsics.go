// Package intrinsics provides the CloudFormation intrinsic functions the template
// emitter resolves references with.
//
//	Ref{"EcsStackVpc"}                     → {"Ref": "EcsStackVpc"}
//	GetAtt{"EcsStackSg", "GroupId"}        → {"Fn::GetAtt": ["EcsStackSg", "GroupId"]}
//	Sub{"${AWS::StackName}-VpcId"}         → {"Fn::Sub": "${AWS::StackName}-VpcId"}
package intrinsics

import (
	"sort"

	"github.com/lex00/cloudformation-schema-go/intrinsics"
)

type (
	// Ref represents a CloudFormation Ref intrinsic function.
	Ref = intrinsics.Ref

	// GetAtt represents a CloudFormation Fn::GetAtt intrinsic function.
	GetAtt = intrinsics.GetAtt

	// Sub represents a CloudFormation Fn::Sub intrinsic function.
	Sub = intrinsics.Sub

	// Join represents a CloudFormation Fn::Join intrinsic function.
	Join = intrinsics.Join

	// Tag represents a CloudFormation resource tag.
	Tag = intrinsics.Tag
)

// Pseudo-parameters used in exports and descriptions.
var (
	AWS_REGION     = intrinsics.AWS_REGION
	AWS_STACK_NAME = intrinsics.AWS_STACK_NAME
)

// NameTags returns a Name tag for name followed by extra in key order.
// An extra "Name" key does not override the logical name.
func NameTags(name string, extra map[string]string) []Tag {
	tags := []Tag{{Key: "Name", Value: name}}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		if k == "Name" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		tags = append(tags, Tag{Key: k, Value: extra[k]})
	}
	return tags
}
