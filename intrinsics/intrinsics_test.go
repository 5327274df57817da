package intrinsics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRef_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Ref{LogicalName: "EcsStackVpc"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Ref": "EcsStackVpc"}`, string(data))
}

func TestGetAtt_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(GetAtt{LogicalName: "EcsStackSg", Attribute: "GroupId"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fn::GetAtt": ["EcsStackSg", "GroupId"]}`, string(data))
}

func TestSub_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Sub{String: "${AWS::StackName}-VpcId"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fn::Sub": "${AWS::StackName}-VpcId"}`, string(data))
}

func TestPseudoParameters(t *testing.T) {
	data, err := json.Marshal(AWS_STACK_NAME)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Ref": "AWS::StackName"}`, string(data))
}

func TestNameTags(t *testing.T) {
	tags := NameTags("ecs-stack-vpc", map[string]string{"team": "platform", "env": "dev", "Name": "ignored"})

	require.Len(t, tags, 3)
	assert.Equal(t, Tag{Key: "Name", Value: "ecs-stack-vpc"}, tags[0])
	assert.Equal(t, "env", tags[1].Key)
	assert.Equal(t, "team", tags[2].Key)
}

func TestNameTags_NoExtra(t *testing.T) {
	assert.Equal(t, []Tag{{Key: "Name", Value: "ecs-stack-igw"}}, NameTags("ecs-stack-igw", nil))
}
