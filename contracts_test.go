package netgraph

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors_Is(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name:     "duplicate name",
			err:      &DuplicateNameError{Kind: KindSubnet, Name: "sn-1"},
			sentinel: ErrDuplicateName,
			message:  `duplicate Subnet name "sn-1"`,
		},
		{
			name:     "unresolved reference",
			err:      &UnresolvedReferenceError{Kind: KindSubnet, Name: "sn-1", Target: KindRouteTable, Ref: "rtb"},
			sentinel: ErrUnresolvedReference,
			message:  `Subnet "sn-1" references undefined RouteTable "rtb"`,
		},
		{
			name:     "unresolved without ref",
			err:      &UnresolvedReferenceError{Kind: KindRoute, Name: "r0", Target: KindGateway},
			sentinel: ErrUnresolvedReference,
			message:  `Route "r0": no Gateway to resolve against`,
		},
		{
			name:     "cycle",
			err:      &CyclicReferenceError{Cycle: []string{"A", "B", "A"}},
			sentinel: ErrCyclicReference,
			message:  "circular dependency detected: A → B → A",
		},
		{
			name:     "phase order",
			err:      &PhaseOrderError{Phase: "Routes", Missing: "Gateway"},
			sentinel: ErrPhaseOrder,
			message:  "phase Routes requires phase Gateway to complete first",
		},
	}

	sentinels := []error{ErrDuplicateName, ErrUnresolvedReference, ErrCyclicReference, ErrPhaseOrder}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())

			wrapped := fmt.Errorf("building: %w", tt.err)
			for _, s := range sentinels {
				assert.Equal(t, s == tt.sentinel, errors.Is(wrapped, s), "errors.Is(%v)", s)
			}
		})
	}
}

func TestErrors_As(t *testing.T) {
	err := errors.Join(
		&DuplicateNameError{Kind: KindSecurityGroup, Name: "sg"},
		&UnresolvedReferenceError{Kind: KindSubnet, Name: "sn", Target: KindRouteTable, Ref: "rtb"},
	)

	var unresolved *UnresolvedReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "rtb", unresolved.Ref)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestCyclicReferenceError_Empty(t *testing.T) {
	assert.Equal(t, "circular dependency detected", (&CyclicReferenceError{}).Error())
}

func TestTemplate_JSON(t *testing.T) {
	tmpl := Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]ResourceDef{
			"EcsStackVpc": {Type: "AWS::EC2::VPC", Properties: map[string]any{"CidrBlock": "10.0.0.0/16"}},
		},
		Outputs: map[string]Output{
			"EcsVpcId": {Value: map[string]any{"Ref": "EcsStackVpc"}, Export: &OutputExport{Name: "stack-EcsVpcId"}},
		},
	}

	data, err := json.Marshal(tmpl)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"AWSTemplateFormatVersion": "2010-09-09",
		"Resources": {"EcsStackVpc": {"Type": "AWS::EC2::VPC", "Properties": {"CidrBlock": "10.0.0.0/16"}}},
		"Outputs": {"EcsVpcId": {"Value": {"Ref": "EcsStackVpc"}, "Export": {"Name": "stack-EcsVpcId"}}}
	}`, string(data))
}

func TestListResource_JSON(t *testing.T) {
	data, err := json.Marshal(ListResource{Name: "ecs-stack-vpc", LogicalID: "EcsStackVpc", Kind: KindNetwork, Phase: "network"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"ecs-stack-vpc","logical_id":"EcsStackVpc","kind":"Network","phase":"network"}`, string(data))
}
