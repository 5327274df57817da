package differ

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	netgraph "github.com/lex00/netgraph-go"
	"github.com/lex00/netgraph-go/internal/builder"
	"github.com/lex00/netgraph-go/internal/config"
	"github.com/lex00/netgraph-go/internal/template"
)

func synthesize(t *testing.T, cfg *config.Config) *netgraph.Template {
	t.Helper()
	g, err := builder.Build(cfg)
	require.NoError(t, err)
	tmpl, err := template.NewBuilder(g).Build()
	require.NoError(t, err)
	return tmpl
}

func TestCompare(t *testing.T) {
	t1 := &netgraph.Template{
		Resources: map[string]netgraph.ResourceDef{
			"PublicSn":  {Type: "AWS::EC2::Subnet", Properties: map[string]any{"CidrBlock": "10.0.1.0/24"}},
			"PrivateSn": {Type: "AWS::EC2::Subnet", Properties: map[string]any{"CidrBlock": "10.0.2.0/24"}},
		},
	}
	t2 := &netgraph.Template{
		Resources: map[string]netgraph.ResourceDef{
			"PublicSn": {Type: "AWS::EC2::Subnet", Properties: map[string]any{"CidrBlock": "10.0.9.0/24"}},
			"DataSn":   {Type: "AWS::EC2::Subnet", Properties: map[string]any{"CidrBlock": "10.0.3.0/24"}},
		},
	}

	result, err := Compare(t1, t2, Options{})
	require.NoError(t, err)

	require.Len(t, result.Diff.Removed, 1)
	assert.Equal(t, "PrivateSn", result.Diff.Removed[0].Resource)
	require.Len(t, result.Diff.Added, 1)
	assert.Equal(t, "DataSn", result.Diff.Added[0].Resource)
	require.Len(t, result.Diff.Modified, 1)
	assert.Equal(t, "PublicSn", result.Diff.Modified[0].Resource)
	assert.Equal(t, []string{"CidrBlock modified"}, result.Diff.Modified[0].Changes)
	assert.Equal(t, 3, result.Summary.Total)
	assert.False(t, result.Identical())
}

func TestCompare_SynthesisIsDeterministic(t *testing.T) {
	result, err := Compare(synthesize(t, config.Default()), synthesize(t, config.Default()), Options{})
	require.NoError(t, err)
	assert.True(t, result.Identical(), "diff: %+v", result.Diff)
}

func TestCompare_ConfigChange(t *testing.T) {
	changed := config.Default()
	sn := changed.Subnets[config.DefaultPrivateSubnet1]
	sn.CIDRBlock = "10.0.42.0/24"
	changed.Subnets[config.DefaultPrivateSubnet1] = sn
	delete(changed.Subnets, config.DefaultPublicSubnet2)

	result, err := Compare(synthesize(t, config.Default()), synthesize(t, changed), Options{})
	require.NoError(t, err)

	require.Len(t, result.Diff.Modified, 1)
	assert.Equal(t, "EcsStackPrivateSn1", result.Diff.Modified[0].Resource)
	assert.Contains(t, result.Diff.Modified[0].Changes, "CidrBlock modified")

	var removed []string
	for _, e := range result.Diff.Removed {
		removed = append(removed, e.Resource)
	}
	assert.ElementsMatch(t, []string{"EcsStackPublicSn2", "EcsStackPublicSn2EcsStackPublicRtb"}, removed)
	assert.Empty(t, result.Diff.Added)
}

func TestCompare_NilTemplate(t *testing.T) {
	result, err := Compare(nil, &netgraph.Template{}, Options{})
	require.NoError(t, err)
	assert.True(t, result.Identical())
}

func TestCompare_TypeChange(t *testing.T) {
	t1 := &netgraph.Template{Resources: map[string]netgraph.ResourceDef{"Gw": {Type: "AWS::EC2::InternetGateway"}}}
	t2 := &netgraph.Template{Resources: map[string]netgraph.ResourceDef{"Gw": {Type: "AWS::EC2::NatGateway"}}}

	result, err := Compare(t1, t2, Options{})
	require.NoError(t, err)
	require.Len(t, result.Diff.Modified, 1)
	assert.Contains(t, result.Diff.Modified[0].Changes, "Type changed: AWS::EC2::InternetGateway → AWS::EC2::NatGateway")
}

func TestCompare_DependsOn(t *testing.T) {
	t1 := &netgraph.Template{Resources: map[string]netgraph.ResourceDef{"Route": {Type: "AWS::EC2::Route"}}}
	t2 := &netgraph.Template{Resources: map[string]netgraph.ResourceDef{
		"Route": {Type: "AWS::EC2::Route", DependsOn: []string{"IgwAttachment"}},
	}}

	result, err := Compare(t1, t2, Options{})
	require.NoError(t, err)
	require.Len(t, result.Diff.Modified, 1)
	assert.Equal(t, []string{"DependsOn changed"}, result.Diff.Modified[0].Changes)
}

func TestCompare_Outputs(t *testing.T) {
	t1 := &netgraph.Template{Outputs: map[string]netgraph.Output{
		"EcsVpcId":       {Value: map[string]any{"Ref": "Vpc"}},
		"EcsClusterName": {Value: map[string]any{"Ref": "Cluster"}},
	}}
	t2 := &netgraph.Template{Outputs: map[string]netgraph.Output{
		"EcsVpcId": {
			Value:  map[string]any{"Ref": "Vpc"},
			Export: &netgraph.OutputExport{Name: "stack-EcsVpcId"},
		},
	}}

	result, err := Compare(t1, t2, Options{})
	require.NoError(t, err)
	require.Len(t, result.Diff.Removed, 1)
	assert.Equal(t, netgraph.DiffEntry{Resource: "EcsClusterName", Type: outputType}, result.Diff.Removed[0])
	require.Len(t, result.Diff.Modified, 1)
	assert.Equal(t, []string{"Export modified"}, result.Diff.Modified[0].Changes)
}

func TestCompare_IgnoreOrder(t *testing.T) {
	t1 := &netgraph.Template{Resources: map[string]netgraph.ResourceDef{
		"Cluster": {Type: "AWS::ECS::Cluster", Properties: map[string]any{"CapacityProviders": []any{"FARGATE", "FARGATE_SPOT"}}},
	}}
	t2 := &netgraph.Template{Resources: map[string]netgraph.ResourceDef{
		"Cluster": {Type: "AWS::ECS::Cluster", Properties: map[string]any{"CapacityProviders": []any{"FARGATE_SPOT", "FARGATE"}}},
	}}

	strict, err := Compare(t1, t2, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, strict.Summary.Modified)

	relaxed, err := Compare(t1, t2, Options{IgnoreOrder: true})
	require.NoError(t, err)
	assert.True(t, relaxed.Identical())
}

func TestCompareProperties(t *testing.T) {
	tests := []struct {
		name   string
		props1 map[string]any
		props2 map[string]any
		want   []string
	}{
		{
			name:   "identical",
			props1: map[string]any{"CidrBlock": "10.0.0.0/16"},
			props2: map[string]any{"CidrBlock": "10.0.0.0/16"},
		},
		{
			name:   "added property",
			props1: map[string]any{},
			props2: map[string]any{"EnableDnsSupport": true},
			want:   []string{"EnableDnsSupport added"},
		},
		{
			name:   "removed property",
			props1: map[string]any{"EnableDnsSupport": true},
			props2: map[string]any{},
			want:   []string{"EnableDnsSupport removed"},
		},
		{
			name:   "nested intrinsic",
			props1: map[string]any{"VpcId": map[string]any{"Ref": "VpcA"}},
			props2: map[string]any{"VpcId": map[string]any{"Ref": "VpcB"}},
			want:   []string{"VpcId.Ref modified"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compareProperties("", tt.props1, tt.props2, Options{}))
		})
	}
}

func TestCompareFiles(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "a.json")
	yamlPath := filepath.Join(dir, "b.yaml")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
  "AWSTemplateFormatVersion": "2010-09-09",
  "Resources": {"Vpc": {"Type": "AWS::EC2::VPC", "Properties": {"CidrBlock": "10.0.0.0/16"}}}
}`), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte(`AWSTemplateFormatVersion: "2010-09-09"
Resources:
  Vpc:
    Type: AWS::EC2::VPC
    Properties:
      CidrBlock: 10.0.0.0/16
`), 0o644))

	result, err := CompareFiles(jsonPath, yamlPath, Options{})
	require.NoError(t, err)
	assert.True(t, result.Identical())

	_, err = CompareFiles(filepath.Join(dir, "missing.json"), yamlPath, Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEqualStringSlices(t *testing.T) {
	assert.True(t, equalStringSlices(nil, nil))
	assert.True(t, equalStringSlices([]string{}, nil))
	assert.True(t, equalStringSlices([]string{"a", "b"}, []string{"a", "b"}))
	assert.False(t, equalStringSlices([]string{"a"}, []string{"b"}))
	assert.False(t, equalStringSlices([]string{"a"}, []string{"a", "b"}))
}
