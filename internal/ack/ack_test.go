package ack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	"github.com/lex00/netgraph-go/internal/builder"
	"github.com/lex00/netgraph-go/internal/config"
	ec2v1alpha1 "github.com/lex00/netgraph-go/resources/k8s/ec2/v1alpha1"
	ecsv1alpha1 "github.com/lex00/netgraph-go/resources/k8s/ecs/v1alpha1"
)

func emitDefault(t *testing.T) *Emitter {
	t.Helper()
	g, err := builder.Build(config.Default())
	require.NoError(t, err)
	return NewEmitter(g)
}

func byName[T any](t *testing.T, objects []any, name string) T {
	t.Helper()
	for _, obj := range objects {
		if typed, ok := obj.(T); ok {
			var meta any = typed
			if m, ok := meta.(interface{ GetName() string }); ok && m.GetName() == name {
				return typed
			}
		}
	}
	var zero T
	t.Fatalf("object %s not found", name)
	return zero
}

func TestEmitter_Objects_FoldsLinkResources(t *testing.T) {
	objects, err := emitDefault(t).Objects()
	require.NoError(t, err)

	// 14 graph nodes minus the attachment, the route and three associations.
	assert.Len(t, objects, 9)
	_, first := objects[0].(*ec2v1alpha1.VPC)
	assert.True(t, first, "network is emitted first")
	_, last := objects[len(objects)-1].(*ecsv1alpha1.Cluster)
	assert.True(t, last, "cluster is emitted last")
}

func TestEmitter_Objects_References(t *testing.T) {
	objects, err := emitDefault(t).Objects()
	require.NoError(t, err)

	igw := byName[*ec2v1alpha1.InternetGateway](t, objects, "ecs-stack-igw")
	require.NotNil(t, igw.Spec.VPCRef)
	assert.Equal(t, "ecs-stack-vpc", *igw.Spec.VPCRef.From.Name)

	sn := byName[*ec2v1alpha1.Subnet](t, objects, "ecs-stack-private-sn-1")
	assert.Equal(t, "10.0.4.0/24", *sn.Spec.CIDRBlock)
	assert.False(t, *sn.Spec.MapPublicIPOnLaunch)
	require.Len(t, sn.Spec.RouteTableRefs, 1)
	assert.Equal(t, "ecs-stack-public-rtb", *sn.Spec.RouteTableRefs[0].From.Name)

	rtb := byName[*ec2v1alpha1.RouteTable](t, objects, "ecs-stack-public-rtb")
	require.Len(t, rtb.Spec.Routes, 1)
	assert.Equal(t, "0.0.0.0/0", *rtb.Spec.Routes[0].DestinationCIDRBlock)
	assert.Equal(t, "ecs-stack-igw", *rtb.Spec.Routes[0].GatewayRef.From.Name)

	private := byName[*ec2v1alpha1.RouteTable](t, objects, "ecs-stack-private-rtb")
	assert.Empty(t, private.Spec.Routes)
}

func TestEmitter_Objects_SecurityGroupAndCluster(t *testing.T) {
	objects, err := emitDefault(t).Objects()
	require.NoError(t, err)

	sg := byName[*ec2v1alpha1.SecurityGroup](t, objects, "ecs-stack-sg")
	assert.Equal(t, "SG of the ecs servers", *sg.Spec.Description)
	require.Len(t, sg.Spec.IngressRules, 8)
	assert.Equal(t, "tcp", *sg.Spec.IngressRules[0].IPProtocol)
	assert.Equal(t, "0.0.0.0/0", *sg.Spec.IngressRules[0].IPRanges[0].CIDRIP)
	assert.Equal(t, "::/0", *sg.Spec.IngressRules[1].IPv6Ranges[0].CIDRIPv6)
	assert.EqualValues(t, 80, *sg.Spec.IngressRules[1].FromPort)

	cluster := byName[*ecsv1alpha1.Cluster](t, objects, "javascript-cluster")
	assert.Equal(t, ecsv1alpha1.GroupVersion, cluster.APIVersion)
	assert.Len(t, cluster.Spec.CapacityProviders, 2)
	require.Len(t, cluster.Spec.Settings, 1)
	assert.Equal(t, "containerInsights", *cluster.Spec.Settings[0].Name)
}

func TestEmitter_Objects_PassThroughRoute(t *testing.T) {
	cfg := config.Default()
	cfg.RouteTables[config.DefaultPrivateRouteTable] = []config.Route{
		{DestinationCIDRBlock: "0.0.0.0/0", TargetKind: config.TargetNAT, TargetRef: "nat-0abc"},
		{DestinationCIDRBlock: "fd00::/8", TargetKind: config.TargetPeering, TargetRef: "pcx-1"},
	}
	g, err := builder.Build(cfg)
	require.NoError(t, err)

	objects, err := NewEmitter(g).Objects()
	require.NoError(t, err)

	rtb := byName[*ec2v1alpha1.RouteTable](t, objects, "ecs-stack-private-rtb")
	require.Len(t, rtb.Spec.Routes, 2)
	assert.Equal(t, "nat-0abc", *rtb.Spec.Routes[0].NATGatewayID)
	assert.Nil(t, rtb.Spec.Routes[0].GatewayRef)
	assert.Equal(t, "fd00::/8", *rtb.Spec.Routes[1].DestinationIPv6CIDRBlock)
	assert.Equal(t, "pcx-1", *rtb.Spec.Routes[1].VPCPeeringConnectionID)
}

func TestEmitter_Objects_PassThroughRouteWithoutTargetRef(t *testing.T) {
	cfg := config.Default()
	cfg.RouteTables[config.DefaultPrivateRouteTable] = []config.Route{
		{DestinationCIDRBlock: "10.1.0.0/16", TargetKind: config.TargetPeering},
	}
	g, err := builder.Build(cfg)
	require.NoError(t, err)

	_, err = NewEmitter(g).Objects()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no target_ref")
}

func TestEmitter_Render(t *testing.T) {
	e := emitDefault(t)
	e.Namespace = "networking"

	data, err := e.Render()
	require.NoError(t, err)

	docs := strings.Split(string(data), "---\n")
	require.Len(t, docs, 9)

	var vpc ec2v1alpha1.VPC
	require.NoError(t, yaml.Unmarshal([]byte(docs[0]), &vpc))
	assert.Equal(t, ec2v1alpha1.GroupVersion, vpc.APIVersion)
	assert.Equal(t, ec2v1alpha1.KindVPC, vpc.Kind)
	assert.Equal(t, "networking", vpc.Namespace)
	assert.Equal(t, "EcsStackVpc", vpc.Labels[LabelLogicalID])
	assert.Equal(t, []*string{ec2v1alpha1.String("10.0.0.0/16")}, vpc.Spec.CIDRBlocks)
	require.Len(t, vpc.Spec.Tags, 1)
	assert.Equal(t, "ecs-stack-vpc", *vpc.Spec.Tags[0].Value)

	assert.Contains(t, string(data), "vpcRef:")
	assert.NotContains(t, string(data), "status:")
}

func TestEmitter_ExtraTags(t *testing.T) {
	cfg := config.Default()
	cfg.Tags = map[string]string{"team": "platform", "Name": "ignored"}
	g, err := builder.Build(cfg)
	require.NoError(t, err)

	objects, err := NewEmitter(g).Objects()
	require.NoError(t, err)

	cluster := byName[*ecsv1alpha1.Cluster](t, objects, "javascript-cluster")
	require.Len(t, cluster.Spec.Tags, 2)
	assert.Equal(t, "javascript-cluster", *cluster.Spec.Tags[0].Value)
	assert.Equal(t, "team", *cluster.Spec.Tags[1].Key)
}

func TestEmitter_Objects_CollidingObjectNames(t *testing.T) {
	cfg := config.Default()
	cfg.Subnets["web-a"] = config.Subnet{AvailabilityZone: "us-east-1a", CIDRBlock: "10.0.10.0/24", RouteTable: config.DefaultPrivateRouteTable}
	cfg.Subnets["web_a"] = config.Subnet{AvailabilityZone: "us-east-1b", CIDRBlock: "10.0.11.0/24", RouteTable: config.DefaultPrivateRouteTable}
	g, err := builder.Build(cfg)
	require.NoError(t, err)

	objects, err := NewEmitter(g).Objects()
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, obj := range objects {
		sn, ok := obj.(*ec2v1alpha1.Subnet)
		if !ok {
			continue
		}
		assert.False(t, seen[sn.Name], "subnet object name %s reused", sn.Name)
		seen[sn.Name] = true
	}

	first := byName[*ec2v1alpha1.Subnet](t, objects, "web-a")
	second := byName[*ec2v1alpha1.Subnet](t, objects, "web-a-2")
	assert.Equal(t, "web-a", *first.Spec.Tags[0].Value)
	assert.Equal(t, "web_a", *second.Spec.Tags[0].Value)
	assert.NotEqual(t, first.Labels[LabelLogicalID], second.Labels[LabelLogicalID])
}

func TestUniqueName(t *testing.T) {
	taken := make(map[string]bool)
	assert.Equal(t, "web", uniqueName("web", taken))
	assert.Equal(t, "web-2", uniqueName("web", taken))
	assert.Equal(t, "web-3", uniqueName("web", taken))

	long := strings.Repeat("a", 63)
	assert.Equal(t, long, uniqueName(long, taken))
	next := uniqueName(long, taken)
	assert.Len(t, next, 63)
	assert.True(t, strings.HasSuffix(next, "-2"))
}

func TestObjectName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ecs-stack-vpc", "ecs-stack-vpc"},
		{"Web_Tier.SG", "web-tier-sg"},
		{"--edge--", "edge"},
		{"!!!", "resource"},
		{strings.Repeat("a", 70), strings.Repeat("a", 63)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectName(tt.in))
		})
	}
}
