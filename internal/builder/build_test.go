package builder

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	netgraph "github.com/lex00/netgraph-go"
	"github.com/lex00/netgraph-go/internal/config"
)

func TestBuild_Default(t *testing.T) {
	cfg := config.Default()
	g, err := Build(cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, g.Count(netgraph.KindNetwork))
	assert.Equal(t, 1, g.Count(netgraph.KindGateway))
	assert.Equal(t, 1, g.Count(netgraph.KindGatewayAttachment))
	assert.Equal(t, len(cfg.Subnets), g.Count(netgraph.KindSubnet))
	assert.Equal(t, len(cfg.RouteTables), g.Count(netgraph.KindRouteTable))
	assert.Equal(t, 1, g.Count(netgraph.KindRoute))
	assert.Equal(t, len(cfg.Subnets), g.Count(netgraph.KindAssociation))
	assert.Equal(t, len(cfg.SecurityGroups), g.Count(netgraph.KindSecurityGroup))
	assert.Equal(t, 1, g.Count(netgraph.KindCluster))
	assert.Equal(t, 14, g.Len())
}

func TestBuild_EmissionRespectsReferences(t *testing.T) {
	g, err := Build(config.Default())
	require.NoError(t, err)

	emitted := make(map[string]bool)
	for _, r := range g.Resources() {
		for _, ref := range r.Refs {
			assert.True(t, emitted[ref], "%s emitted before its reference %s", r.ID, ref)
		}
		emitted[r.ID] = true
	}
}

func TestBuild_EmissionFollowsPhaseOrder(t *testing.T) {
	g, err := Build(config.Default())
	require.NoError(t, err)

	last := PhaseNetwork
	for _, r := range g.Resources() {
		assert.GreaterOrEqual(t, r.Phase, last, "%s out of phase order", r.ID)
		last = r.Phase
	}
}

func TestBuild_DefaultResolvesGatewayRoute(t *testing.T) {
	g, err := Build(config.Default())
	require.NoError(t, err)

	igw := g.OfKind(netgraph.KindGateway)[0]
	route := g.OfKind(netgraph.KindRoute)[0]
	props := route.Props.(RouteProps)

	assert.Equal(t, "ecs-stack-public-rtb-route-0", route.Name)
	assert.Equal(t, igw.ID, props.TargetID)
	assert.Equal(t, "EcsStackIgwAttachment", props.AttachmentID)
}

func TestBuild_PrivateSubnetOnPublicTable(t *testing.T) {
	g, err := Build(config.Default())
	require.NoError(t, err)

	var found bool
	for _, a := range g.OfKind(netgraph.KindAssociation) {
		if a.Name == config.DefaultPrivateSubnet1+"-"+config.DefaultPublicRouteTable {
			found = true
			assert.Equal(t, "EcsStackPublicRtb", a.Props.(AssociationProps).RouteTableID)
		}
	}
	assert.True(t, found)
}

func TestBuild_Idempotent(t *testing.T) {
	type node struct {
		Kind  netgraph.Kind
		Name  string
		ID    string
		Props any
		Refs  []string
	}
	project := func(g *Graph) []node {
		var out []node
		for _, r := range g.Resources() {
			out = append(out, node{r.Kind, r.Name, r.ID, r.Props, r.Refs})
		}
		return out
	}

	first, err := Build(config.Default())
	require.NoError(t, err)
	second, err := Build(config.Default())
	require.NoError(t, err)

	assert.Equal(t, project(first), project(second))
}

func TestBuild_NoGatewayFailsGatewayRoute(t *testing.T) {
	cfg := config.Default()
	cfg.Gateway = nil

	g, err := Build(cfg)
	assert.Nil(t, g)

	var unresolved *netgraph.UnresolvedReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, netgraph.KindGateway, unresolved.Target)
	assert.Equal(t, config.DefaultInternetGateway, unresolved.Ref)
}

func TestBuild_UnknownRouteTable(t *testing.T) {
	cfg := config.Default()
	s := cfg.Subnets[config.DefaultPublicSubnet2]
	s.RouteTable = "nope"
	cfg.Subnets[config.DefaultPublicSubnet2] = s

	g, err := Build(cfg)
	assert.Nil(t, g)
	assert.ErrorIs(t, err, netgraph.ErrUnresolvedReference)
	assert.Contains(t, err.Error(), config.DefaultPublicSubnet2)
}

func TestBuild_WithoutClusterAndGateway(t *testing.T) {
	cfg := &config.Config{
		Network: config.Network{Name: "vpc", AddressBlock: "10.0.0.0/16"},
		Subnets: map[string]config.Subnet{
			"a": {AvailabilityZone: "us-east-1a", CIDRBlock: "10.0.1.0/24", RouteTable: "private"},
		},
		RouteTables: map[string][]config.Route{"private": nil},
	}

	g, err := Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, g.Count(netgraph.KindCluster))
	assert.Equal(t, 0, g.Count(netgraph.KindGateway))
	assert.Equal(t, 4, g.Len())
}

func TestBuild_LogsPhases(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Build(config.Default(), WithLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Phase complete.")
	assert.Contains(t, out, "phase=Associations")
	assert.Contains(t, out, "Graph emitted.")
}

func TestBuild_CarriesTags(t *testing.T) {
	cfg := config.Default()
	cfg.Tags = map[string]string{"env": "dev"}

	g, err := Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, "dev", g.Tags()["env"])
}
