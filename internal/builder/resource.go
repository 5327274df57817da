package builder

import (
	netgraph "github.com/lex00/netgraph-go"
	"github.com/lex00/netgraph-go/internal/config"
)

// Resource is one node of the resolved graph. ID is the generated logical ID that
// other resources reference; Refs lists the IDs this resource depends on.
type Resource struct {
	Kind  netgraph.Kind
	Name  string
	ID    string
	Phase Phase
	Props any
	Refs  []string

	seq int
}

// NetworkProps are the properties of a KindNetwork resource.
type NetworkProps struct {
	AddressBlock string
	DNSSupport   bool
	DNSHostnames bool
}

// GatewayProps are the properties of a KindGateway resource.
type GatewayProps struct{}

// AttachmentProps bind a gateway to a network.
type AttachmentProps struct {
	NetworkID string
	GatewayID string
}

// SubnetProps are the properties of a KindSubnet resource. RouteTable is the
// logical name of the route table, resolved by the association phase.
type SubnetProps struct {
	NetworkID           string
	AvailabilityZone    string
	CIDRBlock           string
	MapPublicIPOnLaunch bool
	RouteTable          string
}

// RouteTableProps are the properties of a KindRouteTable resource.
type RouteTableProps struct {
	NetworkID string
}

// RouteProps are the properties of a KindRoute resource. For gateway routes
// TargetID and AttachmentID are resolved; other kinds carry TargetRef unchanged.
type RouteProps struct {
	RouteTableID         string
	DestinationCIDRBlock string
	TargetKind           config.TargetKind
	TargetID             string
	AttachmentID         string
	TargetRef            string
}

// Resolved reports whether the route target was resolved to a created resource.
func (p RouteProps) Resolved() bool {
	return p.TargetID != ""
}

// AssociationProps link one subnet to one route table.
type AssociationProps struct {
	SubnetID     string
	RouteTableID string
}

// SecurityGroupProps are the properties of a KindSecurityGroup resource.
type SecurityGroupProps struct {
	NetworkID   string
	Description string
	GroupName   string
	Ingress     []IngressRule
}

// IngressRule is a resolved inbound rule. Exactly one of CidrIPv4 and CidrIPv6 is set.
type IngressRule struct {
	Protocol    string
	CidrIPv4    string
	CidrIPv6    string
	FromPort    int
	ToPort      int
	Description string
}

// Source returns whichever address block is set.
func (r IngressRule) Source() string {
	if r.CidrIPv6 != "" {
		return r.CidrIPv6
	}
	return r.CidrIPv4
}

// ClusterProps are the properties of a KindCluster resource.
type ClusterProps struct {
	ClusterName              string
	FargateCapacityProviders bool
	ContainerInsights        bool
}

// Handles are returned by each phase and passed to the next.

type NetworkHandle struct {
	Name string
	ID   string
}

type GatewayHandle struct {
	Name         string
	ID           string
	AttachmentID string
}

type SubnetHandle struct {
	Name       string
	ID         string
	RouteTable string
}

type RouteTableHandle struct {
	Name string
	ID   string
}

type SecurityGroupHandle struct {
	Name string
	ID   string
}

type ClusterHandle struct {
	Name string
	ID   string
}
