// Package config defines the declarative configuration of a network stack and its loaders.
//
// Cross-references between resources are expressed as logical names and are resolved
// later by the builder; this package only checks that each section is well formed.
package config

import (
	"sort"
)

// TargetKind is the kind of target a route points at.
type TargetKind string

const (
	// TargetGateway routes through the stack's internet gateway.
	TargetGateway TargetKind = "gateway"
	// TargetNAT and TargetPeering are declared but passed through unresolved.
	TargetNAT     TargetKind = "nat"
	TargetPeering TargetKind = "peering"
)

// Config is one complete stack definition.
type Config struct {
	Environment    Environment              `yaml:"environment,omitempty"`
	Tags           map[string]string        `yaml:"tags,omitempty"`
	Network        Network                  `yaml:"network"`
	Gateway        *Gateway                 `yaml:"gateway,omitempty"`
	Subnets        map[string]Subnet        `yaml:"subnets"`
	RouteTables    map[string][]Route       `yaml:"route_tables"`
	SecurityGroups map[string]SecurityGroup `yaml:"security_groups"`
	Cluster        *Cluster                 `yaml:"cluster,omitempty"`
}

// Environment is the deployment target. It is informational for emitters.
type Environment struct {
	Account string `yaml:"account,omitempty"`
	Region  string `yaml:"region,omitempty"`
}

// Network is the VPC every other resource belongs to.
type Network struct {
	Name         string `yaml:"name"`
	AddressBlock string `yaml:"address_block"`
	DNSSupport   bool   `yaml:"dns_support"`
	DNSHostnames bool   `yaml:"dns_hostnames"`
}

// Gateway is the internet gateway attached to the network.
type Gateway struct {
	Name string `yaml:"name"`
}

// Subnet declares one subnet. RouteTable is the logical name of the route table it
// is associated with.
type Subnet struct {
	AvailabilityZone    string `yaml:"availability_zone"`
	CIDRBlock           string `yaml:"cidr_block"`
	MapPublicIPOnLaunch bool   `yaml:"map_public_ip_on_launch"`
	RouteTable          string `yaml:"route_table_id"`
}

// Route is one entry of a route table. GatewayRef optionally names the gateway;
// TargetRef carries the raw target of non-gateway kinds.
type Route struct {
	DestinationCIDRBlock string     `yaml:"destination_cidr_block"`
	TargetKind           TargetKind `yaml:"target_kind"`
	GatewayRef           string     `yaml:"gateway_ref,omitempty"`
	TargetRef            string     `yaml:"target_ref,omitempty"`
}

// SecurityGroup declares one security group. Ingress order is preserved.
type SecurityGroup struct {
	Description string        `yaml:"description"`
	GroupName   string        `yaml:"group_name,omitempty"`
	Ingress     []IngressRule `yaml:"ingress"`
}

// IngressRule is a single inbound rule. SourceBlock is an IPv4 or IPv6 CIDR.
type IngressRule struct {
	Protocol    string `yaml:"protocol"`
	SourceBlock string `yaml:"source_block"`
	FromPort    int    `yaml:"from_port"`
	ToPort      int    `yaml:"to_port"`
	Description string `yaml:"description,omitempty"`
}

// Cluster is the ECS cluster placed on the network.
type Cluster struct {
	Name                     string `yaml:"name"`
	FargateCapacityProviders bool   `yaml:"fargate_capacity_providers"`
	ContainerInsights        bool   `yaml:"container_insights"`
}

// SubnetNames returns subnet logical names in sorted order.
func (c *Config) SubnetNames() []string {
	return sortedKeys(c.Subnets)
}

// RouteTableNames returns route table logical names in sorted order.
func (c *Config) RouteTableNames() []string {
	return sortedKeys(c.RouteTables)
}

// SecurityGroupNames returns security group logical names in sorted order.
func (c *Config) SecurityGroupNames() []string {
	return sortedKeys(c.SecurityGroups)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
