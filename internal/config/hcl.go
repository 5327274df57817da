package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	netgraph "github.com/lex00/netgraph-go"
)

// hclRoot mirrors Config with one labelled block per named resource:
//
//	network "ecs-stack-vpc" {
//	  address_block = "10.0.0.0/16"
//	}
//	subnet "ecs-stack-public-sn-1" {
//	  availability_zone = "us-east-1a"
//	  cidr_block        = "10.0.1.0/24"
//	  route_table_id    = "ecs-stack-public-rtb"
//	}
type hclRoot struct {
	Environment    *hclEnvironment     `hcl:"environment,block"`
	Tags           map[string]string   `hcl:"tags,optional"`
	Network        *hclNetwork         `hcl:"network,block"`
	Gateway        *hclGateway         `hcl:"gateway,block"`
	Subnets        []*hclSubnet        `hcl:"subnet,block"`
	RouteTables    []*hclRouteTable    `hcl:"route_table,block"`
	SecurityGroups []*hclSecurityGroup `hcl:"security_group,block"`
	Cluster        *hclCluster         `hcl:"cluster,block"`
}

type hclEnvironment struct {
	Account string `hcl:"account,optional"`
	Region  string `hcl:"region,optional"`
}

type hclNetwork struct {
	Name         string `hcl:"name,label"`
	AddressBlock string `hcl:"address_block"`
	DNSSupport   bool   `hcl:"dns_support,optional"`
	DNSHostnames bool   `hcl:"dns_hostnames,optional"`
}

type hclGateway struct {
	Name string `hcl:"name,label"`
}

type hclSubnet struct {
	Name                string `hcl:"name,label"`
	AvailabilityZone    string `hcl:"availability_zone"`
	CIDRBlock           string `hcl:"cidr_block"`
	MapPublicIPOnLaunch bool   `hcl:"map_public_ip_on_launch,optional"`
	RouteTable          string `hcl:"route_table_id"`
}

type hclRouteTable struct {
	Name   string      `hcl:"name,label"`
	Routes []*hclRoute `hcl:"route,block"`
}

type hclRoute struct {
	DestinationCIDRBlock string `hcl:"destination_cidr_block"`
	TargetKind           string `hcl:"target_kind"`
	GatewayRef           string `hcl:"gateway_ref,optional"`
	TargetRef            string `hcl:"target_ref,optional"`
}

type hclSecurityGroup struct {
	Name        string            `hcl:"name,label"`
	Description string            `hcl:"description"`
	GroupName   string            `hcl:"group_name,optional"`
	Ingress     []*hclIngressRule `hcl:"ingress,block"`
}

type hclIngressRule struct {
	Protocol    string `hcl:"protocol"`
	SourceBlock string `hcl:"source_block"`
	FromPort    int    `hcl:"from_port"`
	ToPort      int    `hcl:"to_port"`
	Description string `hcl:"description,optional"`
}

type hclCluster struct {
	Name                     string `hcl:"name,label"`
	FargateCapacityProviders bool   `hcl:"fargate_capacity_providers,optional"`
	ContainerInsights        bool   `hcl:"container_insights,optional"`
}

// parseHCL decodes an HCL document. Labelled blocks become map entries, so a label
// repeated within one block type is reported as a duplicate name.
func parseHCL(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root hclRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	return root.translate()
}

func (r *hclRoot) translate() (*Config, error) {
	cfg := &Config{
		Tags:           r.Tags,
		Subnets:        make(map[string]Subnet, len(r.Subnets)),
		RouteTables:    make(map[string][]Route, len(r.RouteTables)),
		SecurityGroups: make(map[string]SecurityGroup, len(r.SecurityGroups)),
	}

	if r.Environment != nil {
		cfg.Environment = Environment{Account: r.Environment.Account, Region: r.Environment.Region}
	}
	if r.Network != nil {
		cfg.Network = Network{
			Name:         r.Network.Name,
			AddressBlock: r.Network.AddressBlock,
			DNSSupport:   r.Network.DNSSupport,
			DNSHostnames: r.Network.DNSHostnames,
		}
	}
	if r.Gateway != nil {
		cfg.Gateway = &Gateway{Name: r.Gateway.Name}
	}
	if r.Cluster != nil {
		cfg.Cluster = &Cluster{
			Name:                     r.Cluster.Name,
			FargateCapacityProviders: r.Cluster.FargateCapacityProviders,
			ContainerInsights:        r.Cluster.ContainerInsights,
		}
	}

	for _, s := range r.Subnets {
		if _, dup := cfg.Subnets[s.Name]; dup {
			return nil, &netgraph.DuplicateNameError{Kind: netgraph.KindSubnet, Name: s.Name}
		}
		cfg.Subnets[s.Name] = Subnet{
			AvailabilityZone:    s.AvailabilityZone,
			CIDRBlock:           s.CIDRBlock,
			MapPublicIPOnLaunch: s.MapPublicIPOnLaunch,
			RouteTable:          s.RouteTable,
		}
	}

	for _, rt := range r.RouteTables {
		if _, dup := cfg.RouteTables[rt.Name]; dup {
			return nil, &netgraph.DuplicateNameError{Kind: netgraph.KindRouteTable, Name: rt.Name}
		}
		routes := make([]Route, 0, len(rt.Routes))
		for _, route := range rt.Routes {
			routes = append(routes, Route{
				DestinationCIDRBlock: route.DestinationCIDRBlock,
				TargetKind:           TargetKind(route.TargetKind),
				GatewayRef:           route.GatewayRef,
				TargetRef:            route.TargetRef,
			})
		}
		cfg.RouteTables[rt.Name] = routes
	}

	for _, sg := range r.SecurityGroups {
		if _, dup := cfg.SecurityGroups[sg.Name]; dup {
			return nil, &netgraph.DuplicateNameError{Kind: netgraph.KindSecurityGroup, Name: sg.Name}
		}
		ingress := make([]IngressRule, 0, len(sg.Ingress))
		for _, rule := range sg.Ingress {
			ingress = append(ingress, IngressRule{
				Protocol:    rule.Protocol,
				SourceBlock: rule.SourceBlock,
				FromPort:    rule.FromPort,
				ToPort:      rule.ToPort,
				Description: rule.Description,
			})
		}
		cfg.SecurityGroups[sg.Name] = SecurityGroup{
			Description: sg.Description,
			GroupName:   sg.GroupName,
			Ingress:     ingress,
		}
	}

	return cfg, nil
}
