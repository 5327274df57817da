// Package template renders a resolved resource graph as a CloudFormation template.
package template

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	netgraph "github.com/lex00/netgraph-go"
	"github.com/lex00/netgraph-go/internal/builder"
	"github.com/lex00/netgraph-go/internal/config"
	"github.com/lex00/netgraph-go/internal/serialize"
	"github.com/lex00/netgraph-go/intrinsics"
)

// DefaultDescription is used when Builder.Description is empty.
const DefaultDescription = "ECS cluster network stack"

// Builder constructs a CloudFormation template from a resource graph.
type Builder struct {
	graph *builder.Graph

	// Description is the template description.
	Description string
	// ExportOutputs adds stack exports named "<stack>-<output>" to every output.
	ExportOutputs bool
}

// NewBuilder creates a template builder for g.
func NewBuilder(g *builder.Graph) *Builder {
	return &Builder{graph: g}
}

// Build constructs the CloudFormation template.
func (b *Builder) Build() (*netgraph.Template, error) {
	template := &netgraph.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Description:              b.Description,
		Resources:                make(map[string]netgraph.ResourceDef, b.graph.Len()),
	}
	if template.Description == "" {
		template.Description = DefaultDescription
	}

	for _, res := range b.graph.Resources() {
		def, err := b.resourceDef(res)
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", res.ID, err)
		}
		template.Resources[res.ID] = def
	}

	outputs := b.outputs()
	if len(outputs) > 0 {
		template.Outputs = outputs
	}
	return template, nil
}

// cfResourceType maps a resource kind to its CloudFormation type.
func cfResourceType(kind netgraph.Kind) string {
	switch kind {
	case netgraph.KindNetwork:
		return "AWS::EC2::VPC"
	case netgraph.KindGateway:
		return "AWS::EC2::InternetGateway"
	case netgraph.KindGatewayAttachment:
		return "AWS::EC2::VPCGatewayAttachment"
	case netgraph.KindSubnet:
		return "AWS::EC2::Subnet"
	case netgraph.KindRouteTable:
		return "AWS::EC2::RouteTable"
	case netgraph.KindRoute:
		return "AWS::EC2::Route"
	case netgraph.KindAssociation:
		return "AWS::EC2::SubnetRouteTableAssociation"
	case netgraph.KindSecurityGroup:
		return "AWS::EC2::SecurityGroup"
	case netgraph.KindCluster:
		return "AWS::ECS::Cluster"
	default:
		return ""
	}
}

func (b *Builder) resourceDef(res *builder.Resource) (netgraph.ResourceDef, error) {
	resourceType := cfResourceType(res.Kind)
	if resourceType == "" {
		return netgraph.ResourceDef{}, fmt.Errorf("unknown resource kind: %s", res.Kind)
	}

	value, dependsOn, err := b.properties(res)
	if err != nil {
		return netgraph.ResourceDef{}, err
	}
	props, err := serialize.Resource(value)
	if err != nil {
		return netgraph.ResourceDef{}, err
	}
	if len(props) == 0 {
		props = nil
	}

	return netgraph.ResourceDef{
		Type:       resourceType,
		Properties: props,
		DependsOn:  dependsOn,
	}, nil
}

// properties converts builder props to the typed CloudFormation property struct.
func (b *Builder) properties(res *builder.Resource) (any, []string, error) {
	tags := intrinsics.NameTags(res.Name, b.graph.Tags())

	switch p := res.Props.(type) {
	case builder.NetworkProps:
		return vpcProperties{
			CidrBlock:          p.AddressBlock,
			EnableDnsSupport:   &p.DNSSupport,
			EnableDnsHostnames: &p.DNSHostnames,
			Tags:               tags,
		}, nil, nil

	case builder.GatewayProps:
		return internetGatewayProperties{Tags: tags}, nil, nil

	case builder.AttachmentProps:
		return gatewayAttachmentProperties{
			VpcId:             ref(p.NetworkID),
			InternetGatewayId: ref(p.GatewayID),
		}, nil, nil

	case builder.SubnetProps:
		return subnetProperties{
			VpcId:               ref(p.NetworkID),
			CidrBlock:           p.CIDRBlock,
			AvailabilityZone:    p.AvailabilityZone,
			MapPublicIpOnLaunch: &p.MapPublicIPOnLaunch,
			Tags:                tags,
		}, nil, nil

	case builder.RouteTableProps:
		return routeTableProperties{VpcId: ref(p.NetworkID), Tags: tags}, nil, nil

	case builder.RouteProps:
		return routeProperties(res.Name, p)

	case builder.AssociationProps:
		return subnetRouteTableAssociationProperties{
			SubnetId:     ref(p.SubnetID),
			RouteTableId: ref(p.RouteTableID),
		}, nil, nil

	case builder.SecurityGroupProps:
		ingress := make([]securityGroupIngress, 0, len(p.Ingress))
		for _, rule := range p.Ingress {
			ingress = append(ingress, securityGroupIngress{
				IpProtocol:  rule.Protocol,
				CidrIp:      rule.CidrIPv4,
				CidrIpv6:    rule.CidrIPv6,
				FromPort:    intPtr(rule.FromPort),
				ToPort:      intPtr(rule.ToPort),
				Description: rule.Description,
			})
		}
		return securityGroupProperties{
			GroupDescription:     p.Description,
			GroupName:            p.GroupName,
			VpcId:                ref(p.NetworkID),
			SecurityGroupIngress: ingress,
			Tags:                 tags,
		}, nil, nil

	case builder.ClusterProps:
		cluster := clusterProperties{ClusterName: p.ClusterName, Tags: tags}
		if p.FargateCapacityProviders {
			cluster.CapacityProviders = []string{"FARGATE", "FARGATE_SPOT"}
		}
		if p.ContainerInsights {
			cluster.ClusterSettings = []clusterSetting{{Name: "containerInsights", Value: "enabled"}}
		}
		return cluster, nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported properties %T", res.Props)
	}
}

// routeProperties maps a route target kind to its CloudFormation target field.
// Gateway routes depend on the attachment so the gateway is usable when the route
// is created.
func routeProperties(name string, p builder.RouteProps) (any, []string, error) {
	route := routeProps{RouteTableId: ref(p.RouteTableID)}
	if strings.Contains(p.DestinationCIDRBlock, ":") {
		route.DestinationIpv6CidrBlock = p.DestinationCIDRBlock
	} else {
		route.DestinationCidrBlock = p.DestinationCIDRBlock
	}

	switch p.TargetKind {
	case config.TargetGateway:
		route.GatewayId = ref(p.TargetID)
		return route, []string{p.AttachmentID}, nil
	case config.TargetNAT:
		route.NatGatewayId = p.TargetRef
	case config.TargetPeering:
		route.VpcPeeringConnectionId = p.TargetRef
	default:
		return nil, nil, fmt.Errorf("route %s: target kind %q has no CloudFormation property", name, p.TargetKind)
	}
	if p.TargetRef == "" {
		return nil, nil, fmt.Errorf("route %s: %s target has no target_ref", name, p.TargetKind)
	}
	return route, nil, nil
}

// outputs publishes the VPC id, every security group id and the cluster name.
func (b *Builder) outputs() map[string]netgraph.Output {
	outputs := make(map[string]netgraph.Output)
	add := func(name, description string, value any) {
		out := netgraph.Output{Description: description, Value: value}
		if b.ExportOutputs {
			out.Export = &netgraph.OutputExport{Name: intrinsics.Sub{String: "${AWS::StackName}-" + name}}
		}
		outputs[name] = out
	}

	for _, r := range b.graph.OfKind(netgraph.KindNetwork) {
		add("EcsVpcId", "VPC "+r.Name, intrinsics.Ref{LogicalName: r.ID})
	}
	for _, r := range b.graph.OfKind(netgraph.KindSecurityGroup) {
		add("Sg"+r.ID, "Security group "+r.Name, intrinsics.GetAtt{LogicalName: r.ID, Attribute: "GroupId"})
	}
	for _, r := range b.graph.OfKind(netgraph.KindCluster) {
		add("EcsClusterName", "ECS cluster "+r.Name, intrinsics.Ref{LogicalName: r.ID})
	}
	return outputs
}

func ref(id string) intrinsics.Ref {
	return intrinsics.Ref{LogicalName: id}
}

func intPtr(i int) *int {
	return &i
}

// ToJSON serializes the template to JSON.
func ToJSON(t *netgraph.Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ToYAML serializes the template to YAML. The template goes through JSON first so
// intrinsics render in their CloudFormation form.
func ToYAML(t *netgraph.Template) ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}
