// Package plan renders a resolved resource graph as an ordered list of EC2 and ECS
// API requests.
//
// Each step carries the SDK input struct for one call. Identifiers that only exist
// once an earlier step has run are written as placeholders of the form
// ${LogicalID}; a step that creates a resource names the placeholder it fills.
package plan

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	awsecs "github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"

	"github.com/lex00/netgraph-go/internal/builder"
	"github.com/lex00/netgraph-go/internal/config"
)

// Services a step can target.
const (
	ServiceEC2 = "ec2"
	ServiceECS = "ecs"
)

// Step is one API call.
type Step struct {
	Index     int    `json:"index"`
	LogicalID string `json:"logical_id"`
	Service   string `json:"service"`
	Operation string `json:"operation"`
	Input     any    `json:"input"`
	// Produces is the placeholder this call's result fills, if any.
	Produces string `json:"produces,omitempty"`
}

// Plan is the ordered request list for a graph.
type Plan struct {
	Region string `json:"region,omitempty"`
	Steps  []Step `json:"steps"`
}

// Placeholder returns the token standing in for the identifier of id.
func Placeholder(id string) string {
	return "${" + id + "}"
}

// Build converts g into a plan. Steps follow graph order, so every placeholder is
// produced before it is used.
func Build(g *builder.Graph) (*Plan, error) {
	p := &Plan{}
	for _, res := range g.Resources() {
		if err := p.add(g, res); err != nil {
			return nil, fmt.Errorf("planning %s: %w", res.ID, err)
		}
	}
	return p, nil
}

// Operations returns the operation names in order.
func (p *Plan) Operations() []string {
	ops := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		ops[i] = s.Operation
	}
	return ops
}

// ToJSON serializes the plan.
func (p *Plan) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

func (p *Plan) step(id, service, op string, input any, produces bool) {
	s := Step{Index: len(p.Steps), LogicalID: id, Service: service, Operation: op, Input: input}
	if produces {
		s.Produces = Placeholder(id)
	}
	p.Steps = append(p.Steps, s)
}

func (p *Plan) add(g *builder.Graph, res *builder.Resource) error {
	ref := func(id string) *string { return aws.String(Placeholder(id)) }
	tags := func(rt ec2types.ResourceType) []ec2types.TagSpecification {
		return []ec2types.TagSpecification{{ResourceType: rt, Tags: ec2Tags(res.Name, g.Tags())}}
	}

	switch props := res.Props.(type) {
	case builder.NetworkProps:
		p.step(res.ID, ServiceEC2, "CreateVpc", &awsec2.CreateVpcInput{
			CidrBlock:         aws.String(props.AddressBlock),
			TagSpecifications: tags(ec2types.ResourceTypeVpc),
		}, true)
		// EC2 accepts one attribute per ModifyVpcAttribute call.
		p.step(res.ID, ServiceEC2, "ModifyVpcAttribute", &awsec2.ModifyVpcAttributeInput{
			VpcId:            ref(res.ID),
			EnableDnsSupport: &ec2types.AttributeBooleanValue{Value: aws.Bool(props.DNSSupport)},
		}, false)
		p.step(res.ID, ServiceEC2, "ModifyVpcAttribute", &awsec2.ModifyVpcAttributeInput{
			VpcId:              ref(res.ID),
			EnableDnsHostnames: &ec2types.AttributeBooleanValue{Value: aws.Bool(props.DNSHostnames)},
		}, false)

	case builder.GatewayProps:
		p.step(res.ID, ServiceEC2, "CreateInternetGateway", &awsec2.CreateInternetGatewayInput{
			TagSpecifications: tags(ec2types.ResourceTypeInternetGateway),
		}, true)

	case builder.AttachmentProps:
		p.step(res.ID, ServiceEC2, "AttachInternetGateway", &awsec2.AttachInternetGatewayInput{
			InternetGatewayId: ref(props.GatewayID),
			VpcId:             ref(props.NetworkID),
		}, false)

	case builder.SubnetProps:
		p.step(res.ID, ServiceEC2, "CreateSubnet", &awsec2.CreateSubnetInput{
			VpcId:             ref(props.NetworkID),
			CidrBlock:         aws.String(props.CIDRBlock),
			AvailabilityZone:  aws.String(props.AvailabilityZone),
			TagSpecifications: tags(ec2types.ResourceTypeSubnet),
		}, true)
		if props.MapPublicIPOnLaunch {
			p.step(res.ID, ServiceEC2, "ModifySubnetAttribute", &awsec2.ModifySubnetAttributeInput{
				SubnetId:            ref(res.ID),
				MapPublicIpOnLaunch: &ec2types.AttributeBooleanValue{Value: aws.Bool(true)},
			}, false)
		}

	case builder.RouteTableProps:
		p.step(res.ID, ServiceEC2, "CreateRouteTable", &awsec2.CreateRouteTableInput{
			VpcId:             ref(props.NetworkID),
			TagSpecifications: tags(ec2types.ResourceTypeRouteTable),
		}, true)

	case builder.RouteProps:
		input := &awsec2.CreateRouteInput{RouteTableId: ref(props.RouteTableID)}
		if strings.Contains(props.DestinationCIDRBlock, ":") {
			input.DestinationIpv6CidrBlock = aws.String(props.DestinationCIDRBlock)
		} else {
			input.DestinationCidrBlock = aws.String(props.DestinationCIDRBlock)
		}
		switch props.TargetKind {
		case config.TargetGateway:
			input.GatewayId = ref(props.TargetID)
		case config.TargetNAT:
			input.NatGatewayId = aws.String(props.TargetRef)
		case config.TargetPeering:
			input.VpcPeeringConnectionId = aws.String(props.TargetRef)
		default:
			return fmt.Errorf("target kind %q has no CreateRoute field", props.TargetKind)
		}
		if props.TargetKind != config.TargetGateway && props.TargetRef == "" {
			return fmt.Errorf("%s target has no target_ref", props.TargetKind)
		}
		p.step(res.ID, ServiceEC2, "CreateRoute", input, false)

	case builder.AssociationProps:
		p.step(res.ID, ServiceEC2, "AssociateRouteTable", &awsec2.AssociateRouteTableInput{
			RouteTableId: ref(props.RouteTableID),
			SubnetId:     ref(props.SubnetID),
		}, true)

	case builder.SecurityGroupProps:
		name := props.GroupName
		if name == "" {
			name = res.Name
		}
		p.step(res.ID, ServiceEC2, "CreateSecurityGroup", &awsec2.CreateSecurityGroupInput{
			Description:       aws.String(props.Description),
			GroupName:         aws.String(name),
			VpcId:             ref(props.NetworkID),
			TagSpecifications: tags(ec2types.ResourceTypeSecurityGroup),
		}, true)
		if len(props.Ingress) > 0 {
			perms := make([]ec2types.IpPermission, 0, len(props.Ingress))
			for _, rule := range props.Ingress {
				perms = append(perms, ipPermission(rule))
			}
			p.step(res.ID, ServiceEC2, "AuthorizeSecurityGroupIngress", &awsec2.AuthorizeSecurityGroupIngressInput{
				GroupId:       ref(res.ID),
				IpPermissions: perms,
			}, false)
		}

	case builder.ClusterProps:
		input := &awsecs.CreateClusterInput{
			ClusterName: aws.String(props.ClusterName),
			Tags:        ecsTags(res.Name, g.Tags()),
		}
		if props.FargateCapacityProviders {
			input.CapacityProviders = []string{"FARGATE", "FARGATE_SPOT"}
		}
		if props.ContainerInsights {
			input.Settings = []ecstypes.ClusterSetting{{
				Name:  ecstypes.ClusterSettingNameContainerInsights,
				Value: aws.String("enabled"),
			}}
		}
		p.step(res.ID, ServiceECS, "CreateCluster", input, true)

	default:
		return fmt.Errorf("unsupported properties %T", res.Props)
	}
	return nil
}

func ipPermission(rule builder.IngressRule) ec2types.IpPermission {
	perm := ec2types.IpPermission{
		IpProtocol: aws.String(rule.Protocol),
		FromPort:   aws.Int32(int32(rule.FromPort)),
		ToPort:     aws.Int32(int32(rule.ToPort)),
	}
	var desc *string
	if rule.Description != "" {
		desc = aws.String(rule.Description)
	}
	if rule.CidrIPv6 != "" {
		perm.Ipv6Ranges = []ec2types.Ipv6Range{{CidrIpv6: aws.String(rule.CidrIPv6), Description: desc}}
	} else {
		perm.IpRanges = []ec2types.IpRange{{CidrIp: aws.String(rule.CidrIPv4), Description: desc}}
	}
	return perm
}

func ec2Tags(name string, extra map[string]string) []ec2types.Tag {
	tags := []ec2types.Tag{{Key: aws.String("Name"), Value: aws.String(name)}}
	for _, k := range extraKeys(extra) {
		tags = append(tags, ec2types.Tag{Key: aws.String(k), Value: aws.String(extra[k])})
	}
	return tags
}

func ecsTags(name string, extra map[string]string) []ecstypes.Tag {
	tags := []ecstypes.Tag{{Key: aws.String("Name"), Value: aws.String(name)}}
	for _, k := range extraKeys(extra) {
		tags = append(tags, ecstypes.Tag{Key: aws.String(k), Value: aws.String(extra[k])})
	}
	return tags
}

// extraKeys returns the extra tag keys in order, skipping Name.
func extraKeys(extra map[string]string) []string {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		if k != "Name" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
