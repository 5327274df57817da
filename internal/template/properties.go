package template

import (
	"github.com/lex00/netgraph-go/intrinsics"
)

// CloudFormation property shapes. Field tags are the CloudFormation property names;
// zero values are omitted by serialize.Resource.

type vpcProperties struct {
	CidrBlock          string           `json:"CidrBlock"`
	EnableDnsSupport   *bool            `json:"EnableDnsSupport,omitempty"`
	EnableDnsHostnames *bool            `json:"EnableDnsHostnames,omitempty"`
	Tags               []intrinsics.Tag `json:"Tags,omitempty"`
}

type internetGatewayProperties struct {
	Tags []intrinsics.Tag `json:"Tags,omitempty"`
}

type gatewayAttachmentProperties struct {
	VpcId             intrinsics.Ref `json:"VpcId"`
	InternetGatewayId intrinsics.Ref `json:"InternetGatewayId"`
}

type subnetProperties struct {
	VpcId               intrinsics.Ref   `json:"VpcId"`
	CidrBlock           string           `json:"CidrBlock"`
	AvailabilityZone    string           `json:"AvailabilityZone,omitempty"`
	MapPublicIpOnLaunch *bool            `json:"MapPublicIpOnLaunch,omitempty"`
	Tags                []intrinsics.Tag `json:"Tags,omitempty"`
}

type routeTableProperties struct {
	VpcId intrinsics.Ref   `json:"VpcId"`
	Tags  []intrinsics.Tag `json:"Tags,omitempty"`
}

// routeProps sets exactly one target field; GatewayId is nil for other targets.
type routeProps struct {
	RouteTableId             intrinsics.Ref `json:"RouteTableId"`
	DestinationCidrBlock     string         `json:"DestinationCidrBlock,omitempty"`
	DestinationIpv6CidrBlock string         `json:"DestinationIpv6CidrBlock,omitempty"`
	GatewayId                any            `json:"GatewayId,omitempty"`
	NatGatewayId             string         `json:"NatGatewayId,omitempty"`
	VpcPeeringConnectionId   string         `json:"VpcPeeringConnectionId,omitempty"`
}

type subnetRouteTableAssociationProperties struct {
	SubnetId     intrinsics.Ref `json:"SubnetId"`
	RouteTableId intrinsics.Ref `json:"RouteTableId"`
}

type securityGroupProperties struct {
	GroupDescription     string                 `json:"GroupDescription"`
	GroupName            string                 `json:"GroupName,omitempty"`
	VpcId                intrinsics.Ref         `json:"VpcId"`
	SecurityGroupIngress []securityGroupIngress `json:"SecurityGroupIngress,omitempty"`
	Tags                 []intrinsics.Tag       `json:"Tags,omitempty"`
}

type securityGroupIngress struct {
	IpProtocol  string `json:"IpProtocol"`
	CidrIp      string `json:"CidrIp,omitempty"`
	CidrIpv6    string `json:"CidrIpv6,omitempty"`
	FromPort    *int   `json:"FromPort,omitempty"`
	ToPort      *int   `json:"ToPort,omitempty"`
	Description string `json:"Description,omitempty"`
}

type clusterProperties struct {
	ClusterName       string           `json:"ClusterName,omitempty"`
	CapacityProviders []string         `json:"CapacityProviders,omitempty"`
	ClusterSettings   []clusterSetting `json:"ClusterSettings,omitempty"`
	Tags              []intrinsics.Tag `json:"Tags,omitempty"`
}

type clusterSetting struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}
