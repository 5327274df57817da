package config

// Logical names of the default stack.
const (
	DefaultVPC               = "ecs-stack-vpc"
	DefaultInternetGateway   = "ecs-stack-igw"
	DefaultPublicRouteTable  = "ecs-stack-public-rtb"
	DefaultPrivateRouteTable = "ecs-stack-private-rtb"
	DefaultSecurityGroup     = "ecs-stack-sg"
	DefaultPublicSubnet1     = "ecs-stack-public-sn-1"
	DefaultPublicSubnet2     = "ecs-stack-public-sn-2"
	DefaultPrivateSubnet1    = "ecs-stack-private-sn-1"
	DefaultCluster           = "javascript-cluster"
)

// Default returns the ECS cluster network the project ships with: one VPC, an internet
// gateway, public and private route tables, three subnets, one web security group and a
// Fargate cluster.
//
// The private subnet is associated with the public route table; lint rule NG002 flags it.
func Default() *Config {
	var ingress []IngressRule
	for _, port := range []int{80, 443, 22, 5000} {
		ingress = append(ingress,
			IngressRule{Protocol: "TCP", SourceBlock: "0.0.0.0/0", FromPort: port, ToPort: port},
			IngressRule{Protocol: "TCP", SourceBlock: "::/0", FromPort: port, ToPort: port},
		)
	}

	return &Config{
		Environment: Environment{Region: "us-east-1"},
		Network: Network{
			Name:         DefaultVPC,
			AddressBlock: "10.0.0.0/16",
			DNSSupport:   true,
			DNSHostnames: true,
		},
		Gateway: &Gateway{Name: DefaultInternetGateway},
		Subnets: map[string]Subnet{
			DefaultPublicSubnet1: {
				AvailabilityZone:    "us-east-1a",
				CIDRBlock:           "10.0.1.0/24",
				MapPublicIPOnLaunch: true,
				RouteTable:          DefaultPublicRouteTable,
			},
			DefaultPublicSubnet2: {
				AvailabilityZone:    "us-east-1b",
				CIDRBlock:           "10.0.3.0/24",
				MapPublicIPOnLaunch: true,
				RouteTable:          DefaultPublicRouteTable,
			},
			DefaultPrivateSubnet1: {
				AvailabilityZone:    "us-east-1c",
				CIDRBlock:           "10.0.4.0/24",
				MapPublicIPOnLaunch: false,
				RouteTable:          DefaultPublicRouteTable,
			},
		},
		RouteTables: map[string][]Route{
			DefaultPublicRouteTable: {
				{DestinationCIDRBlock: "0.0.0.0/0", TargetKind: TargetGateway, GatewayRef: DefaultInternetGateway},
			},
			DefaultPrivateRouteTable: {},
		},
		SecurityGroups: map[string]SecurityGroup{
			DefaultSecurityGroup: {
				Description: "SG of the ecs servers",
				GroupName:   DefaultSecurityGroup,
				Ingress:     ingress,
			},
		},
		Cluster: &Cluster{
			Name:                     DefaultCluster,
			FargateCapacityProviders: true,
			ContainerInsights:        true,
		},
	}
}
