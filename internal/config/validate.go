package config

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// FieldError is one problem with a configuration field. Path uses the section and
// logical names, e.g. `subnets.ecs-stack-public-sn-1.cidr_block`.
type FieldError struct {
	Path    string
	Message string
}

func (e *FieldError) Error() string {
	return e.Path + ": " + e.Message
}

// Validate checks that every section carries its required fields and that address
// blocks, protocols and ports are well formed. It does not resolve cross-references.
// All problems are returned joined.
func (c *Config) Validate() error {
	v := &validator{}

	v.required("network.name", c.Network.Name)
	v.cidr("network.address_block", c.Network.AddressBlock)

	if c.Gateway != nil {
		v.required("gateway.name", c.Gateway.Name)
	}

	for _, name := range c.SubnetNames() {
		s := c.Subnets[name]
		path := "subnets." + name
		v.name(path, name)
		v.required(path+".availability_zone", s.AvailabilityZone)
		v.cidr(path+".cidr_block", s.CIDRBlock)
		v.required(path+".route_table_id", s.RouteTable)
	}

	for _, name := range c.RouteTableNames() {
		path := "route_tables." + name
		v.name(path, name)
		for i, r := range c.RouteTables[name] {
			rpath := fmt.Sprintf("%s[%d]", path, i)
			v.cidr(rpath+".destination_cidr_block", r.DestinationCIDRBlock)
			if r.TargetKind == "" {
				v.add(rpath+".target_kind", "is required")
			} else if r.TargetKind != TargetGateway && r.TargetRef == "" {
				v.add(rpath+".target_ref", fmt.Sprintf("is required for target_kind %q", r.TargetKind))
			}
			if r.TargetKind != TargetGateway && r.GatewayRef != "" {
				v.add(rpath+".gateway_ref", fmt.Sprintf("only valid for target_kind %q", TargetGateway))
			}
		}
	}

	for _, name := range c.SecurityGroupNames() {
		sg := c.SecurityGroups[name]
		path := "security_groups." + name
		v.name(path, name)
		v.required(path+".description", sg.Description)
		for i, rule := range sg.Ingress {
			rpath := fmt.Sprintf("%s.ingress[%d]", path, i)
			v.protocol(rpath+".protocol", rule.Protocol)
			v.cidr(rpath+".source_block", rule.SourceBlock)
			v.port(rpath+".from_port", rule.FromPort)
			v.port(rpath+".to_port", rule.ToPort)
		}
	}

	if c.Cluster != nil {
		v.required("cluster.name", c.Cluster.Name)
	}

	return errors.Join(v.errs...)
}

type validator struct {
	errs []error
}

func (v *validator) add(path, msg string) {
	v.errs = append(v.errs, &FieldError{Path: path, Message: msg})
}

func (v *validator) required(path, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(path, "is required")
	}
}

func (v *validator) name(path, name string) {
	if strings.TrimSpace(name) == "" {
		v.add(path, "logical name must not be empty")
	}
}

func (v *validator) cidr(path, value string) {
	if value == "" {
		v.add(path, "is required")
		return
	}
	if _, err := netip.ParsePrefix(value); err != nil {
		v.add(path, fmt.Sprintf("invalid address block %q", value))
	}
}

func (v *validator) port(path string, port int) {
	if port < -1 || port > 65535 {
		v.add(path, fmt.Sprintf("port %d out of range", port))
	}
}

func (v *validator) protocol(path, proto string) {
	switch strings.ToLower(proto) {
	case "":
		v.add(path, "is required")
	case "tcp", "udp", "icmp", "icmpv6", "-1", "all":
	default:
		n, err := strconv.Atoi(proto)
		if err != nil || n < 0 || n > 255 {
			v.add(path, fmt.Sprintf("unknown protocol %q", proto))
		}
	}
}
