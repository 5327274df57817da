// Package lint provides lint rules for network stack configurations.
//
// Rules inspect a decoded *config.Config and never resolve references; problems the
// builder would reject outright are left to it.
//
// Rules:
//
//	NG001: Ingress open to the world on an administrative port
//	NG002: Subnet without public IPs routed through the internet gateway
//	NG003: Subnet address block outside the network address block
//	NG004: Overlapping subnet address blocks
//	NG005: Route table never associated with a subnet
//	NG006: Route target passed through unresolved
//	NG007: Ingress rule with an inverted port range
package lint

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/lex00/netgraph-go/internal/config"
)

// OpenAdminPort flags ingress from 0.0.0.0/0 or ::/0 that covers an administrative port.
type OpenAdminPort struct {
	Ports []int
}

func (r OpenAdminPort) ID() string { return "NG001" }
func (r OpenAdminPort) Description() string {
	return "Ingress open to the world on an administrative port"
}

var defaultAdminPorts = []int{22, 3389}

func (r OpenAdminPort) Check(cfg *config.Config) []Issue {
	ports := r.Ports
	if len(ports) == 0 {
		ports = defaultAdminPorts
	}

	var issues []Issue
	for _, name := range cfg.SecurityGroupNames() {
		for i, rule := range cfg.SecurityGroups[name].Ingress {
			if !isWorld(rule.SourceBlock) {
				continue
			}
			for _, port := range ports {
				if !coversPort(rule, port) {
					continue
				}
				issues = append(issues, Issue{
					Message:    fmt.Sprintf("security_groups.%s.ingress[%d]: port %d open to %s", name, i, port, rule.SourceBlock),
					Suggestion: "restrict source_block to a known address range",
					Severity:   SeverityWarning,
				})
			}
		}
	}
	return issues
}

func isWorld(block string) bool {
	p, err := netip.ParsePrefix(block)
	return err == nil && p.Bits() == 0
}

func coversPort(rule config.IngressRule, port int) bool {
	switch strings.ToLower(rule.Protocol) {
	case "-1", "all":
		return true
	case "tcp", "6":
		return rule.FromPort <= port && port <= rule.ToPort
	default:
		return false
	}
}

// PrivateSubnetOnPublicTable flags subnets that do not map public IPs but are
// associated with a route table that routes through a gateway.
type PrivateSubnetOnPublicTable struct{}

func (r PrivateSubnetOnPublicTable) ID() string { return "NG002" }
func (r PrivateSubnetOnPublicTable) Description() string {
	return "Subnet without public IPs routed through the internet gateway"
}

func (r PrivateSubnetOnPublicTable) Check(cfg *config.Config) []Issue {
	var issues []Issue
	for _, name := range cfg.SubnetNames() {
		sn := cfg.Subnets[name]
		if sn.MapPublicIPOnLaunch || !hasGatewayRoute(cfg.RouteTables[sn.RouteTable]) {
			continue
		}
		issues = append(issues, Issue{
			Message:    fmt.Sprintf("subnets.%s: private subnet associated with %s, which routes through a gateway", name, sn.RouteTable),
			Suggestion: "associate the subnet with a route table without a gateway route",
			Severity:   SeverityWarning,
		})
	}
	return issues
}

func hasGatewayRoute(routes []config.Route) bool {
	for _, r := range routes {
		if r.TargetKind == config.TargetGateway {
			return true
		}
	}
	return false
}

// SubnetOutsideNetwork flags subnets whose block is not contained in the network block.
type SubnetOutsideNetwork struct{}

func (r SubnetOutsideNetwork) ID() string { return "NG003" }
func (r SubnetOutsideNetwork) Description() string {
	return "Subnet address block outside the network address block"
}

func (r SubnetOutsideNetwork) Check(cfg *config.Config) []Issue {
	network, err := netip.ParsePrefix(cfg.Network.AddressBlock)
	if err != nil {
		return nil
	}
	network = network.Masked()

	var issues []Issue
	for _, name := range cfg.SubnetNames() {
		block := cfg.Subnets[name].CIDRBlock
		sn, err := netip.ParsePrefix(block)
		if err != nil {
			continue
		}
		if sn.Bits() >= network.Bits() && network.Contains(sn.Addr()) {
			continue
		}
		issues = append(issues, Issue{
			Message:  fmt.Sprintf("subnets.%s.cidr_block: %s is not within %s", name, block, cfg.Network.AddressBlock),
			Severity: SeverityError,
		})
	}
	return issues
}

// OverlappingSubnets flags every pair of subnets whose blocks overlap.
type OverlappingSubnets struct{}

func (r OverlappingSubnets) ID() string { return "NG004" }
func (r OverlappingSubnets) Description() string {
	return "Overlapping subnet address blocks"
}

func (r OverlappingSubnets) Check(cfg *config.Config) []Issue {
	names := cfg.SubnetNames()
	prefixes := make(map[string]netip.Prefix, len(names))
	for _, name := range names {
		if p, err := netip.ParsePrefix(cfg.Subnets[name].CIDRBlock); err == nil {
			prefixes[name] = p
		}
	}

	var issues []Issue
	for i, a := range names {
		pa, ok := prefixes[a]
		if !ok {
			continue
		}
		for _, b := range names[i+1:] {
			pb, ok := prefixes[b]
			if !ok || !pa.Overlaps(pb) {
				continue
			}
			issues = append(issues, Issue{
				Message:  fmt.Sprintf("subnets.%s: %s overlaps subnets.%s (%s)", a, pa, b, pb),
				Severity: SeverityError,
			})
		}
	}
	return issues
}

// UnassociatedRouteTable flags route tables no subnet refers to.
type UnassociatedRouteTable struct{}

func (r UnassociatedRouteTable) ID() string { return "NG005" }
func (r UnassociatedRouteTable) Description() string {
	return "Route table never associated with a subnet"
}

func (r UnassociatedRouteTable) Check(cfg *config.Config) []Issue {
	used := make(map[string]bool)
	for _, sn := range cfg.Subnets {
		used[sn.RouteTable] = true
	}

	var issues []Issue
	for _, name := range cfg.RouteTableNames() {
		if used[name] {
			continue
		}
		issues = append(issues, Issue{
			Message:    fmt.Sprintf("route_tables.%s: not associated with any subnet", name),
			Suggestion: "remove the route table or reference it from a subnet",
			Severity:   SeverityInfo,
		})
	}
	return issues
}

// UnresolvedRouteTarget reports routes whose target is not built by the stack.
type UnresolvedRouteTarget struct{}

func (r UnresolvedRouteTarget) ID() string { return "NG006" }
func (r UnresolvedRouteTarget) Description() string {
	return "Route target passed through unresolved"
}

func (r UnresolvedRouteTarget) Check(cfg *config.Config) []Issue {
	var issues []Issue
	for _, name := range cfg.RouteTableNames() {
		for i, route := range cfg.RouteTables[name] {
			if route.TargetKind == config.TargetGateway {
				continue
			}
			msg := fmt.Sprintf("route_tables.%s[%d]: %s target is not managed by this stack", name, i, route.TargetKind)
			if route.TargetRef == "" {
				msg += " and has no target_ref"
			}
			issues = append(issues, Issue{Message: msg, Severity: SeverityInfo})
		}
	}
	return issues
}

// InvertedPortRange flags ingress rules with from_port above to_port.
type InvertedPortRange struct{}

func (r InvertedPortRange) ID() string { return "NG007" }
func (r InvertedPortRange) Description() string {
	return "Ingress rule with an inverted port range"
}

func (r InvertedPortRange) Check(cfg *config.Config) []Issue {
	var issues []Issue
	for _, name := range cfg.SecurityGroupNames() {
		for i, rule := range cfg.SecurityGroups[name].Ingress {
			if rule.FromPort == -1 || rule.ToPort == -1 || rule.FromPort <= rule.ToPort {
				continue
			}
			issues = append(issues, Issue{
				Message:    fmt.Sprintf("security_groups.%s.ingress[%d]: from_port %d is greater than to_port %d", name, i, rule.FromPort, rule.ToPort),
				Suggestion: fmt.Sprintf("from_port: %d, to_port: %d", rule.ToPort, rule.FromPort),
				Severity:   SeverityError,
			})
		}
	}
	return issues
}
