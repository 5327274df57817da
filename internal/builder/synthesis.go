// Package builder resolves a network configuration into a typed resource graph.
//
// A Synthesis owns every lookup map of one pass. Its operations must run in phase
// order; each validates all of its inputs before creating anything, and the first
// failure is sticky: later operations return it and Graph emits nothing.
package builder

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"sort"
	"strings"

	netgraph "github.com/lex00/netgraph-go"
	"github.com/lex00/netgraph-go/internal/config"
	"github.com/lex00/netgraph-go/internal/serialize"
)

var (
	ErrEmptyAddressBlock = errors.New("address block must not be empty")
	ErrEmptyName         = errors.New("logical name must not be empty")
)

// Option configures a Synthesis.
type Option func(*Synthesis)

// WithLogger sets the logger used for phase progress.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesis) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTags sets extra tags carried by the emitted graph.
func WithTags(tags map[string]string) Option {
	return func(s *Synthesis) {
		s.tags = tags
	}
}

// Synthesis is a single synthesis pass. It is not safe for concurrent use.
type Synthesis struct {
	logger *slog.Logger
	tags   map[string]string
	err    error
	done   map[Phase]bool

	resources []*Resource
	ids       map[string]bool

	network        *NetworkHandle
	gateways       map[string]GatewayHandle
	subnets        map[string]SubnetHandle
	routeTables    map[string]RouteTableHandle
	routes         map[string]bool
	associated     map[string]bool
	securityGroups map[string]SecurityGroupHandle
	clusters       map[string]ClusterHandle
}

// New starts an empty synthesis pass.
func New(opts ...Option) *Synthesis {
	s := &Synthesis{
		logger:         slog.New(slog.DiscardHandler),
		done:           make(map[Phase]bool),
		ids:            make(map[string]bool),
		gateways:       make(map[string]GatewayHandle),
		subnets:        make(map[string]SubnetHandle),
		routeTables:    make(map[string]RouteTableHandle),
		routes:         make(map[string]bool),
		associated:     make(map[string]bool),
		securityGroups: make(map[string]SecurityGroupHandle),
		clusters:       make(map[string]ClusterHandle),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Err returns the error that failed the pass, if any.
func (s *Synthesis) Err() error {
	return s.err
}

// Completed reports whether phase p has completed at least once.
func (s *Synthesis) Completed(p Phase) bool {
	return s.done[p]
}

// BuildNetwork creates the network. A pass has exactly one network.
func (s *Synthesis) BuildNetwork(spec config.Network) (NetworkHandle, error) {
	if err := s.begin(PhaseNetwork); err != nil {
		return NetworkHandle{}, err
	}
	if s.network != nil {
		return NetworkHandle{}, s.fail(&netgraph.DuplicateNameError{Kind: netgraph.KindNetwork, Name: spec.Name})
	}
	if err := checkName(netgraph.KindNetwork, spec.Name); err != nil {
		return NetworkHandle{}, s.fail(err)
	}
	if strings.TrimSpace(spec.AddressBlock) == "" {
		return NetworkHandle{}, s.fail(fmt.Errorf("%s %q: %w", netgraph.KindNetwork, spec.Name, ErrEmptyAddressBlock))
	}

	res := s.add(netgraph.KindNetwork, spec.Name, PhaseNetwork, NetworkProps{
		AddressBlock: spec.AddressBlock,
		DNSSupport:   spec.DNSSupport,
		DNSHostnames: spec.DNSHostnames,
	})
	h := NetworkHandle{Name: spec.Name, ID: res.ID}
	s.network = &h
	s.complete(PhaseNetwork, 1)
	return h, nil
}

// AttachGateway creates a gateway and the attachment record binding it to network.
func (s *Synthesis) AttachGateway(network NetworkHandle, spec config.Gateway) (GatewayHandle, error) {
	if err := s.begin(PhaseGateway); err != nil {
		return GatewayHandle{}, err
	}
	if err := s.checkNetwork(network, netgraph.KindGateway, spec.Name); err != nil {
		return GatewayHandle{}, s.fail(err)
	}
	if err := checkName(netgraph.KindGateway, spec.Name); err != nil {
		return GatewayHandle{}, s.fail(err)
	}
	if _, dup := s.gateways[spec.Name]; dup {
		return GatewayHandle{}, s.fail(&netgraph.DuplicateNameError{Kind: netgraph.KindGateway, Name: spec.Name})
	}

	gw := s.add(netgraph.KindGateway, spec.Name, PhaseGateway, GatewayProps{})
	att := s.add(netgraph.KindGatewayAttachment, spec.Name+"-attachment", PhaseGateway, AttachmentProps{
		NetworkID: network.ID,
		GatewayID: gw.ID,
	}, network.ID, gw.ID)

	h := GatewayHandle{Name: spec.Name, ID: gw.ID, AttachmentID: att.ID}
	s.gateways[spec.Name] = h
	s.complete(PhaseGateway, 2)
	return h, nil
}

// CreateSubnets creates one subnet per entry in name order. Route table names are
// stored unresolved.
func (s *Synthesis) CreateSubnets(network NetworkHandle, specs map[string]config.Subnet) (map[string]SubnetHandle, error) {
	if err := s.begin(PhaseSubnets); err != nil {
		return nil, err
	}
	names := sortedNames(specs)
	for _, name := range names {
		if err := s.checkNetwork(network, netgraph.KindSubnet, name); err != nil {
			return nil, s.fail(err)
		}
		if err := checkName(netgraph.KindSubnet, name); err != nil {
			return nil, s.fail(err)
		}
		if _, dup := s.subnets[name]; dup {
			return nil, s.fail(&netgraph.DuplicateNameError{Kind: netgraph.KindSubnet, Name: name})
		}
	}

	out := make(map[string]SubnetHandle, len(names))
	for _, name := range names {
		spec := specs[name]
		res := s.add(netgraph.KindSubnet, name, PhaseSubnets, SubnetProps{
			NetworkID:           network.ID,
			AvailabilityZone:    spec.AvailabilityZone,
			CIDRBlock:           spec.CIDRBlock,
			MapPublicIPOnLaunch: spec.MapPublicIPOnLaunch,
			RouteTable:          spec.RouteTable,
		}, network.ID)
		h := SubnetHandle{Name: name, ID: res.ID, RouteTable: spec.RouteTable}
		s.subnets[name] = h
		out[name] = h
	}
	s.complete(PhaseSubnets, len(out))
	return out, nil
}

// CreateRouteTables creates one empty route table per name, in the given order.
func (s *Synthesis) CreateRouteTables(network NetworkHandle, names []string) (map[string]RouteTableHandle, error) {
	if err := s.begin(PhaseRouteTables); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if err := s.checkNetwork(network, netgraph.KindRouteTable, name); err != nil {
			return nil, s.fail(err)
		}
		if err := checkName(netgraph.KindRouteTable, name); err != nil {
			return nil, s.fail(err)
		}
		if _, dup := s.routeTables[name]; dup || seen[name] {
			return nil, s.fail(&netgraph.DuplicateNameError{Kind: netgraph.KindRouteTable, Name: name})
		}
		seen[name] = true
	}

	out := make(map[string]RouteTableHandle, len(names))
	for _, name := range names {
		res := s.add(netgraph.KindRouteTable, name, PhaseRouteTables, RouteTableProps{NetworkID: network.ID}, network.ID)
		h := RouteTableHandle{Name: name, ID: res.ID}
		s.routeTables[name] = h
		out[name] = h
	}
	s.complete(PhaseRouteTables, len(out))
	return out, nil
}

// ResolveRoutes creates the routes of each table in declared order. Gateway routes
// resolve to gateway, which must have been attached in this pass; other target
// kinds pass through with their raw target reference.
func (s *Synthesis) ResolveRoutes(tables map[string]RouteTableHandle, routes map[string][]config.Route, gateway *GatewayHandle) error {
	if err := s.begin(PhaseRoutes); err != nil {
		return err
	}

	type pending struct {
		name  string
		props RouteProps
		refs  []string
	}
	var planned []pending

	for _, table := range sortedNames(routes) {
		th, ok := s.lookupTable(tables, table)
		if !ok {
			return s.fail(&netgraph.UnresolvedReferenceError{
				Kind: netgraph.KindRoute, Name: table + "-route-0",
				Target: netgraph.KindRouteTable, Ref: table,
			})
		}
		for i, r := range routes[table] {
			name := fmt.Sprintf("%s-route-%d", table, i)
			if s.routes[name] {
				return s.fail(&netgraph.DuplicateNameError{Kind: netgraph.KindRoute, Name: name})
			}
			props := RouteProps{
				RouteTableID:         th.ID,
				DestinationCIDRBlock: r.DestinationCIDRBlock,
				TargetKind:           r.TargetKind,
			}
			refs := []string{th.ID}

			if r.TargetKind == config.TargetGateway {
				gw, err := s.resolveGateway(name, r, gateway)
				if err != nil {
					return s.fail(err)
				}
				props.TargetID = gw.ID
				props.AttachmentID = gw.AttachmentID
				refs = append(refs, gw.ID, gw.AttachmentID)
			} else {
				props.TargetRef = r.TargetRef
				s.logger.Debug("Route target passed through unresolved.", "route", name, "target_kind", r.TargetKind)
			}
			planned = append(planned, pending{name: name, props: props, refs: refs})
		}
	}

	for _, p := range planned {
		s.routes[p.name] = true
		s.add(netgraph.KindRoute, p.name, PhaseRoutes, p.props, p.refs...)
	}
	s.complete(PhaseRoutes, len(planned))
	return nil
}

func (s *Synthesis) resolveGateway(route string, r config.Route, gateway *GatewayHandle) (GatewayHandle, error) {
	unresolved := &netgraph.UnresolvedReferenceError{
		Kind: netgraph.KindRoute, Name: route,
		Target: netgraph.KindGateway, Ref: r.GatewayRef,
	}
	if gateway == nil {
		return GatewayHandle{}, unresolved
	}
	if r.GatewayRef != "" && r.GatewayRef != gateway.Name {
		return GatewayHandle{}, unresolved
	}
	attached, ok := s.gateways[gateway.Name]
	if !ok || attached.ID != gateway.ID {
		unresolved.Ref = gateway.Name
		return GatewayHandle{}, unresolved
	}
	return attached, nil
}

// AssociateSubnets resolves each subnet's route table name and links the two.
func (s *Synthesis) AssociateSubnets(subnets map[string]SubnetHandle, tables map[string]RouteTableHandle, specs map[string]config.Subnet) error {
	if err := s.begin(PhaseAssociations); err != nil {
		return err
	}

	type pending struct {
		name         string
		subnet       string
		subnetID     string
		routeTableID string
	}
	var planned []pending

	for _, name := range sortedNames(specs) {
		sh, ok := subnets[name]
		if created, exists := s.subnets[name]; !ok || !exists || created.ID != sh.ID {
			return s.fail(&netgraph.UnresolvedReferenceError{
				Kind: netgraph.KindAssociation, Name: name,
				Target: netgraph.KindSubnet, Ref: name,
			})
		}
		table := specs[name].RouteTable
		th, ok := s.lookupTable(tables, table)
		if !ok {
			return s.fail(&netgraph.UnresolvedReferenceError{
				Kind: netgraph.KindSubnet, Name: name,
				Target: netgraph.KindRouteTable, Ref: table,
			})
		}
		if s.associated[name] {
			return s.fail(&netgraph.DuplicateNameError{Kind: netgraph.KindAssociation, Name: name + "-" + table})
		}
		planned = append(planned, pending{
			name:         name + "-" + table,
			subnet:       name,
			subnetID:     sh.ID,
			routeTableID: th.ID,
		})
	}

	for _, p := range planned {
		s.add(netgraph.KindAssociation, p.name, PhaseAssociations, AssociationProps{
			SubnetID:     p.subnetID,
			RouteTableID: p.routeTableID,
		}, p.subnetID, p.routeTableID)
		s.associated[p.subnet] = true
	}
	s.complete(PhaseAssociations, len(planned))
	return nil
}

// CreateSecurityGroups creates one security group per entry in name order.
// Ingress rules keep their declared order.
func (s *Synthesis) CreateSecurityGroups(network NetworkHandle, specs map[string]config.SecurityGroup) (map[string]SecurityGroupHandle, error) {
	if err := s.begin(PhaseSecurityGroups); err != nil {
		return nil, err
	}
	names := sortedNames(specs)
	for _, name := range names {
		if err := s.checkNetwork(network, netgraph.KindSecurityGroup, name); err != nil {
			return nil, s.fail(err)
		}
		if err := checkName(netgraph.KindSecurityGroup, name); err != nil {
			return nil, s.fail(err)
		}
		if _, dup := s.securityGroups[name]; dup {
			return nil, s.fail(&netgraph.DuplicateNameError{Kind: netgraph.KindSecurityGroup, Name: name})
		}
	}

	out := make(map[string]SecurityGroupHandle, len(names))
	for _, name := range names {
		spec := specs[name]
		ingress := make([]IngressRule, 0, len(spec.Ingress))
		for _, rule := range spec.Ingress {
			ingress = append(ingress, newIngressRule(rule))
		}
		res := s.add(netgraph.KindSecurityGroup, name, PhaseSecurityGroups, SecurityGroupProps{
			NetworkID:   network.ID,
			Description: spec.Description,
			GroupName:   spec.GroupName,
			Ingress:     ingress,
		}, network.ID)
		h := SecurityGroupHandle{Name: name, ID: res.ID}
		s.securityGroups[name] = h
		out[name] = h
	}
	s.complete(PhaseSecurityGroups, len(out))
	return out, nil
}

// CreateCluster creates the ECS cluster placed on network.
func (s *Synthesis) CreateCluster(network NetworkHandle, spec config.Cluster) (ClusterHandle, error) {
	if err := s.begin(PhaseCluster); err != nil {
		return ClusterHandle{}, err
	}
	if err := s.checkNetwork(network, netgraph.KindCluster, spec.Name); err != nil {
		return ClusterHandle{}, s.fail(err)
	}
	if err := checkName(netgraph.KindCluster, spec.Name); err != nil {
		return ClusterHandle{}, s.fail(err)
	}
	if _, dup := s.clusters[spec.Name]; dup {
		return ClusterHandle{}, s.fail(&netgraph.DuplicateNameError{Kind: netgraph.KindCluster, Name: spec.Name})
	}

	res := s.add(netgraph.KindCluster, spec.Name, PhaseCluster, ClusterProps{
		ClusterName:              spec.Name,
		FargateCapacityProviders: spec.FargateCapacityProviders,
		ContainerInsights:        spec.ContainerInsights,
	}, network.ID)
	h := ClusterHandle{Name: spec.Name, ID: res.ID}
	s.clusters[spec.Name] = h
	s.complete(PhaseCluster, 1)
	return h, nil
}

func (s *Synthesis) begin(p Phase) error {
	if s.err != nil {
		return s.err
	}
	for _, req := range p.Requires() {
		if !s.done[req] {
			return s.fail(&netgraph.PhaseOrderError{Phase: p.String(), Missing: req.String()})
		}
	}
	return nil
}

func (s *Synthesis) complete(p Phase, created int) {
	s.done[p] = true
	s.logger.Debug("Phase complete.", "phase", p, "created", created, "total", len(s.resources))
}

func (s *Synthesis) fail(err error) error {
	s.err = err
	s.logger.Debug("Synthesis failed.", "error", err)
	return err
}

func (s *Synthesis) checkNetwork(h NetworkHandle, kind netgraph.Kind, name string) error {
	if s.network == nil || s.network.ID != h.ID {
		return &netgraph.UnresolvedReferenceError{Kind: kind, Name: name, Target: netgraph.KindNetwork, Ref: h.Name}
	}
	return nil
}

func (s *Synthesis) lookupTable(tables map[string]RouteTableHandle, name string) (RouteTableHandle, bool) {
	th, ok := tables[name]
	if !ok {
		return RouteTableHandle{}, false
	}
	created, ok := s.routeTables[name]
	if !ok || created.ID != th.ID {
		return RouteTableHandle{}, false
	}
	return th, true
}

// add records a resource under a fresh logical ID.
func (s *Synthesis) add(kind netgraph.Kind, name string, phase Phase, props any, refs ...string) *Resource {
	res := &Resource{
		Kind:  kind,
		Name:  name,
		ID:    s.allocID(kind, name),
		Phase: phase,
		Props: props,
		Refs:  refs,
		seq:   len(s.resources),
	}
	s.resources = append(s.resources, res)
	return res
}

// allocID derives a logical ID from the name. Names that collide after conversion
// get the kind appended, then a counter.
func (s *Synthesis) allocID(kind netgraph.Kind, name string) string {
	base := serialize.ToPascalCase(name)
	if base == "" || !isLetter(base[0]) {
		base = string(kind) + base
	}
	id := base
	if s.ids[id] {
		id = base + string(kind)
		for i := 2; s.ids[id]; i++ {
			id = fmt.Sprintf("%s%s%d", base, kind, i)
		}
	}
	s.ids[id] = true
	return id
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func checkName(kind netgraph.Kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s: %w", kind, ErrEmptyName)
	}
	return nil
}

func newIngressRule(rule config.IngressRule) IngressRule {
	out := IngressRule{
		Protocol:    normalizeProtocol(rule.Protocol),
		FromPort:    rule.FromPort,
		ToPort:      rule.ToPort,
		Description: rule.Description,
	}
	if isIPv6(rule.SourceBlock) {
		out.CidrIPv6 = rule.SourceBlock
	} else {
		out.CidrIPv4 = rule.SourceBlock
	}
	return out
}

func isIPv6(block string) bool {
	if p, err := netip.ParsePrefix(block); err == nil {
		return p.Addr().Is6()
	}
	return strings.Contains(block, ":")
}

// normalizeProtocol maps protocol names and numbers to the lower-case names EC2 uses.
func normalizeProtocol(protocol string) string {
	switch p := strings.ToLower(strings.TrimSpace(protocol)); p {
	case "6":
		return "tcp"
	case "17":
		return "udp"
	case "1":
		return "icmp"
	case "58":
		return "icmpv6"
	case "all":
		return "-1"
	default:
		return p
	}
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
