// Package ack renders a resolved resource graph as AWS Controllers for Kubernetes
// manifests.
//
// ACK has no resources for gateway attachments, routes or route table associations:
// an attachment becomes the gateway's vpcRef, routes are inlined in their route
// table and associations become the subnet's routeTableRefs.
package ack

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	netgraph "github.com/lex00/netgraph-go"
	"github.com/lex00/netgraph-go/internal/builder"
	"github.com/lex00/netgraph-go/internal/config"
	ec2v1alpha1 "github.com/lex00/netgraph-go/resources/k8s/ec2/v1alpha1"
	ecsv1alpha1 "github.com/lex00/netgraph-go/resources/k8s/ecs/v1alpha1"
)

// Labels set on every object.
const (
	LabelManagedBy = "app.kubernetes.io/managed-by"
	LabelLogicalID = "netgraph.lex00.dev/logical-id"
)

// DefaultNamespace is used when Emitter.Namespace is empty.
const DefaultNamespace = "ack-system"

// Emitter converts a graph into ACK custom resources.
type Emitter struct {
	graph *builder.Graph
	names map[string]string

	// Namespace of every object.
	Namespace string
}

// NewEmitter creates an emitter for g.
func NewEmitter(g *builder.Graph) *Emitter {
	return &Emitter{graph: g}
}

// Objects returns one custom resource per emitted graph node, in graph order.
func (e *Emitter) Objects() ([]any, error) {
	e.assignNames()

	var objects []any
	for _, res := range e.graph.Resources() {
		obj, err := e.object(res)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", res.ID, err)
		}
		if obj != nil {
			objects = append(objects, obj)
		}
	}
	return objects, nil
}

// Render returns the objects as a multi-document YAML stream.
func (e *Emitter) Render() ([]byte, error) {
	objects, err := e.Objects()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for i, obj := range objects {
		data, err := yaml.Marshal(obj)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteString("---\n")
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

func (e *Emitter) object(res *builder.Resource) (any, error) {
	meta := e.objectMeta(res)

	switch p := res.Props.(type) {
	case builder.NetworkProps:
		return &ec2v1alpha1.VPC{
			TypeMeta:   ec2v1alpha1.TypeMeta(ec2v1alpha1.KindVPC),
			ObjectMeta: meta,
			Spec: ec2v1alpha1.VPCSpec{
				CIDRBlocks:         []*string{ec2v1alpha1.String(p.AddressBlock)},
				EnableDNSSupport:   ec2v1alpha1.Bool(p.DNSSupport),
				EnableDNSHostnames: ec2v1alpha1.Bool(p.DNSHostnames),
				Tags:               e.ec2Tags(res),
			},
		}, nil

	case builder.GatewayProps:
		gw := &ec2v1alpha1.InternetGateway{
			TypeMeta:   ec2v1alpha1.TypeMeta(ec2v1alpha1.KindInternetGateway),
			ObjectMeta: meta,
			Spec:       ec2v1alpha1.InternetGatewaySpec{Tags: e.ec2Tags(res)},
		}
		for _, a := range e.graph.OfKind(netgraph.KindGatewayAttachment) {
			if ap := a.Props.(builder.AttachmentProps); ap.GatewayID == res.ID {
				gw.Spec.VPCRef = e.refTo(ap.NetworkID)
			}
		}
		return gw, nil

	case builder.SubnetProps:
		sn := &ec2v1alpha1.Subnet{
			TypeMeta:   ec2v1alpha1.TypeMeta(ec2v1alpha1.KindSubnet),
			ObjectMeta: meta,
			Spec: ec2v1alpha1.SubnetSpec{
				AvailabilityZone:    ec2v1alpha1.String(p.AvailabilityZone),
				CIDRBlock:           ec2v1alpha1.String(p.CIDRBlock),
				VPCRef:              e.refTo(p.NetworkID),
				MapPublicIPOnLaunch: ec2v1alpha1.Bool(p.MapPublicIPOnLaunch),
				Tags:                e.ec2Tags(res),
			},
		}
		for _, a := range e.graph.OfKind(netgraph.KindAssociation) {
			if ap := a.Props.(builder.AssociationProps); ap.SubnetID == res.ID {
				sn.Spec.RouteTableRefs = append(sn.Spec.RouteTableRefs, e.refTo(ap.RouteTableID))
			}
		}
		return sn, nil

	case builder.RouteTableProps:
		rt := &ec2v1alpha1.RouteTable{
			TypeMeta:   ec2v1alpha1.TypeMeta(ec2v1alpha1.KindRouteTable),
			ObjectMeta: meta,
			Spec: ec2v1alpha1.RouteTableSpec{
				VPCRef: e.refTo(p.NetworkID),
				Tags:   e.ec2Tags(res),
			},
		}
		for _, r := range e.graph.OfKind(netgraph.KindRoute) {
			rp := r.Props.(builder.RouteProps)
			if rp.RouteTableID != res.ID {
				continue
			}
			route, err := e.route(r.Name, rp)
			if err != nil {
				return nil, err
			}
			rt.Spec.Routes = append(rt.Spec.Routes, route)
		}
		return rt, nil

	case builder.SecurityGroupProps:
		sg := &ec2v1alpha1.SecurityGroup{
			TypeMeta:   ec2v1alpha1.TypeMeta(ec2v1alpha1.KindSecurityGroup),
			ObjectMeta: meta,
			Spec: ec2v1alpha1.SecurityGroupSpec{
				Description: ec2v1alpha1.String(p.Description),
				Name:        ec2v1alpha1.String(groupName(res.Name, p.GroupName)),
				VPCRef:      e.refTo(p.NetworkID),
				Tags:        e.ec2Tags(res),
			},
		}
		for _, rule := range p.Ingress {
			sg.Spec.IngressRules = append(sg.Spec.IngressRules, ipPermission(rule))
		}
		return sg, nil

	case builder.ClusterProps:
		cluster := &ecsv1alpha1.Cluster{
			TypeMeta:   metav1.TypeMeta{APIVersion: ecsv1alpha1.GroupVersion, Kind: ecsv1alpha1.KindCluster},
			ObjectMeta: meta,
			Spec:       ecsv1alpha1.ClusterSpec{Name: ec2v1alpha1.String(p.ClusterName)},
		}
		if p.FargateCapacityProviders {
			cluster.Spec.CapacityProviders = []*string{ec2v1alpha1.String("FARGATE"), ec2v1alpha1.String("FARGATE_SPOT")}
		}
		if p.ContainerInsights {
			cluster.Spec.Settings = []*ecsv1alpha1.ClusterSetting{{
				Name:  ec2v1alpha1.String("containerInsights"),
				Value: ec2v1alpha1.String("enabled"),
			}}
		}
		for _, t := range e.ec2Tags(res) {
			cluster.Spec.Tags = append(cluster.Spec.Tags, &ecsv1alpha1.Tag{Key: t.Key, Value: t.Value})
		}
		return cluster, nil

	case builder.AttachmentProps, builder.RouteProps, builder.AssociationProps:
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported properties %T", res.Props)
	}
}

func (e *Emitter) route(name string, p builder.RouteProps) (*ec2v1alpha1.CreateRouteInput, error) {
	route := &ec2v1alpha1.CreateRouteInput{}
	if strings.Contains(p.DestinationCIDRBlock, ":") {
		route.DestinationIPv6CIDRBlock = ec2v1alpha1.String(p.DestinationCIDRBlock)
	} else {
		route.DestinationCIDRBlock = ec2v1alpha1.String(p.DestinationCIDRBlock)
	}

	switch p.TargetKind {
	case config.TargetGateway:
		route.GatewayRef = e.refTo(p.TargetID)
	case config.TargetNAT:
		route.NATGatewayID = ec2v1alpha1.String(p.TargetRef)
	case config.TargetPeering:
		route.VPCPeeringConnectionID = ec2v1alpha1.String(p.TargetRef)
	default:
		return nil, fmt.Errorf("route %s: target kind %q has no ACK field", name, p.TargetKind)
	}
	if p.TargetKind != config.TargetGateway && p.TargetRef == "" {
		return nil, fmt.Errorf("route %s: %s target has no target_ref", name, p.TargetKind)
	}
	return route, nil
}

func (e *Emitter) objectMeta(res *builder.Resource) metav1.ObjectMeta {
	ns := e.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	return metav1.ObjectMeta{
		Name:      e.names[res.ID],
		Namespace: ns,
		Labels: map[string]string{
			LabelManagedBy: "netgraph",
			LabelLogicalID: res.ID,
		},
	}
}

// refTo references the object rendered for the resource with logical ID id.
func (e *Emitter) refTo(id string) *ec2v1alpha1.AWSResourceReferenceWrapper {
	if name, ok := e.names[id]; ok {
		return ec2v1alpha1.RefTo(name)
	}
	return ec2v1alpha1.RefTo(ObjectName(id))
}

// assignNames gives every rendered resource an object name unique within its kind.
// Logical names that sanitize to the same object name get a numeric suffix in
// graph order.
func (e *Emitter) assignNames() {
	e.names = make(map[string]string)
	taken := make(map[netgraph.Kind]map[string]bool)
	for _, res := range e.graph.Resources() {
		switch res.Kind {
		case netgraph.KindGatewayAttachment, netgraph.KindRoute, netgraph.KindAssociation:
			continue
		}
		if taken[res.Kind] == nil {
			taken[res.Kind] = make(map[string]bool)
		}
		e.names[res.ID] = uniqueName(ObjectName(res.Name), taken[res.Kind])
	}
}

func uniqueName(base string, taken map[string]bool) string {
	name := base
	for i := 2; taken[name]; i++ {
		suffix := fmt.Sprintf("-%d", i)
		trimmed := base
		if len(trimmed)+len(suffix) > maxNameLength {
			trimmed = strings.TrimRight(trimmed[:maxNameLength-len(suffix)], "-")
		}
		name = trimmed + suffix
	}
	taken[name] = true
	return name
}

func (e *Emitter) ec2Tags(res *builder.Resource) []*ec2v1alpha1.Tag {
	tags := []*ec2v1alpha1.Tag{{Key: ec2v1alpha1.String("Name"), Value: ec2v1alpha1.String(res.Name)}}
	for _, k := range sortedKeys(e.graph.Tags()) {
		if k == "Name" {
			continue
		}
		tags = append(tags, &ec2v1alpha1.Tag{Key: ec2v1alpha1.String(k), Value: ec2v1alpha1.String(e.graph.Tags()[k])})
	}
	return tags
}

func ipPermission(rule builder.IngressRule) *ec2v1alpha1.IPPermission {
	perm := &ec2v1alpha1.IPPermission{
		IPProtocol: ec2v1alpha1.String(rule.Protocol),
		FromPort:   ec2v1alpha1.Int64(int64(rule.FromPort)),
		ToPort:     ec2v1alpha1.Int64(int64(rule.ToPort)),
	}
	var desc *string
	if rule.Description != "" {
		desc = ec2v1alpha1.String(rule.Description)
	}
	if rule.CidrIPv6 != "" {
		perm.IPv6Ranges = []*ec2v1alpha1.IPv6Range{{CIDRIPv6: ec2v1alpha1.String(rule.CidrIPv6), Description: desc}}
	} else {
		perm.IPRanges = []*ec2v1alpha1.IPRange{{CIDRIP: ec2v1alpha1.String(rule.CidrIPv4), Description: desc}}
	}
	return perm
}

func groupName(name, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return name
}

const maxNameLength = 63

var invalidNameChars = regexp.MustCompile(`[^a-z0-9-]+`)

// ObjectName converts a logical name to a valid Kubernetes object name.
func ObjectName(name string) string {
	n := invalidNameChars.ReplaceAllString(strings.ToLower(name), "-")
	n = strings.Trim(n, "-")
	if len(n) > maxNameLength {
		n = strings.TrimRight(n[:maxNameLength], "-")
	}
	if n == "" {
		return "resource"
	}
	return n
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
