// Package netgraph builds the network layer of an ECS cluster stack as a resolved
// resource graph.
//
// A static configuration names every resource and expresses cross-references as
// logical names:
//
//	subnets:
//	  ecs-stack-public-sn-1:
//	    availability_zone: us-east-1a
//	    cidr_block: 10.0.1.0/24
//	    route_table_id: ecs-stack-public-rtb
//
// The builder resolves those names to generated identifiers in a fixed phase order and
// hands the graph to an emitter (CloudFormation, ACK manifests, or an EC2 request plan).
package netgraph

// Kind identifies the type of a resource in the graph. Logical names are unique per kind.
type Kind string

const (
	KindNetwork           Kind = "Network"
	KindGateway           Kind = "Gateway"
	KindGatewayAttachment Kind = "GatewayAttachment"
	KindSubnet            Kind = "Subnet"
	KindRouteTable        Kind = "RouteTable"
	KindRoute             Kind = "Route"
	KindAssociation       Kind = "SubnetRouteTableAssociation"
	KindSecurityGroup     Kind = "SecurityGroup"
	KindCluster           Kind = "Cluster"
)

// Template represents a CloudFormation template.
type Template struct {
	AWSTemplateFormatVersion string                 `json:"AWSTemplateFormatVersion" yaml:"AWSTemplateFormatVersion"`
	Description              string                 `json:"Description,omitempty" yaml:"Description,omitempty"`
	Resources                map[string]ResourceDef `json:"Resources" yaml:"Resources"`
	Outputs                  map[string]Output      `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
}

// ResourceDef is a single resource in the CloudFormation template.
type ResourceDef struct {
	Type       string         `json:"Type" yaml:"Type"`
	Properties map[string]any `json:"Properties,omitempty" yaml:"Properties,omitempty"`
	DependsOn  []string       `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
}

// Output is a CloudFormation template output.
type Output struct {
	Description string        `json:"Description,omitempty" yaml:"Description,omitempty"`
	Value       any           `json:"Value" yaml:"Value"`
	Export      *OutputExport `json:"Export,omitempty" yaml:"Export,omitempty"`
}

// OutputExport names a cross-stack export. Name is a string or an intrinsic.
type OutputExport struct {
	Name any `json:"Name" yaml:"Name"`
}

// BuildResult is the JSON output from `netgraph build` when it fails.
type BuildResult struct {
	Success   bool     `json:"success"`
	Resources []string `json:"resources,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// ValidateResult is the JSON output from `netgraph validate`.
type ValidateResult struct {
	Success   bool     `json:"success"`
	Resources int      `json:"resources"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ListResult is the JSON output from `netgraph list`.
type ListResult struct {
	Resources []ListResource `json:"resources"`
}

// ListResource is a single resource in the list output.
type ListResource struct {
	Name       string   `json:"name"`
	LogicalID  string   `json:"logical_id"`
	Kind       Kind     `json:"kind"`
	Phase      string   `json:"phase"`
	References []string `json:"references,omitempty"`
}

// LintResult is the JSON output from `netgraph lint`.
type LintResult struct {
	Success bool        `json:"success"`
	Issues  []LintIssue `json:"issues,omitempty"`
}

// LintIssue is a single linting issue.
type LintIssue struct {
	File     string `json:"file"`
	Severity string `json:"severity"` // "error", "warning", "info"
	Message  string `json:"message"`
	Rule     string `json:"rule"`
	Resource string `json:"resource,omitempty"`
}

// TemplateDiff lists resources that differ between two templates.
type TemplateDiff struct {
	Added    []DiffEntry `json:"added,omitempty"`
	Removed  []DiffEntry `json:"removed,omitempty"`
	Modified []DiffEntry `json:"modified,omitempty"`
}

// DiffEntry is one resource-level difference.
type DiffEntry struct {
	Resource string   `json:"resource"`
	Type     string   `json:"type"`
	Changes  []string `json:"changes,omitempty"`
}

// DiffSummary counts the differences by category.
type DiffSummary struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
	Total    int `json:"total"`
}

// DiffResult is the JSON output from `netgraph diff`.
type DiffResult struct {
	Success bool         `json:"success"`
	Diff    TemplateDiff `json:"diff"`
	Summary DiffSummary  `json:"summary"`
}
