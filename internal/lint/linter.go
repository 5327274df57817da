package lint

import (
	"fmt"
	"sort"

	corelint "github.com/lex00/wetwire-core-go/lint"

	netgraph "github.com/lex00/netgraph-go"
	"github.com/lex00/netgraph-go/internal/config"
)

// Type aliases for the core lint package.
type (
	// Issue is an alias for corelint.Issue.
	Issue = corelint.Issue
	// Severity is an alias for corelint.Severity.
	Severity = corelint.Severity
)

// Severity constants.
const (
	SeverityError   = corelint.SeverityError
	SeverityWarning = corelint.SeverityWarning
	SeverityInfo    = corelint.SeverityInfo
)

// Rule checks a configuration for one class of problem.
type Rule interface {
	ID() string
	Description() string
	Check(cfg *config.Config) []Issue
}

// Result contains the outcome of linting.
type Result struct {
	Success bool
	Issues  []Issue
}

// Options configures the linter.
type Options struct {
	// File is reported on every issue.
	File string
	// Rules to enable. If empty, all rules are enabled.
	EnabledRules []string
	// Rules to skip. Applied after EnabledRules.
	DisabledRules []string
	// AdminPorts overrides the ports NG001 treats as administrative.
	AdminPorts []int
}

// Lint runs the selected rules over cfg. Issues are ordered by rule ID and then by
// the order the rule reported them. Success is false only when an error-severity
// issue is present.
func Lint(cfg *config.Config, opts Options) Result {
	var issues []Issue
	for _, rule := range getRules(opts) {
		for _, issue := range rule.Check(cfg) {
			issue.Rule = rule.ID()
			issue.File = opts.File
			issues = append(issues, issue)
		}
	}

	success := true
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			success = false
			break
		}
	}

	return Result{Success: success, Issues: issues}
}

// ToResult converts lint output to the CLI's JSON shape.
func ToResult(r Result) netgraph.LintResult {
	out := netgraph.LintResult{Success: r.Success}
	for _, issue := range r.Issues {
		out.Issues = append(out.Issues, netgraph.LintIssue{
			File:     issue.File,
			Severity: fmt.Sprint(issue.Severity),
			Message:  issue.Message,
			Rule:     issue.Rule,
		})
	}
	return out
}

// AllRules returns every rule in ID order.
func AllRules() []Rule {
	return []Rule{
		OpenAdminPort{},
		PrivateSubnetOnPublicTable{},
		SubnetOutsideNetwork{},
		OverlappingSubnets{},
		UnassociatedRouteTable{},
		UnresolvedRouteTarget{},
		InvertedPortRange{},
	}
}

// getRules returns the rules to use based on options.
func getRules(opts Options) []Rule {
	all := AllRules()

	if len(opts.AdminPorts) > 0 {
		for i, r := range all {
			if _, ok := r.(OpenAdminPort); ok {
				all[i] = OpenAdminPort{Ports: opts.AdminPorts}
			}
		}
	}

	enabled := toSet(opts.EnabledRules)
	disabled := toSet(opts.DisabledRules)

	var filtered []Rule
	for _, r := range all {
		if len(enabled) > 0 && !enabled[r.ID()] {
			continue
		}
		if disabled[r.ID()] {
			continue
		}
		filtered = append(filtered, r)
	}

	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].ID() < filtered[j].ID() })
	return filtered
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
