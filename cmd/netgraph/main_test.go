package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	netgraph "github.com/lex00/netgraph-go"
	"github.com/lex00/netgraph-go/internal/config"
)

// executeCommand runs the root command with args and returns stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// writeConfig writes cfg as YAML into a temp dir and returns its path.
func writeConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := config.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "stack.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, 2, exitCode(errIssuesFound))
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"build", "validate", "lint", "list", "graph", "diff", "watch", "init", "version"} {
		assert.Contains(t, names, want)
	}
	for _, flag := range []string{"config", "log-level", "log-format"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "missing --%s", flag)
	}
}

func TestBuild_JSON(t *testing.T) {
	out, _, err := executeCommand(t, "build")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	resources := doc["Resources"].(map[string]any)
	assert.Len(t, resources, 14)
	assert.Contains(t, resources, "EcsStackVpc")
}

func TestBuild_YAML(t *testing.T) {
	out, _, err := executeCommand(t, "build", "-f", "yaml", "--description", "ecs networking")
	require.NoError(t, err)
	assert.Contains(t, out, "AWSTemplateFormatVersion")
	assert.Contains(t, out, "ecs networking")
	assert.Contains(t, out, "AWS::EC2::SubnetRouteTableAssociation")
}

func TestBuild_ACK(t *testing.T) {
	out, _, err := executeCommand(t, "build", "-f", "ack", "--namespace", "networking")
	require.NoError(t, err)
	assert.Equal(t, 9, strings.Count(out, "kind: "))
	assert.Contains(t, out, "namespace: networking")
}

func TestBuild_Plan(t *testing.T) {
	out, _, err := executeCommand(t, "build", "-f", "plan")
	require.NoError(t, err)
	assert.Contains(t, out, `"CreateVpc"`)
	assert.Contains(t, out, `"CreateCluster"`)
	assert.Contains(t, out, `"us-east-1"`)
}

func TestBuild_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.json")
	out, _, err := executeCommand(t, "build", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "EcsStackSg")
}

func TestBuild_UnknownFormat(t *testing.T) {
	_, _, err := executeCommand(t, "build", "-f", "toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestBuild_UnresolvedReference(t *testing.T) {
	cfg := config.Default()
	sn := cfg.Subnets[config.DefaultPublicSubnet1]
	sn.RouteTable = "missing-rtb"
	cfg.Subnets[config.DefaultPublicSubnet1] = sn

	out, _, err := executeCommand(t, "build", "-c", writeConfig(t, cfg))
	require.Error(t, err)

	var result netgraph.BuildResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "missing-rtb")
}

func TestValidate(t *testing.T) {
	out, _, err := executeCommand(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Validation passed: 14 resources OK")

	cfg := config.Default()
	cfg.Network.AddressBlock = "bogus"
	out, _, err = executeCommand(t, "validate", "-c", writeConfig(t, cfg), "-f", "json")
	assert.ErrorIs(t, err, errIssuesFound)

	var result netgraph.ValidateResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "network.address_block")
}

func TestLint(t *testing.T) {
	out, _, err := executeCommand(t, "lint")
	require.NoError(t, err)
	assert.Contains(t, out, "(built-in): ")
	assert.Contains(t, out, "[NG002]")

	out, _, err = executeCommand(t, "lint", "--rules", "NG003")
	require.NoError(t, err)
	assert.Equal(t, "No issues found.\n", out)

	cfg := config.Default()
	cfg.Subnets["overlap"] = config.Subnet{AvailabilityZone: "us-east-1a", CIDRBlock: "10.0.1.0/25", RouteTable: config.DefaultPrivateRouteTable}
	out, _, err = executeCommand(t, "lint", "-c", writeConfig(t, cfg), "-f", "json", "--disable", "NG001,NG002,NG005")
	assert.ErrorIs(t, err, errIssuesFound)

	var result netgraph.LintResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Success)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "NG004", result.Issues[0].Rule)
}

func TestList(t *testing.T) {
	out, _, err := executeCommand(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Resources (14):")
	assert.Contains(t, out, "EcsStackIgwAttachment")

	out, _, err = executeCommand(t, "list", "--kind", "Subnet", "-f", "json")
	require.NoError(t, err)

	var result netgraph.ListResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Resources, 3)
	for _, res := range result.Resources {
		assert.Equal(t, netgraph.KindSubnet, res.Kind)
		assert.Equal(t, "subnets", res.Phase)
		assert.Contains(t, res.References, "EcsStackVpc")
	}
}

func TestGraph(t *testing.T) {
	out, _, err := executeCommand(t, "graph")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph")

	out, _, err = executeCommand(t, "graph", "-f", "mermaid")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "graph") || strings.Contains(out, "flowchart"))
	assert.NotContains(t, out, "digraph")

	_, _, err = executeCommand(t, "graph", "-f", "svg")
	assert.Error(t, err)
}

func TestDiff_Configs(t *testing.T) {
	oldPath := writeConfig(t, config.Default())

	_, _, err := executeCommand(t, "diff", "--configs", oldPath, oldPath)
	require.NoError(t, err)

	cfg := config.Default()
	delete(cfg.Subnets, config.DefaultPublicSubnet2)
	newPath := writeConfig(t, cfg)

	out, _, err := executeCommand(t, "diff", "--configs", oldPath, newPath)
	assert.ErrorIs(t, err, errIssuesFound)
	assert.Contains(t, out, "- EcsStackPublicSn2 (AWS::EC2::Subnet)")
	assert.Contains(t, out, "2 removed")
}

func TestDiff_Templates(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "a.json")
	yamlPath := filepath.Join(dir, "b.yaml")

	_, _, err := executeCommand(t, "build", "-o", jsonPath)
	require.NoError(t, err)
	_, _, err = executeCommand(t, "build", "-f", "yaml", "-o", yamlPath)
	require.NoError(t, err)

	out, _, err := executeCommand(t, "diff", jsonPath, yamlPath, "-f", "json")
	require.NoError(t, err)

	var result netgraph.DiffResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Success)
	assert.Zero(t, result.Summary.Total)
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netgraph.yaml")

	out, _, err := executeCommand(t, "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created "+path)

	cfg, err := config.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	_, _, err = executeCommand(t, "init", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = executeCommand(t, "init", path, "--force")
	assert.NoError(t, err)
}

func TestVersion(t *testing.T) {
	out, _, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "netgraph "))

	v := getVersion()
	assert.True(t, v == "dev" || strings.HasPrefix(v, "v"), "version = %q", v)
}

func TestNewWatchCmd(t *testing.T) {
	cmd := newWatchCmd(&rootOptions{})

	assert.Equal(t, "watch", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	for _, flag := range []string{"lint-only", "debounce", "format", "output"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing --%s", flag)
	}

	debounce := cmd.Flags().Lookup("debounce")
	require.NotNil(t, debounce)
	assert.Equal(t, "500ms", debounce.DefValue)
}

func TestWatch_RequiresConfig(t *testing.T) {
	_, _, err := executeCommand(t, "watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--config")
}

func TestNewDiffCmd(t *testing.T) {
	cmd := newDiffCmd()
	assert.Equal(t, "diff <old> <new>", cmd.Use)
	for _, flag := range []string{"format", "ignore-order", "configs"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing --%s", flag)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("debug", "json", &buf)
	logger.Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}
