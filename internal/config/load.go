package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	netgraph "github.com/lex00/netgraph-go"
	"github.com/lex00/netgraph-go/internal/ctxlog"
)

// Format is a configuration file format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("unsupported config file extension %q (use .yaml, .yml, .json or .hcl)", filepath.Ext(path))
	}
}

// Load reads, decodes and validates a configuration file.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := ctxlog.FromContext(ctx)

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	logger.Debug("Config file read.", "path", path, "format", format, "bytes", len(data))

	cfg, err := Parse(data, format, path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	logger.Debug("Config loaded.",
		"subnets", len(cfg.Subnets),
		"route_tables", len(cfg.RouteTables),
		"security_groups", len(cfg.SecurityGroups),
	)
	return cfg, nil
}

// Parse decodes configuration bytes without validating them. Unknown fields are
// rejected for every format. filename is only used in diagnostics.
func Parse(data []byte, format Format, filename string) (*Config, error) {
	switch format {
	case FormatYAML, FormatJSON:
		return parseYAML(data, filename)
	case FormatHCL:
		return parseHCL(data, filename)
	default:
		return nil, fmt.Errorf("unknown config format: %s", format)
	}
}

// parseYAML decodes YAML or JSON; JSON documents are valid YAML.
func parseYAML(data []byte, filename string) (*Config, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decoding %s: empty document", filename)
		}
		return nil, fmt.Errorf("decoding %s: %w", filename, err)
	}
	if err := checkDuplicateNames(&root); err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decoding %s: empty document", filename)
		}
		return nil, fmt.Errorf("decoding %s: %w", filename, err)
	}
	return &cfg, nil
}

// namedSections maps the top-level sections keyed by logical name to their kind.
var namedSections = map[string]netgraph.Kind{
	"subnets":         netgraph.KindSubnet,
	"route_tables":    netgraph.KindRouteTable,
	"security_groups": netgraph.KindSecurityGroup,
}

// checkDuplicateNames reports a logical name declared twice in one section.
// The strict decoder only reports this as an untyped mapping error.
func checkDuplicateNames(root *yaml.Node) error {
	doc := root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i+1 < len(doc.Content); i += 2 {
		kind, ok := namedSections[doc.Content[i].Value]
		section := doc.Content[i+1]
		if !ok || section.Kind != yaml.MappingNode {
			continue
		}
		seen := make(map[string]bool, len(section.Content)/2)
		for j := 0; j+1 < len(section.Content); j += 2 {
			name := section.Content[j].Value
			if seen[name] {
				return &netgraph.DuplicateNameError{Kind: kind, Name: name}
			}
			seen[name] = true
		}
	}
	return nil
}

// Marshal encodes a configuration as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
