package config

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadWithWarnings parses config data and returns any unknown field warnings.
func LoadWithWarnings(data []byte) (*Config, []string, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	warnings := detectUnknownFields(data)

	return &cfg, warnings, nil
}

// detectUnknownFields compares the raw document with known struct fields.
func detectUnknownFields(data []byte) []string {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		// The data already parsed into Config, so this indicates an
		// internal inconsistency rather than user error.
		return []string{"internal: failed to re-parse config for unknown field detection"}
	}

	var warnings []string

	knownTopLevel := yamlFields(reflect.TypeOf(Config{}))
	for key := range raw {
		if !knownTopLevel[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q at root level (ignored)", key))
		}
	}

	sections := map[string]reflect.Type{
		"project":     reflect.TypeOf(ProjectConfig{}),
		"build":       reflect.TypeOf(BuildConfig{}),
		"diagnostics": reflect.TypeOf(DiagnosticsConfig{}),
	}
	for name, typ := range sections {
		node, ok := raw[name]
		if !ok {
			continue
		}
		warnings = append(warnings, checkSectionUnknownFields(name, node, typ)...)
	}

	return warnings
}

func checkSectionUnknownFields(section string, node yaml.Node, typ reflect.Type) []string {
	var fields map[string]yaml.Node
	if err := node.Decode(&fields); err != nil {
		return nil
	}

	known := yamlFields(typ)
	var warnings []string
	for key := range fields {
		if !known[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q in %q (ignored)", key, section))
		}
	}
	return warnings
}

// yamlFields returns the known YAML field names for a struct type.
func yamlFields(t reflect.Type) map[string]bool {
	fields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		if name != "" {
			fields[name] = true
		}
	}
	return fields
}
