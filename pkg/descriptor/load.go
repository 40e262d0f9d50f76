// Package descriptor reads and writes project descriptors.
//
// A descriptor is a YAML or JSON document shaped like a Maven POM:
//
//	groupId: com.telenav.kivakit
//	artifactId: kivakit-core
//	parent:
//	  groupId: com.telenav.kivakit
//	  artifactId: kivakit-parent
//	  version: 1.2.0
//	properties:
//	  lexakai.version: 1.0.9
//	dependencies:
//	  - groupId: com.telenav.lexakai
//	    artifactId: lexakai-annotations
//	    version: ${lexakai.version}
//	    exclusions: ["org.slf4j:*"]
package descriptor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	errUtils "github.com/cloudposse/pomgraph/errors"
	"github.com/cloudposse/pomgraph/pkg/perf"
	"github.com/cloudposse/pomgraph/pkg/pom"
)

// Format is a descriptor serialization.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: '%s'", errUtils.ErrUnsupportedDescriptorFormat, path)
}

// Load reads and parses the descriptor at path.
func Load(path string) (*pom.Project, error) {
	defer perf.Track(nil, "descriptor.Load")()

	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUtils.ErrReadDescriptor, err)
	}
	return Decode(data, format, path)
}

// Decode parses data; source is recorded on the project.
func Decode(data []byte, format Format, source string) (*pom.Project, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s: empty document", errUtils.ErrParseDescriptor, source)
	}

	var doc document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", errUtils.ErrParseDescriptor, source, err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", errUtils.ErrParseDescriptor, source, err)
		}
	default:
		return nil, fmt.Errorf("%w: '%s'", errUtils.ErrUnsupportedDescriptorFormat, format)
	}
	return doc.project(source)
}

// FromMap builds a project from an inline, already decoded tree such as a
// store's configuration options.
func FromMap(m map[string]any, source string) (*pom.Project, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errUtils.ErrParseDescriptor, source, err)
	}
	return Decode(data, FormatYAML, source)
}

// Encode renders p in format. Placeholders are written as absent fields.
func Encode(p *pom.Project, format Format) ([]byte, error) {
	doc := fromProject(p)
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	}
	return nil, fmt.Errorf("%w: '%s'", errUtils.ErrUnsupportedDescriptorFormat, format)
}
