package descriptor

import (
	"fmt"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	errUtils "github.com/cloudposse/pomgraph/errors"
	"github.com/cloudposse/pomgraph/pkg/pom"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// document is the on-disk shape of a descriptor. Keys follow the Maven
// element names so a converted pom.xml reads naturally.
type document struct {
	GroupID              string               `yaml:"groupId,omitempty" json:"groupId,omitempty"`
	ArtifactID           string               `yaml:"artifactId" json:"artifactId"`
	Version              string               `yaml:"version,omitempty" json:"version,omitempty"`
	Packaging            string               `yaml:"packaging,omitempty" json:"packaging,omitempty"`
	Parent               *parentDocument      `yaml:"parent,omitempty" json:"parent,omitempty"`
	Modules              []string             `yaml:"modules,omitempty" json:"modules,omitempty"`
	Properties           orderedProperties    `yaml:"properties,omitempty" json:"properties,omitempty"`
	Dependencies         []dependencyDocument `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	DependencyManagement []dependencyDocument `yaml:"dependencyManagement,omitempty" json:"dependencyManagement,omitempty"`
}

type parentDocument struct {
	GroupID    string `yaml:"groupId" json:"groupId"`
	ArtifactID string `yaml:"artifactId" json:"artifactId"`
	Version    string `yaml:"version,omitempty" json:"version,omitempty"`
	// nil is unset, "" declares that the parent is not on disk.
	RelativePath *string `yaml:"relativePath,omitempty" json:"relativePath,omitempty"`
}

type dependencyDocument struct {
	GroupID    string   `yaml:"groupId" json:"groupId"`
	ArtifactID string   `yaml:"artifactId" json:"artifactId"`
	Version    string   `yaml:"version,omitempty" json:"version,omitempty"`
	Type       string   `yaml:"type,omitempty" json:"type,omitempty"`
	Scope      string   `yaml:"scope,omitempty" json:"scope,omitempty"`
	Optional   bool     `yaml:"optional,omitempty" json:"optional,omitempty"`
	Exclusions []string `yaml:"exclusions,omitempty" json:"exclusions,omitempty"`
}

// orderedProperties keeps declaration order, which a Go map would lose.
type orderedProperties []pom.Property

func (o *orderedProperties) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: properties must be a mapping (line %d)", errUtils.ErrParseDescriptor, node.Line)
	}
	props := make(orderedProperties, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("%w: property '%s' must be a scalar (line %d)", errUtils.ErrParseDescriptor, key.Value, value.Line)
		}
		v := value.Value
		if value.Tag == "!!null" {
			v = ""
		}
		props = append(props, pom.Property{Name: key.Value, Value: v})
	}
	*o = props
	return nil
}

func (o orderedProperties) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, p := range o {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Value},
		)
	}
	return node, nil
}

func (o *orderedProperties) UnmarshalJSON(data []byte) error {
	iter := jsoniter.ParseBytes(json, data)
	if iter.WhatIsNext() == jsoniter.NilValue {
		iter.ReadNil()
		return nil
	}

	var props orderedProperties
	var scalarErr error
	iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
		value, ok := readScalar(it)
		if !ok {
			scalarErr = fmt.Errorf("%w: property '%s' must be a scalar", errUtils.ErrParseDescriptor, key)
			return false
		}
		props = append(props, pom.Property{Name: key, Value: value})
		return true
	})
	if scalarErr != nil {
		return scalarErr
	}
	if iter.Error != nil {
		return fmt.Errorf("%w: %w", errUtils.ErrParseDescriptor, iter.Error)
	}
	*o = props
	return nil
}

func (o orderedProperties) MarshalJSON() ([]byte, error) {
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)

	stream.WriteObjectStart()
	for i, p := range o {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(p.Name)
		stream.WriteString(p.Value)
	}
	stream.WriteObjectEnd()
	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

func readScalar(it *jsoniter.Iterator) (string, bool) {
	switch it.WhatIsNext() {
	case jsoniter.StringValue:
		return it.ReadString(), true
	case jsoniter.NumberValue:
		return string(it.ReadNumber()), true
	case jsoniter.BoolValue:
		return strconv.FormatBool(it.ReadBool()), true
	case jsoniter.NilValue:
		it.ReadNil()
		return "", true
	default:
		it.Skip()
		return "", false
	}
}

// project converts d into the immutable model.
func (d *document) project(source string) (*pom.Project, error) {
	if d.ArtifactID == "" {
		return nil, fmt.Errorf("%w: %s: artifactId is required", errUtils.ErrParseDescriptor, source)
	}

	opts := []pom.Option{
		pom.WithSource(source),
		pom.WithPackaging(pom.Packaging(d.Packaging)),
		pom.WithModules(d.Modules...),
		pom.WithProperties(d.Properties...),
	}

	if d.Parent != nil {
		if d.Parent.ArtifactID == "" {
			return nil, fmt.Errorf("%w: %s: parent artifactId is required", errUtils.ErrParseDescriptor, source)
		}
		parent := pom.Parent{Coordinates: pom.NewCoordinates(d.Parent.GroupID, d.Parent.ArtifactID, d.Parent.Version)}
		if d.Parent.RelativePath != nil {
			parent.RelativePath = pom.RelativePath(*d.Parent.RelativePath)
		}
		opts = append(opts, pom.WithParent(parent))
	}

	deps, err := convertDependencies(d.Dependencies, source)
	if err != nil {
		return nil, err
	}
	managed, err := convertDependencies(d.DependencyManagement, source)
	if err != nil {
		return nil, err
	}
	opts = append(opts, pom.WithDependencies(deps...), pom.WithManagedDependencies(managed...))

	return pom.NewProject(pom.NewCoordinates(d.GroupID, d.ArtifactID, d.Version), opts...), nil
}

func convertDependencies(in []dependencyDocument, source string) ([]pom.Dependency, error) {
	out := make([]pom.Dependency, 0, len(in))
	for _, dd := range in {
		if dd.ArtifactID == "" {
			return nil, fmt.Errorf("%w: %s: dependency artifactId is required", errUtils.ErrParseDescriptor, source)
		}
		scope, err := pom.ParseScope(dd.Scope)
		if err != nil {
			return nil, fmt.Errorf("%s: %s:%s: %w", source, dd.GroupID, dd.ArtifactID, err)
		}
		dep := pom.Dependency{
			Coordinates: pom.NewCoordinates(dd.GroupID, dd.ArtifactID, dd.Version),
			Type:        dd.Type,
			Scope:       scope,
			Optional:    dd.Optional,
		}
		for _, e := range dd.Exclusions {
			id, err := pom.ParseIdentity(e)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: '%s' in %s:%s", errUtils.ErrInvalidExclusion, source, e, dd.GroupID, dd.ArtifactID)
			}
			dep.Exclusions = append(dep.Exclusions, id)
		}
		out = append(out, dep)
	}
	return out, nil
}

// fromProject is the inverse of project, used for encoding.
func fromProject(p *pom.Project) *document {
	c := p.Coordinates()
	d := &document{
		GroupID:    placeholderToEmpty(string(c.GroupID)),
		ArtifactID: string(c.ArtifactID),
		Version:    placeholderToEmpty(string(c.Version)),
		Modules:    p.Modules(),
		Properties: p.Properties(),
	}
	if p.Packaging() != pom.PackagingJar {
		d.Packaging = string(p.Packaging())
	}
	if parent, ok := p.Parent(); ok {
		pd := &parentDocument{
			GroupID:    string(parent.GroupID),
			ArtifactID: string(parent.ArtifactID),
			Version:    placeholderToEmpty(string(parent.Version)),
		}
		if !parent.RelativePath.IsUnset() {
			path := parent.RelativePath.Path()
			pd.RelativePath = &path
		}
		d.Parent = pd
	}
	d.Dependencies = toDependencyDocuments(p.Dependencies())
	d.DependencyManagement = toDependencyDocuments(p.DependencyManagement())
	return d
}

func toDependencyDocuments(deps []pom.Dependency) []dependencyDocument {
	if len(deps) == 0 {
		return nil
	}
	out := make([]dependencyDocument, len(deps))
	for i, dep := range deps {
		dd := dependencyDocument{
			GroupID:    string(dep.GroupID),
			ArtifactID: string(dep.ArtifactID),
			Version:    placeholderToEmpty(string(dep.Version)),
			Type:       dep.Type,
			Optional:   dep.Optional,
		}
		if dep.Scope != pom.Compile {
			dd.Scope = dep.Scope.String()
		}
		for _, e := range dep.Exclusions {
			dd.Exclusions = append(dd.Exclusions, e.String())
		}
		out[i] = dd
	}
	return out
}

func placeholderToEmpty(s string) string {
	if s == pom.PlaceholderToken {
		return ""
	}
	return s
}
