package rewriter

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	errUtils "github.com/cloudposse/pomgraph/errors"
	"github.com/cloudposse/pomgraph/pkg/descriptor"
)

// file is one parsed descriptor, edited in place as a node tree so that key
// order, comments, and quoting survive.
type file struct {
	path   string
	format descriptor.Format
	doc    yaml.Node
}

func parse(path string, format descriptor.Format, data []byte) (*file, error) {
	f := &file{path: path, format: format}
	// JSON documents parse as flow-style YAML.
	if err := yaml.Unmarshal(data, &f.doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errUtils.ErrParseDescriptor, path, err)
	}
	if f.root() == nil {
		return nil, fmt.Errorf("%w: %s: descriptor is not a mapping", errUtils.ErrParseDescriptor, path)
	}
	return f, nil
}

func (f *file) root() *yaml.Node {
	if f.doc.Kind != yaml.DocumentNode || len(f.doc.Content) == 0 {
		return nil
	}
	if n := f.doc.Content[0]; n.Kind == yaml.MappingNode {
		return n
	}
	return nil
}

// lookup returns the value node of key in mapping m.
func lookup(m *yaml.Node, key string) (*yaml.Node, int) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1], i
		}
	}
	return nil, -1
}

// setScalar sets key in m to value, keeping the style of an existing scalar.
// A new key is inserted after the first of after that exists, or appended.
func setScalar(m *yaml.Node, key, value string, after ...string) {
	if v, _ := lookup(m, key); v != nil {
		v.Kind = yaml.ScalarNode
		v.Tag = "!!str"
		v.Value = value
		v.Content = nil
		return
	}

	k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	v := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
	if m.Style&yaml.FlowStyle != 0 {
		k.Style, v.Style = yaml.DoubleQuotedStyle, yaml.DoubleQuotedStyle
	}
	at := len(m.Content)
	for _, a := range after {
		if _, i := lookup(m, a); i >= 0 {
			at = i + 2
			break
		}
	}
	m.Content = append(m.Content[:at], append([]*yaml.Node{k, v}, m.Content[at:]...)...)
}

func remove(m *yaml.Node, key string) bool {
	if _, i := lookup(m, key); i >= 0 {
		m.Content = append(m.Content[:i], m.Content[i+2:]...)
		return true
	}
	return false
}

// mapping returns the mapping under key, creating an empty one if absent.
func mapping(m *yaml.Node, key string) *yaml.Node {
	if v, _ := lookup(m, key); v != nil && v.Kind == yaml.MappingNode {
		return v
	}
	v := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Style: m.Style & yaml.FlowStyle}
	remove(m, key)
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, v)
	return v
}

func (f *file) encode() ([]byte, error) {
	switch f.format {
	case descriptor.FormatJSON:
		return encodeJSON(f.root())
	default:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&f.doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

func encodeJSON(n *yaml.Node) ([]byte, error) {
	stream := jsoniter.NewStream(jsoniter.ConfigCompatibleWithStandardLibrary, nil, 512)
	writeJSON(stream, n, 0)
	if stream.Error != nil {
		return nil, stream.Error
	}
	out := append([]byte{}, stream.Buffer()...)
	return append(out, '\n'), nil
}

const jsonIndent = "  "

func writeJSON(s *jsoniter.Stream, n *yaml.Node, depth int) {
	newline := func(d int) {
		s.WriteRaw("\n")
		for range d {
			s.WriteRaw(jsonIndent)
		}
	}

	switch n.Kind {
	case yaml.AliasNode:
		writeJSON(s, n.Alias, depth)
	case yaml.MappingNode:
		if len(n.Content) == 0 {
			s.WriteEmptyObject()
			return
		}
		s.WriteObjectStart()
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				s.WriteMore()
			}
			newline(depth + 1)
			s.WriteObjectField(n.Content[i].Value)
			s.WriteRaw(" ")
			writeJSON(s, n.Content[i+1], depth+1)
		}
		newline(depth)
		s.WriteObjectEnd()
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			s.WriteEmptyArray()
			return
		}
		s.WriteArrayStart()
		for i, item := range n.Content {
			if i > 0 {
				s.WriteMore()
			}
			newline(depth + 1)
			writeJSON(s, item, depth+1)
		}
		newline(depth)
		s.WriteArrayEnd()
	default:
		switch n.ShortTag() {
		case "!!null":
			s.WriteNil()
		case "!!bool", "!!int", "!!float":
			s.WriteRaw(n.Value)
		default:
			s.WriteString(n.Value)
		}
	}
}
