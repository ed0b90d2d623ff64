package params

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Section names of a parameters file.
const (
	SectionGeneral   = "GeneralSettings"
	SectionSystem    = "System"
	SectionComponent = "Component"
)

// Load reads and validates a YAML parameters file.
func Load(path string) (*Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("Decode: %w", err)
	}
	return p, nil
}

// Decode reads YAML parameters from r. The document is walked node by node
// so that the order of the systems and of the keys is kept.
func Decode(r io.Reader) (*Params, error) {
	var doc yaml.Node
	err := yaml.NewDecoder(r).Decode(&doc)
	if errors.Is(err, io.EOF) {
		return nil, Errorf("", "empty document")
	}
	if err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, Errorf("", "the document must be a mapping")
	}

	var (
		general    *Settings
		systems    []*System
		components []*Component
	)

	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i].Value, root.Content[i+1]
		switch key {
		case SectionGeneral:
			general, err = settingsFromNode(key, val, false)
			if err != nil {
				return nil, err
			}
		case SectionSystem:
			systems, err = systemsFromNode(val)
			if err != nil {
				return nil, err
			}
		case SectionComponent:
			components, err = componentsFromNode(val)
			if err != nil {
				return nil, err
			}
		default:
			return nil, Errorf(key, "unknown section")
		}
	}

	return New(general, systems, components)
}

func systemsFromNode(n *yaml.Node) ([]*System, error) {
	n = resolve(n)
	if n.Kind != yaml.MappingNode {
		return nil, Errorf(SectionSystem, "must be a mapping of named systems")
	}

	var systems []*System
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		path := SectionSystem + "." + name
		s, err := settingsFromNode(path, n.Content[i+1], false)
		if err != nil {
			return nil, err
		}

		typ, err := s.Str("type")
		if err != nil {
			return nil, Errorf(path, "%v", err)
		}
		kind, err := ParseKind(typ)
		if err != nil {
			return nil, Errorf(path, "%v", err)
		}
		s.Delete("type")

		systems = append(systems, &System{Name: name, Kind: kind, Settings: s})
	}
	return systems, nil
}

func componentsFromNode(n *yaml.Node) ([]*Component, error) {
	n = resolve(n)
	if n.Kind != yaml.MappingNode {
		return nil, Errorf(SectionComponent, "must be a mapping of named components")
	}

	var comps []*Component
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		s, err := settingsFromNode(SectionComponent+"."+name, n.Content[i+1], true)
		if err != nil {
			return nil, err
		}
		comps = append(comps, &Component{Name: name, Settings: s})
	}
	return comps, nil
}

func settingsFromNode(path string, n *yaml.Node, nested bool) (*Settings, error) {
	n = resolve(n)
	s := NewSettings()
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return s, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, Errorf(path, "must be a mapping")
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		v, err := valueFromNode(path+"."+key, n.Content[i+1], nested)
		if err != nil {
			return nil, err
		}
		s.Set(key, v)
	}
	return s, nil
}

func valueFromNode(path string, n *yaml.Node, nested bool) (interface{}, error) {
	n = resolve(n)
	switch n.Kind {
	case yaml.ScalarNode:
		var v interface{}
		if err := n.Decode(&v); err != nil {
			return nil, Errorf(path, "%v", err)
		}
		if v == nil {
			return nil, Errorf(path, "null values are not supported")
		}
		return normalize(v), nil
	case yaml.SequenceNode:
		l := make([]interface{}, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := valueFromNode(path, c, false)
			if err != nil {
				return nil, err
			}
			if _, ok := v.([]interface{}); ok {
				return nil, Errorf(path, "nested lists are not supported")
			}
			l = append(l, v)
		}
		return l, nil
	case yaml.MappingNode:
		if !nested {
			return nil, Errorf(path, "nested mappings are only allowed as per-system maps of a component")
		}
		return settingsFromNode(path, n, false)
	}
	return nil, Errorf(path, "unsupported YAML node")
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// MarshalYAML writes the section as an ordered mapping.
func (s *Settings) MarshalYAML() (interface{}, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range s.Keys() {
		var v yaml.Node
		if err := v.Encode(s.values[k]); err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: k}, &v)
	}
	return n, nil
}

// MarshalYAML writes the parameters in the layout Decode reads.
func (p *Params) MarshalYAML() (interface{}, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, v interface{}) error {
		var n yaml.Node
		if err := n.Encode(v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, &n)
		return nil
	}

	if err := add(SectionGeneral, p.General); err != nil {
		return nil, err
	}

	if len(p.Systems) > 0 {
		systems := NewSettings()
		for _, s := range p.Systems {
			withType := NewSettings()
			withType.Set("type", s.Kind.String())
			for _, k := range s.Settings.Keys() {
				withType.Set(k, s.Settings.values[k])
			}
			systems.Set(s.Name, withType)
		}
		if err := add(SectionSystem, systems); err != nil {
			return nil, err
		}
	}

	comps := NewSettings()
	for _, c := range p.Components {
		comps.Set(c.Name, c.Settings)
	}
	if err := add(SectionComponent, comps); err != nil {
		return nil, err
	}
	return root, nil
}
