package plugparam

import (
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// FromYAML parses a single YAML document into a Document. Mapping order is
// preserved. Only JSON-compatible YAML is accepted: mapping keys must be
// scalars, and aliases are resolved.
func FromYAML(raw []byte) (Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return Document{}, fmt.Errorf("parse yaml: %w", err)
	}
	if root.Kind == 0 {
		return Null(), nil
	}
	w := &yamlWalker{budget: max(yamlExpansion*len(raw), minYAMLBudget)}
	return w.node(&root, 0)
}

const (
	maxYAMLDepth = 1000

	// Aliases are copied on every use, so the built tree may be larger than
	// the input. It is capped at yamlExpansion nodes per input byte.
	yamlExpansion = 16
	minYAMLBudget = 4096
)

var (
	errYAMLDepth     = errors.New("yaml nesting too deep")
	errYAMLExpansion = errors.New("yaml aliases expand too far")
)

type yamlWalker struct {
	nodes  int
	budget int
}

func (w *yamlWalker) node(n *yaml.Node, depth int) (Document, error) {
	if depth > maxYAMLDepth {
		return Document{}, errYAMLDepth
	}
	w.nodes++
	if w.nodes > w.budget {
		return Document{}, errYAMLExpansion
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return w.node(n.Content[0], depth+1)
	case yaml.AliasNode:
		return w.node(n.Alias, depth+1)
	case yaml.SequenceNode:
		items := make([]Document, len(n.Content))
		for i, c := range n.Content {
			d, err := w.node(c, depth+1)
			if err != nil {
				return Document{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = d
		}
		return Document{kind: KindArray, items: items}, nil
	case yaml.MappingNode:
		members := make([]Member, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return Document{}, fmt.Errorf("line %d: mapping key must be a scalar", k.Line)
			}
			d, err := w.node(v, depth+1)
			if err != nil {
				return Document{}, fmt.Errorf("%s: %w", k.Value, err)
			}
			members = append(members, Member{Key: k.Value, Value: d})
		}
		return Object(members...), nil
	case yaml.ScalarNode:
		return fromYAMLScalar(n)
	default:
		return Document{}, fmt.Errorf("line %d: unsupported yaml node", n.Line)
	}
}

func fromYAMLScalar(n *yaml.Node) (Document, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Document{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Boolean(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return Document{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return IntNum(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Document{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Document{}, fmt.Errorf("line %d: %s is not a JSON number", n.Line, n.Value)
		}
		return Num(f), nil
	default:
		return Str(n.Value), nil
	}
}
