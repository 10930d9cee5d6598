package matter

import (
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/docmatter/matter/diag"
	"gopkg.in/yaml.v3"
)

// coords translates positions reported by the YAML decoder, which are
// relative to one block's content, into whole-document positions.
type coords struct {
	file string
	// base is the 1-based document line of the first content line.
	base int
}

func (c coords) loc(n *yaml.Node) diag.Location {
	return diag.Location{File: c.file, Line: c.base + n.Line - 1, Column: n.Column}
}

func (c coords) lineLoc(contentLine int) diag.Location {
	return diag.Location{File: c.file, Line: c.base + contentLine - 1, Column: 1}
}

// decodeBlock parses one block's structured content into an ordered mapping.
// Empty or null content yields an empty mapping (an empty block is valid).
func decodeBlock(content string, c coords, limits Limits) (*Mapping, *diag.Diagnostic) {
	dec := yaml.NewDecoder(strings.NewReader(content))

	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		// No document at all (only blanks or comments) is an empty block.
		if err == io.EOF {
			return NewMapping(), nil
		}
		return nil, translateYAMLError(err, c)
	}

	fields := NewMapping()
	if len(root.Content) > 0 {
		top := root.Content[0]
		switch {
		case top.Kind == yaml.ScalarNode && top.Tag == "!!null":
			// Explicit null content is an empty mapping.
		case top.Kind != yaml.MappingNode:
			return nil, diag.Errorf(CodeInvalidData,
				"metadata block content must be a key/value mapping, got %s", yamlKindName(top)).
				At(c.loc(top))
		default:
			v, d := nodeToValue(top, 1, c, limits)
			if d != nil {
				return nil, d
			}
			fields = v.Map()
		}
	}

	// A block holds exactly one document. A '---' document separator inside
	// the content is not a block delimiter, so without this check anything
	// after it would be dropped silently.
	var extra yaml.Node
	switch err := dec.Decode(&extra); {
	case err == nil:
		loc := c.lineLoc(1)
		if len(extra.Content) > 0 {
			loc = c.loc(extra.Content[0])
		}
		return nil, diag.Errorf(CodeInvalidData,
			"metadata block contains more than one document").
			At(loc).
			WithHint("a metadata block holds a single mapping")
	case err != io.EOF:
		return nil, translateYAMLError(err, c)
	}

	return fields, nil
}

// nodeToValue converts a decoded YAML node into a Value, bottom-up. depth
// counts container nesting, with the block mapping itself at one. Aliases
// are resolved by copying the anchored subtree, so the resulting tree never
// shares nodes and can hold no cycles by construction.
func nodeToValue(n *yaml.Node, depth int, c coords, limits Limits) (Value, *diag.Diagnostic) {
	switch n.Kind {
	case yaml.AliasNode:
		return nodeToValue(n.Alias, depth, c, limits)

	case yaml.ScalarNode:
		return scalarToValue(n), nil

	case yaml.SequenceNode:
		if depth > limits.MaxDepth {
			return Value{}, nestingTooDeep(n, c, limits)
		}
		items := make([]Value, 0, len(n.Content))
		for _, child := range n.Content {
			v, d := nodeToValue(child, depth+1, c, limits)
			if d != nil {
				return Value{}, d
			}
			items = append(items, v)
		}
		return SequenceValue(items), nil

	case yaml.MappingNode:
		if depth > limits.MaxDepth {
			return Value{}, nestingTooDeep(n, c, limits)
		}
		m := NewMapping()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return Value{}, diag.Errorf(CodeInvalidData, "mapping key must be a scalar").
					At(c.loc(keyNode))
			}
			key := keyNode.Value
			if m.Has(key) {
				return Value{}, diag.Errorf(CodeInvalidData, "duplicate key %q in mapping", key).
					At(c.loc(keyNode))
			}
			v, d := nodeToValue(valNode, depth+1, c, limits)
			if d != nil {
				return Value{}, d
			}
			m.Set(key, v)
		}
		return MapValue(m), nil
	}

	return Value{}, diag.Errorf(CodeInvalidData, "unsupported YAML node").At(c.loc(n))
}

func nestingTooDeep(n *yaml.Node, c coords, limits Limits) *diag.Diagnostic {
	return diag.Errorf(CodeNestingTooDeep,
		"metadata nesting exceeds the maximum depth of %d", limits.MaxDepth).
		At(c.loc(n))
}

// scalarToValue maps a YAML scalar to the closest Value variant. Scalars
// with unusual tags (timestamps, binary) keep their raw text as a string.
func scalarToValue(n *yaml.Node) Value {
	switch n.Tag {
	case "!!null":
		return NullValue()
	case "!!bool":
		b, err := strconv.ParseBool(strings.ToLower(n.Value))
		if err == nil {
			return BoolValue(b)
		}
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err == nil {
			return IntValue(i)
		}
	case "!!float":
		switch strings.ToLower(strings.TrimPrefix(n.Value, "+")) {
		case ".inf":
			return FloatValue(math.Inf(1))
		case "-.inf":
			return FloatValue(math.Inf(-1))
		case ".nan":
			return FloatValue(math.NaN())
		}
		f, err := strconv.ParseFloat(n.Value, 64)
		if err == nil {
			return FloatValue(f)
		}
	}
	return StringValue(n.Value)
}

func yamlKindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.MappingNode:
		return "a mapping"
	}
	return "an unsupported node"
}

// yamlLineRE matches the line number the yaml decoder embeds in its error
// messages, e.g. "yaml: line 3: did not find expected ',' or ']'".
var yamlLineRE = regexp.MustCompile(`(?:^|: )line (\d+):`)

// translateYAMLError wraps a decoder failure into an invalid_data
// diagnostic. The decoder's message becomes part of the cause chain and its
// line number, which is relative to the block content, is re-derived in the
// whole-document coordinate space. When no line can be extracted the
// diagnostic points at the first content line of the block.
func translateYAMLError(err error, c coords) *diag.Diagnostic {
	loc := c.lineLoc(1)
	if m := yamlLineRE.FindStringSubmatch(err.Error()); m != nil {
		if n, convErr := strconv.Atoi(m[1]); convErr == nil && n >= 1 {
			loc = c.lineLoc(n)
		}
	}
	return diag.Errorf(CodeInvalidData, "invalid structured data in metadata block").
		At(loc).
		WithCause(err).
		WithHint("the block content must be valid YAML")
}
