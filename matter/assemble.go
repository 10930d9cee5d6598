package matter

import (
	"strings"

	"github.com/docmatter/matter/diag"
)

// collection groups the scoped blocks sharing one name, in source order.
type collection struct {
	name    string
	members []*Block
}

// aggregate groups scoped blocks by collection name, preserving document
// order within each group and across first occurrences.
func aggregate(blocks []*Block) []*collection {
	var cols []*collection
	index := make(map[string]*collection)
	for _, b := range blocks {
		if b.Role != RoleScoped {
			continue
		}
		col, ok := index[b.Name]
		if !ok {
			col = &collection{name: b.Name}
			index[b.Name] = col
			cols = append(cols, col)
		}
		col.members = append(col.members, b)
	}
	return cols
}

// assemble merges the classified blocks into the final document. Validation
// is single-pass in source order, so the first violation encountered is the
// one reported.
func assemble(src string, blocks []*Block, preamble Span, opts Options) (*Document, *diag.Diagnostic) {
	cols := aggregate(blocks)
	colIndex := make(map[string]*collection, len(cols))
	for _, col := range cols {
		colIndex[col.name] = col
	}

	fields := NewMapping()
	fieldOwner := make(map[string]*Block)
	templateName := ""

	// Merge plain fields from the non-scoped blocks in source order. A key
	// that names a collection, or that a previous block already defined,
	// is a construction-time error, never a silent override. Duplicate
	// global and template blocks were already rejected during
	// classification.
	for _, b := range blocks {
		if b.Role == RoleScoped {
			continue
		}
		if b.Role == RoleTemplate {
			templateName = b.Name
		}

		for _, key := range b.Fields.Keys() {
			if col, ok := colIndex[key]; ok {
				return nil, diag.Errorf(CodeNameCollision,
					"field %q collides with the collection of the same name", key).
					At(b.Loc).
					AlsoAt(b.Loc).
					AlsoAt(col.members[0].Loc)
			}
			if owner, ok := fieldOwner[key]; ok {
				return nil, diag.Errorf(CodeNameCollision,
					"field %q is defined by more than one metadata block", key).
					At(b.Loc).
					AlsoAt(owner.Loc).
					AlsoAt(b.Loc)
			}
			v, _ := b.Fields.Get(key)
			fields.Set(key, v)
			fieldOwner[key] = b
		}
	}

	// Collections come after the plain fields, in first-occurrence order.
	// Each member carries its own body, set last within the member.
	for _, col := range cols {
		members := make([]Value, 0, len(col.members))
		for _, b := range col.members {
			m := b.Fields
			m.Set(bodyKey, StringValue(src[b.Body.Start:b.Body.End]))
			members = append(members, MapValue(m))
		}
		fields.Set(col.name, SequenceValue(members))
	}

	// The document body is every byte not owned by a block span or by a
	// scoped block: the preamble plus the bodies of the global and
	// template blocks, in source order. The reserved key is set last and
	// overrides nothing.
	var body strings.Builder
	body.WriteString(src[preamble.Start:preamble.End])
	for _, b := range blocks {
		if b.Role == RoleScoped {
			continue
		}
		body.WriteString(src[b.Body.Start:b.Body.End])
	}
	fields.Set(bodyKey, StringValue(body.String()))

	return &Document{fields: fields, template: templateName}, nil
}
