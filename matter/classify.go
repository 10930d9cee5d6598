package matter

import (
	"regexp"

	"github.com/docmatter/matter/diag"
)

// Reserved directive keys and the reserved body field. A block carrying the
// scope key is a member of the named collection; a block carrying the
// template key selects the downstream template. The two are mutually
// exclusive within one block.
const (
	scopeKey    = "scope"
	templateKey = "template"
	bodyKey     = "body"
)

// Role tells how a decoded block contributes to the final document.
type Role uint8

const (
	// RoleGlobal is the single untagged block with document-wide fields.
	RoleGlobal Role = iota
	// RoleScoped is a member of a named collection.
	RoleScoped
	// RoleTemplate selects the downstream template.
	RoleTemplate
)

func (r Role) String() string {
	switch r {
	case RoleGlobal:
		return "global"
	case RoleScoped:
		return "scoped"
	case RoleTemplate:
		return "template"
	}
	return "unknown"
}

// Block is one classified metadata block. Fields holds the decoded mapping
// with the role-determining directive key already stripped.
type Block struct {
	Role   Role
	Name   string // collection name or template name, per Role
	Fields *Mapping
	Span   Span
	Body   Span
	Loc    diag.Location
}

// Collection names follow the identifier grammar, lowercase with digits and
// underscores, not starting with a digit.
var identRE = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// classify decodes one scanned block and determines its role from the
// reserved directive keys.
func classify(rb *rawBlock, opts Options) (*Block, *diag.Diagnostic) {
	c := coords{file: opts.Filename, base: rb.contentLine}

	fields, d := decodeBlock(rb.content, c, opts.Limits)
	if d != nil {
		return nil, d
	}

	b := &Block{
		Role:   RoleGlobal,
		Fields: fields,
		Span:   rb.span,
		Body:   rb.bodySpan,
		Loc:    rb.loc,
	}

	scopeVal, hasScope := fields.Get(scopeKey)
	tmplVal, hasTemplate := fields.Get(templateKey)

	if hasScope && hasTemplate {
		return nil, diag.Errorf(CodeConflictingDirectives,
			"metadata block declares both %q and %q", scopeKey, templateKey).
			At(b.Loc).
			WithHint("a block is either a collection member or a template directive, never both")
	}

	switch {
	case hasScope:
		name := scopeVal.Str()
		if scopeVal.Kind() != KindString || !identRE.MatchString(name) {
			return nil, diag.Errorf(CodeInvalidIdentifier,
				"invalid collection name %s", rawScalar(scopeVal)).
				At(b.Loc).
				WithHint("collection names match [a-z_][a-z0-9_]*")
		}
		if name == bodyKey {
			return nil, diag.Errorf(CodeReservedName,
				"%q is reserved and cannot be used as a collection name", bodyKey).
				At(b.Loc)
		}
		fields.Delete(scopeKey)
		b.Role = RoleScoped
		b.Name = name

	case hasTemplate:
		name := tmplVal.Str()
		if tmplVal.Kind() != KindString || name == "" {
			return nil, diag.Errorf(CodeInvalidData,
				"template directive must name a template").
				At(b.Loc)
		}
		fields.Delete(templateKey)
		b.Role = RoleTemplate
		b.Name = name
	}

	// No block may define the reserved body field explicitly; the
	// assembler owns it and never overrides user data.
	if fields.Has(bodyKey) {
		return nil, diag.Errorf(CodeReservedName,
			"field %q is reserved for the block body text", bodyKey).
			At(b.Loc)
	}

	opts.Logger.Debugw("classified metadata block",
		"line", b.Loc.Line, "role", b.Role.String(), "name", b.Name, "fields", fields.Len())

	return b, nil
}

// rawScalar renders a directive value for an error message.
func rawScalar(v Value) string {
	switch v.Kind() {
	case KindString:
		return "\"" + v.Str() + "\""
	default:
		b, err := v.MarshalJSON()
		if err != nil {
			return v.Kind().String()
		}
		return string(b)
	}
}
