// Package matter decomposes a hybrid "markdown plus inline metadata"
// document into a structured field set and body text.
//
// Metadata lives in blocks bounded by '---' delimiter lines. A delimiter
// followed by a blank line is an ordinary markdown horizontal rule and is
// left alone; block content must be contiguous YAML. An untagged block
// supplies document-wide fields, a block with a 'scope' directive joins the
// named collection, and a block with a 'template' directive selects the
// downstream template. The decomposition either fully succeeds or fails
// with a single diag.Diagnostic; there is no partial result.
//
// The whole computation is pure and synchronous over one immutable input.
// Decompositions of different documents may run concurrently with no
// coordination.
package matter

import (
	"github.com/docmatter/matter/diag"
	"go.uber.org/zap"
)

// Options configure one decomposition.
type Options struct {
	// Filename appears in diagnostic locations. It is never opened; the
	// caller supplies the document text.
	Filename string

	// Limits are the resource guardrails. Zero fields take defaults.
	Limits Limits

	// Logger receives debug traces of scanning and classification. Nil
	// means no logging.
	Logger *zap.SugaredLogger
}

func (o Options) withDefaults() Options {
	o.Limits = o.Limits.withDefaults()
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}
	return o
}

// Decompose splits src into fields and body text. On success it returns the
// assembled document plus any accumulated warnings; on failure it returns a
// single diagnostic describing the first violation in source order.
func Decompose(src string, opts Options) (*Document, []diag.Diagnostic, *diag.Diagnostic) {
	opts = opts.withDefaults()

	// Guard the total input size before scanning anything.
	if len(src) > opts.Limits.MaxInputSize {
		return nil, nil, diag.Errorf(CodeInputTooLarge,
			"input is %d bytes, limit is %d", len(src), opts.Limits.MaxInputSize)
	}

	rawBlocks, d := scan(src, opts)
	if d != nil {
		return nil, nil, d
	}
	preamble := computeBodySpans(src, rawBlocks)

	// Classify in source order. Detecting a duplicate global or template
	// block here, not in the assembler, keeps failures in strict source
	// order: a duplicate at block two outranks a decode error at block
	// three.
	blocks := make([]*Block, 0, len(rawBlocks))
	var firstGlobal, firstTemplate *Block
	for _, rb := range rawBlocks {
		b, d := classify(rb, opts)
		if d != nil {
			return nil, nil, d
		}
		switch b.Role {
		case RoleGlobal:
			if firstGlobal != nil {
				return nil, nil, diag.Errorf(CodeDuplicateGlobal,
					"document has more than one global metadata block").
					At(b.Loc).
					AlsoAt(firstGlobal.Loc).
					AlsoAt(b.Loc).
					WithHint("tag extra blocks with a 'scope' directive, or merge their fields into the first block")
			}
			firstGlobal = b
		case RoleTemplate:
			if firstTemplate != nil {
				return nil, nil, diag.Errorf(CodeDuplicateTemplate,
					"document has more than one template directive block").
					At(b.Loc).
					AlsoAt(firstTemplate.Loc).
					AlsoAt(b.Loc)
			}
			firstTemplate = b
		}
		blocks = append(blocks, b)
	}

	doc, d := assemble(src, blocks, preamble, opts)
	if d != nil {
		return nil, nil, d
	}

	// The core taxonomy currently aborts on every violation, so the
	// warning list is empty; it exists so deprecations can be reported
	// without breaking the API.
	return doc, nil, nil
}

// Scan finds and classifies every metadata block without assembling a
// document. Tools that rewrite the raw text, like stripping metadata while
// keeping the body bytes intact, work from the returned spans.
func Scan(src string, opts Options) ([]*Block, *diag.Diagnostic) {
	opts = opts.withDefaults()

	if len(src) > opts.Limits.MaxInputSize {
		return nil, diag.Errorf(CodeInputTooLarge,
			"input is %d bytes, limit is %d", len(src), opts.Limits.MaxInputSize)
	}

	rawBlocks, d := scan(src, opts)
	if d != nil {
		return nil, d
	}
	computeBodySpans(src, rawBlocks)

	blocks := make([]*Block, 0, len(rawBlocks))
	for _, rb := range rawBlocks {
		b, d := classify(rb, opts)
		if d != nil {
			return nil, d
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}
