package matter

import (
	"strings"

	"github.com/docmatter/matter/diag"
)

// The metadata block delimiter. A line whose content is exactly this token
// (ignoring trailing blanks and a possible carriage return) is a delimiter
// line; anything else, including longer dash runs, is ordinary text.
const delimiter = "---"

// Span is a half-open byte range [Start, End) into the raw document.
type Span struct {
	Start int
	End   int
}

func (s Span) Empty() bool { return s.Start >= s.End }

// line records where one source line lives in the raw document. end excludes
// the line terminator; next is the offset of the first byte of the following
// line (or the document length for the last line). Keeping both lets us
// slice bodies verbatim, carriage returns included.
type line struct {
	start int
	end   int
	next  int
}

// indexLines splits src into lines, treating "\r\n" and "\n" identically.
// A final line without a terminator is still a line.
func indexLines(src string) []line {
	var lines []line
	start := 0
	for start <= len(src) {
		nl := strings.IndexByte(src[start:], '\n')
		if nl == -1 {
			if start < len(src) {
				lines = append(lines, line{start: start, end: len(src), next: len(src)})
			}
			break
		}
		end := start + nl
		next := end + 1
		if end > start && src[end-1] == '\r' {
			end--
		}
		lines = append(lines, line{start: start, end: end, next: next})
		start = next
	}
	return lines
}

func lineContent(src string, ln line) string {
	return src[ln.start:ln.end]
}

// isDelimiterLine reports whether the line is exactly the block delimiter,
// allowing trailing blanks.
func isDelimiterLine(src string, ln line) bool {
	return strings.TrimRight(lineContent(src, ln), " \t") == delimiter
}

// isBlankLine reports whether the line is empty or whitespace-only.
func isBlankLine(src string, ln line) bool {
	return strings.TrimRight(lineContent(src, ln), " \t") == ""
}

// rawBlock is one accepted delimiter-bounded region, before classification.
type rawBlock struct {
	// span covers the whole region from the opener line to just past the
	// closer line's terminator.
	span Span

	// content is the raw structured text between the delimiters,
	// terminators included. Empty for an empty block.
	content string

	// contentLine is the 1-based document line of the first content line.
	contentLine int

	// loc points at the opening delimiter.
	loc diag.Location

	// bodySpan is the text owned by this block, filled in by
	// computeBodySpans once all blocks are known.
	bodySpan Span
}

// scan walks the document line by line and returns every accepted metadata
// block in source order. Delimiter occurrences that are really markdown
// horizontal rules (opener followed by a blank line or end of document, or a
// candidate whose content is interrupted by a blank line) are left untouched
// as body text. A candidate with contiguous content but no closer is a hard
// error: dropping it silently would corrupt user content.
func scan(src string, opts Options) ([]*rawBlock, *diag.Diagnostic) {
	lines := indexLines(src)
	var blocks []*rawBlock

	for i := 0; i < len(lines); {
		if !isDelimiterLine(src, lines[i]) {
			i++
			continue
		}

		// A delimiter followed by a blank line or by the end of the
		// document is a horizontal rule, not an opener.
		if i+1 >= len(lines) || isBlankLine(src, lines[i+1]) {
			opts.Logger.Debugw("delimiter is a horizontal rule", "line", i+1)
			i++
			continue
		}

		// Candidate opener: scan forward for the closer. The content in
		// between must be contiguous, so a blank line rejects the
		// candidate and we backtrack to just after the opener.
		closer := -1
		rejected := false
		for j := i + 1; j < len(lines); j++ {
			if isDelimiterLine(src, lines[j]) {
				closer = j
				break
			}
			if isBlankLine(src, lines[j]) {
				rejected = true
				break
			}
		}

		if rejected {
			opts.Logger.Debugw("candidate block rejected, blank line before closer", "line", i+1)
			i++
			continue
		}

		if closer == -1 {
			return nil, diag.Errorf(CodeUnclosedBlock,
				"metadata block opened at line %d is never closed", i+1).
				At(diag.Location{File: opts.Filename, Line: i + 1, Column: 1}).
				WithHint("add a closing '---' line, or insert a blank line after the opener if this was meant to be a horizontal rule")
		}

		b := &rawBlock{
			span:        Span{Start: lines[i].start, End: lines[closer].next},
			content:     src[lines[i+1].start:lines[closer].start],
			contentLine: i + 2,
			loc:         diag.Location{File: opts.Filename, Line: i + 1, Column: 1},
		}

		// Enforce the block size guard now that the boundary is known,
		// before any decoding happens.
		if len(b.content) > opts.Limits.MaxBlockSize {
			return nil, diag.Errorf(CodeBlockTooLarge,
				"metadata block at line %d is %d bytes, limit is %d", i+1, len(b.content), opts.Limits.MaxBlockSize).
				At(b.loc)
		}

		opts.Logger.Debugw("accepted metadata block", "line", i+1, "bytes", len(b.content))
		blocks = append(blocks, b)
		i = closer + 1
	}

	return blocks, nil
}

// computeBodySpans assigns to each block the text it owns: from just past
// its closing delimiter line to the start of the next block, or to the end
// of the document. Nothing is trimmed; whitespace fidelity is a guarantee
// downstream converters rely on. The returned span is the preamble, the
// text before the first block (the whole document when there are none).
func computeBodySpans(src string, blocks []*rawBlock) Span {
	for i, b := range blocks {
		end := len(src)
		if i+1 < len(blocks) {
			end = blocks[i+1].span.Start
		}
		b.bodySpan = Span{Start: b.span.End, End: end}
	}
	if len(blocks) == 0 {
		return Span{Start: 0, End: len(src)}
	}
	return Span{Start: 0, End: blocks[0].span.Start}
}
