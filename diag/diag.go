// Package diag defines the diagnostic value shared by every stage of the
// document pipeline: decomposition, template rendering and any backend a
// caller plugs in afterwards. A Diagnostic is pure data. It carries no
// embedded error objects, so it serializes losslessly to JSON and can cross
// process or language boundaries intact.
package diag

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Severity classifies a diagnostic.
type Severity uint8

const (
	SevNote Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevNote:
		return "note"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

// MarshalJSON writes the severity as its lowercase name, so that consumers in
// other languages do not depend on Go iota values.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "note":
		*s = SevNote
	case "warning":
		*s = SevWarning
	case "error":
		*s = SevError
	default:
		return fmt.Errorf("unknown severity %q", name)
	}
	return nil
}

// Location is a 1-indexed position in a source document.
type Location struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Diagnostic is the uniform error/warning value. Code is a namespaced,
// machine-readable string like "parse.unclosed_block". CauseChain holds
// stringified descriptions of nested causes, oldest cause last, so that
// wrapped native errors survive flattening to a plain key/value record.
type Diagnostic struct {
	Severity   Severity   `json:"severity"`
	Code       string     `json:"code,omitempty"`
	Message    string     `json:"message"`
	Primary    *Location  `json:"primary,omitempty"`
	Related    []Location `json:"related,omitempty"`
	Hint       string     `json:"hint,omitempty"`
	CauseChain []string   `json:"causeChain,omitempty"`
}

// Error makes a Diagnostic usable wherever a Go error is expected.
// The format follows the usual file:line:column convention.
func (d *Diagnostic) Error() string {
	var sb strings.Builder
	if d.Primary != nil {
		sb.WriteString(d.Primary.String())
		sb.WriteString(": ")
	}
	sb.WriteString(d.Severity.String())
	if d.Code != "" {
		sb.WriteString(" [")
		sb.WriteString(d.Code)
		sb.WriteString("]")
	}
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	return sb.String()
}

// New builds a diagnostic with the given severity, code and message.
func New(sev Severity, code string, msg string) *Diagnostic {
	return &Diagnostic{Severity: sev, Code: code, Message: msg}
}

// Errorf builds an error diagnostic with a formatted message.
func Errorf(code string, format string, args ...any) *Diagnostic {
	return New(SevError, code, fmt.Sprintf(format, args...))
}

// At sets the primary location and returns the diagnostic for chaining.
func (d *Diagnostic) At(loc Location) *Diagnostic {
	d.Primary = &loc
	return d
}

// AlsoAt appends a related location.
func (d *Diagnostic) AlsoAt(loc Location) *Diagnostic {
	d.Related = append(d.Related, loc)
	return d
}

// WithHint attaches a human hint.
func (d *Diagnostic) WithHint(hint string) *Diagnostic {
	d.Hint = hint
	return d
}

// WithCause flattens err and its wrapped causes into the cause chain.
func (d *Diagnostic) WithCause(err error) *Diagnostic {
	d.CauseChain = append(d.CauseChain, CausesOf(err)...)
	return d
}

// CausesOf walks the Unwrap chain of err and returns the stringified causes,
// oldest (innermost) cause last. A nil err yields nil.
func CausesOf(err error) []string {
	var causes []string
	for err != nil {
		causes = append(causes, err.Error())
		err = errors.Unwrap(err)
	}
	return causes
}
