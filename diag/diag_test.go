package diag

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeverityString(t *testing.T) {
	require.Equal(t, "note", SevNote.String())
	require.Equal(t, "warning", SevWarning.String())
	require.Equal(t, "error", SevError.String())
}

func TestSeverityJSONRoundTrip(t *testing.T) {
	for _, sev := range []Severity{SevNote, SevWarning, SevError} {
		data, err := json.Marshal(sev)
		require.NoError(t, err)

		var back Severity
		require.NoError(t, json.Unmarshal(data, &back))
		require.Equal(t, sev, back)
	}

	var s Severity
	require.Error(t, json.Unmarshal([]byte(`"fatal"`), &s))
}

func TestDiagnosticJSONRoundTrip(t *testing.T) {
	d := &Diagnostic{
		Severity: SevError,
		Code:     "parse.invalid_data",
		Message:  "invalid structured data in metadata block",
		Primary:  &Location{File: "doc.md", Line: 3, Column: 1},
		Related: []Location{
			{File: "doc.md", Line: 1, Column: 1},
			{File: "doc.md", Line: 7, Column: 1},
		},
		Hint:       "the block content must be valid YAML",
		CauseChain: []string{"wrapping error", "root cause"},
	}

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var back Diagnostic
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, *d, back)
}

func TestErrorFormat(t *testing.T) {
	d := Errorf("parse.unclosed_block", "metadata block opened at line %d is never closed", 4).
		At(Location{File: "doc.md", Line: 4, Column: 1})

	require.EqualError(t, d, "doc.md:4:1: error [parse.unclosed_block]: metadata block opened at line 4 is never closed")

	// A diagnostic is a regular Go error.
	var err error = d
	require.Contains(t, err.Error(), "parse.unclosed_block")
}

func TestErrorFormatWithoutLocation(t *testing.T) {
	d := New(SevWarning, "", "something looks off")
	require.EqualError(t, d, "warning: something looks off")
}

func TestCausesOfOrdering(t *testing.T) {
	root := errors.New("root cause")
	mid := fmt.Errorf("decoding failed: %w", root)
	outer := fmt.Errorf("block 2: %w", mid)

	causes := CausesOf(outer)
	require.Equal(t, []string{
		"block 2: decoding failed: root cause",
		"decoding failed: root cause",
		"root cause",
	}, causes)

	require.Nil(t, CausesOf(nil))
}

func TestWithCauseAccumulates(t *testing.T) {
	d := Errorf("parse.invalid_data", "bad block").
		WithCause(fmt.Errorf("outer: %w", errors.New("inner")))

	require.Equal(t, []string{"outer: inner", "inner"}, d.CauseChain)
}

func TestLocationString(t *testing.T) {
	require.Equal(t, "doc.md:2:5", Location{File: "doc.md", Line: 2, Column: 5}.String())
	require.Equal(t, "2:5", Location{Line: 2, Column: 5}.String())
}
