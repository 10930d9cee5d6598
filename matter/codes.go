package matter

// Diagnostic codes emitted by the decomposition stage. The taxonomy is
// closed: every failure maps to exactly one of these, and foreign errors
// (like decoder failures) are wrapped into the cause chain instead of
// leaking their own types.
const (
	CodeUnclosedBlock         = "parse.unclosed_block"
	CodeInvalidData           = "parse.invalid_data"
	CodeConflictingDirectives = "parse.conflicting_directives"
	CodeInvalidIdentifier     = "parse.invalid_identifier"
	CodeReservedName          = "parse.reserved_name"
	CodeDuplicateGlobal       = "parse.duplicate_global"
	CodeDuplicateTemplate     = "parse.duplicate_template"
	CodeNameCollision         = "parse.name_collision"
	CodeInputTooLarge         = "parse.input_too_large"
	CodeBlockTooLarge         = "parse.block_too_large"
	CodeNestingTooDeep        = "parse.nesting_too_deep"
)
