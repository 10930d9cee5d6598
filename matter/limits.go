package matter

// Limits are the resource guardrails applied to untrusted input. They are an
// explicit value passed with every decomposition instead of module-level
// constants, so deployments can tune them without global mutable state.
type Limits struct {
	// MaxInputSize is the maximum total input size in bytes, enforced
	// before scanning begins.
	MaxInputSize int

	// MaxBlockSize is the maximum size in bytes of the structured content
	// of a single metadata block, enforced as soon as the block boundary
	// is known and before decoding.
	MaxBlockSize int

	// MaxDepth is the maximum nesting depth of decoded values. The block
	// mapping itself counts as depth one.
	MaxDepth int
}

// DefaultLimits returns the limits used when the caller provides none.
func DefaultLimits() Limits {
	return Limits{
		MaxInputSize: 8 << 20,
		MaxBlockSize: 512 << 10,
		MaxDepth:     64,
	}
}

// withDefaults fills unset (zero) fields from DefaultLimits.
func (l Limits) withDefaults() Limits {
	def := DefaultLimits()
	if l.MaxInputSize <= 0 {
		l.MaxInputSize = def.MaxInputSize
	}
	if l.MaxBlockSize <= 0 {
		l.MaxBlockSize = def.MaxBlockSize
	}
	if l.MaxDepth <= 0 {
		l.MaxDepth = def.MaxDepth
	}
	return l
}
