package matter

// Document is the final, immutable result of decomposing one raw document:
// a single ordered mapping from field name to Value. It always contains the
// reserved "body" key with the document's own top-level body text, and one
// key per encountered collection holding a sequence of member mappings.
// A Document is constructed exactly once by the assembler and is meant to
// be consumed read-only.
type Document struct {
	fields   *Mapping
	template string
}

// Get looks up a top-level field by name.
func (d *Document) Get(key string) (Value, bool) {
	return d.fields.Get(key)
}

// Keys enumerates all top-level keys in insertion order: global fields
// first, then collections in first-occurrence order, then "body".
func (d *Document) Keys() []string {
	return d.fields.Keys()
}

// Body returns the document's own top-level body text, verbatim. It is
// never null: a document without content yields the empty string.
func (d *Document) Body() string {
	v, _ := d.fields.Get(bodyKey)
	return v.Str()
}

// Template returns the name declared by the template-directive block, or
// the empty string when the document carries none.
func (d *Document) Template() string {
	return d.template
}

// Context converts the document to plain Go types for consumers like the
// template stage that address fields by name and do not care about order.
func (d *Document) Context() map[string]any {
	return d.fields.Interface()
}

// MarshalJSON writes the document as a JSON object in key insertion order.
func (d *Document) MarshalJSON() ([]byte, error) {
	return d.fields.MarshalJSON()
}
