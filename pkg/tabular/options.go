package tabular

// AttributeMode selects how element attributes surface in inferred schemas.
type AttributeMode int

const (
	// AttributeColumns emits one string column per attribute, named
	// element_attribute.
	AttributeColumns AttributeMode = iota
	// AttributePrefixed is AttributeColumns with Options.AttributePrefix
	// prepended to each column name.
	AttributePrefixed
	// AttributeMap emits a single record column per attributed element,
	// mapping attribute names to string values.
	AttributeMap
	// AttributeDiscard drops attributes from the schema entirely.
	AttributeDiscard
)

// EmptyMode selects the value produced for an element that exists but has no
// text content.
type EmptyMode int

const (
	// EmptyNull yields NULL for empty elements.
	EmptyNull EmptyMode = iota
	// EmptyString yields an empty string value.
	EmptyString
	// EmptyRecord yields an all-NULL record for record-typed columns and
	// NULL otherwise.
	EmptyRecord
)

// Options configures schema inference and extraction. The zero value is not
// usable; start from DefaultOptions.
type Options struct {
	// DepthLimit bounds the structural analysis: elements deeper than this
	// many levels below the anchor are not visited and contribute no
	// samples or child statistics. Shallow limits yield flat string-heavy
	// schemas; deeper limits expose nested list/record structure.
	DepthLimit int

	// RootSelector optionally picks the analysis anchor by XPath; empty
	// means the document root.
	RootSelector string
	// RecordSelector optionally picks the element whose children are the
	// extraction rows; empty means the same anchor used for analysis.
	RecordSelector string

	Attributes      AttributeMode
	AttributePrefix string

	// TextKey names the record field that carries a container's own direct
	// text when it has both text and children.
	TextKey string

	EmptyElements EmptyMode

	// ForceList names elements that are always typed as lists of their
	// content even when observed with a single child.
	ForceList []string

	DetectBooleans  bool
	DetectNumbers   bool
	DetectTemporals bool

	// MaxSamples caps text samples kept per element name. Capping keeps
	// the first N instances only, which biases type detection toward the
	// head of large documents whose schema drifts partway through.
	MaxSamples int

	// OutlierThreshold drops elements whose share of sibling occurrences
	// falls below it, treating rare one-offs as noise rather than schema.
	OutlierThreshold float64
	// MajorityThreshold is the vote share a detected scalar type needs
	// across samples before the column narrows beyond VARCHAR.
	MajorityThreshold float64

	// MaxValueDepth is a hard ceiling on extraction recursion. Inference
	// depth is bounded by DepthLimit, but a caller-supplied schema can
	// demand arbitrarily deep materialization; exceeding the ceiling
	// returns ErrDepthExceeded instead of exhausting the stack.
	MaxValueDepth int
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		DepthLimit:        8,
		Attributes:        AttributeColumns,
		TextKey:           "text_content",
		EmptyElements:     EmptyNull,
		DetectBooleans:    true,
		DetectNumbers:     true,
		DetectTemporals:   true,
		MaxSamples:        20,
		OutlierThreshold:  0.10,
		MajorityThreshold: 0.80,
		MaxValueDepth:     256,
	}
}

func (o Options) forcesList(name string) bool {
	for _, n := range o.ForceList {
		if n == name {
			return true
		}
	}
	return false
}
