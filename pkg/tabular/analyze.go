package tabular

import (
	"regexp"
	"sort"
	"strings"

	"github.com/usestring/treetab/pkg/document"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// cleanText trims and collapses internal whitespace runs to single spaces.
func cleanText(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// shapeRecord aggregates statistics for one distinct element name seen during
// analysis. Same-named elements across different branches merge into a single
// record. The map holding these is call-local and discarded after inference.
type shapeRecord struct {
	name        string
	count       int // occurrences among siblings at any analyzed level
	hasText     bool
	samples     []string
	attrCounts  map[string]int
	attrOrder   []string
	hasChildren bool
	childCounts map[string]int
	childOrder  []string
	// maxPerInstance tracks, per child name, the largest count observed
	// within a single instance. It drives container classification:
	// one name with max > 1 is an array container, several names all at
	// max 1 a record container, anything else is not homogeneous.
	maxPerInstance map[string]int
	seq            int // first-seen order, tiebreak for deterministic output
}

func (s *shapeRecord) frequency(total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(s.count) / float64(total)
}

// isArrayContainer reports a single distinct child name repeating within an
// instance.
func (s *shapeRecord) isArrayContainer() bool {
	return len(s.childOrder) == 1 && s.maxPerInstance[s.childOrder[0]] > 1
}

// isRecordContainer reports every distinct child name occurring at most once
// per instance. Absent children in some instances are allowed; they extract
// as NULL fields.
func (s *shapeRecord) isRecordContainer() bool {
	if len(s.childOrder) == 0 || s.isArrayContainer() {
		return false
	}
	for _, n := range s.childOrder {
		if s.maxPerInstance[n] > 1 {
			return false
		}
	}
	return true
}

// analyzeStructure walks the anchor's element children up to opts.DepthLimit
// levels, building one shapeRecord per distinct element name. Returns the
// records and the names ordered by occurrence count (ties by first sight).
// The walk never mutates the tree.
func analyzeStructure(anchor *document.Node, opts Options) (map[string]*shapeRecord, []string) {
	shapes := make(map[string]*shapeRecord)

	for _, child := range anchor.Children {
		analyzeElement(child, shapes, opts, 1)
	}

	names := make([]string, 0, len(shapes))
	for name := range shapes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := shapes[names[i]], shapes[names[j]]
		if a.count != b.count {
			return a.count > b.count
		}
		return a.seq < b.seq
	})

	return shapes, names
}

func analyzeElement(node *document.Node, shapes map[string]*shapeRecord, opts Options, depth int) {
	if depth > opts.DepthLimit {
		return
	}

	s, ok := shapes[node.Name]
	if !ok {
		s = &shapeRecord{
			name:           node.Name,
			attrCounts:     make(map[string]int),
			childCounts:    make(map[string]int),
			maxPerInstance: make(map[string]int),
			seq:            len(shapes),
		}
		shapes[node.Name] = s
	}
	s.count++

	if text := cleanText(node.Text); text != "" {
		s.hasText = true
		if len(s.samples) < opts.MaxSamples {
			s.samples = append(s.samples, text)
		}
	}

	for _, a := range node.Attrs {
		if s.attrCounts[a.Name] == 0 {
			s.attrOrder = append(s.attrOrder, a.Name)
		}
		s.attrCounts[a.Name]++
	}

	if node.HasChildren() {
		s.hasChildren = true
	}

	// Child statistics and recursion stop at the depth limit: elements
	// beyond it stay opaque (hasChildren without child counts).
	if depth+1 > opts.DepthLimit {
		return
	}

	local := make(map[string]int)
	for _, child := range node.Children {
		if s.childCounts[child.Name] == 0 {
			s.childOrder = append(s.childOrder, child.Name)
		}
		s.childCounts[child.Name]++
		local[child.Name]++
		analyzeElement(child, shapes, opts, depth+1)
	}
	for name, n := range local {
		if n > s.maxPerInstance[name] {
			s.maxPerInstance[name] = n
		}
	}
}
