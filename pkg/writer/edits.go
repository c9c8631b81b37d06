package writer

import (
	"fmt"
	"sort"

	"github.com/gnana997/uisync/pkg/sourcefile"
)

// edit replaces the byte range [start, end) of the original source.
type edit struct {
	start, end int
	text       string
	reason     string
}

type edits []edit

func (es *edits) replace(span sourcefile.Span, text, reason string) {
	*es = append(*es, edit{start: span.Start, end: span.End, text: text, reason: reason})
}

func (es *edits) insert(at int, text, reason string) {
	*es = append(*es, edit{start: at, end: at, text: text, reason: reason})
}

func (es *edits) remove(span sourcefile.Span, reason string) {
	*es = append(*es, edit{start: span.Start, end: span.End, reason: reason})
}

// apply splices every edit into source, back to front so earlier offsets stay
// valid. At equal offsets a removal runs before an insertion, which leaves the
// inserted text in front of what follows the removed range, and insertions
// at one offset keep the order they were recorded in.
func (es edits) apply(source []byte) ([]byte, error) {
	sorted := make([]edit, 0, len(es))
	for i := len(es) - 1; i >= 0; i-- {
		sorted = append(sorted, es[i])
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].start != sorted[j].start {
			return sorted[i].start > sorted[j].start
		}
		return sorted[i].end > sorted[j].end
	})

	out := append([]byte(nil), source...)
	limit := len(source)
	for _, e := range sorted {
		if e.start < 0 || e.end < e.start || e.end > limit {
			return nil, fmt.Errorf("edit %q [%d,%d) overlaps another edit", e.reason, e.start, e.end)
		}
		tail := append([]byte(e.text), out[e.end:]...)
		out = append(out[:e.start], tail...)
		limit = e.start
	}
	return out, nil
}
