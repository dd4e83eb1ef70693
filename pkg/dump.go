package fecom

import (
	"fmt"
	"io"
)

// treeDump writes "|-- key : value" lines; the last line is written by
// last() with a "`-- " prefix.
type treeDump struct {
	w      io.Writer
	indent string
}

func newTreeDump(w io.Writer, title string, indent string) *treeDump {
	if title != "" {
		fmt.Fprintf(w, "%s%s\n", indent, title)
	}
	return &treeDump{w: w, indent: indent}
}

func (t *treeDump) item(key string, value any) {
	fmt.Fprintf(t.w, "%s|-- %-24s: %v\n", t.indent, key, value)
}

func (t *treeDump) last(key string, value any) {
	fmt.Fprintf(t.w, "%s`-- %-24s: %v\n", t.indent, key, value)
}

// child returns the indent for a nested dump under an item; lastItem tells
// whether the parent item is the final one.
func (t *treeDump) child(lastItem bool) string {
	if lastItem {
		return t.indent + "    "
	}
	return t.indent + "|   "
}
