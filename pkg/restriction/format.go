package restriction

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/mesh-intelligence/mapikit/pkg/types"
)

var typeNames = map[Type]string{
	RES_AND:            "RES_AND",
	RES_OR:             "RES_OR",
	RES_NOT:            "RES_NOT",
	RES_CONTENT:        "RES_CONTENT",
	RES_PROPERTY:       "RES_PROPERTY",
	RES_COMPAREPROPS:   "RES_COMPAREPROPS",
	RES_BITMASK:        "RES_BITMASK",
	RES_SIZE:           "RES_SIZE",
	RES_EXIST:          "RES_EXIST",
	RES_SUBRESTRICTION: "RES_SUBRESTRICTION",
	RES_COMMENT:        "RES_COMMENT",
}

var relopNames = map[Relop]string{
	RELOP_LT: "RELOP_LT",
	RELOP_LE: "RELOP_LE",
	RELOP_GT: "RELOP_GT",
	RELOP_GE: "RELOP_GE",
	RELOP_EQ: "RELOP_EQ",
	RELOP_NE: "RELOP_NE",
	RELOP_RE: "RELOP_RE",
}

var fuzzySpanNames = map[FuzzyLevel]string{
	FL_FULLSTRING: "FL_FULLSTRING",
	FL_SUBSTRING:  "FL_SUBSTRING",
	FL_PREFIX:     "FL_PREFIX",
}

var fuzzyFlagNames = []struct {
	flag FuzzyLevel
	name string
}{
	{FL_IGNORECASE, "FL_IGNORECASE"},
	{FL_IGNORENONSPACE, "FL_IGNORENONSPACE"},
	{FL_LOOSE, "FL_LOOSE"},
}

var bmrNames = map[BitmaskRelation]string{
	BMR_EQZ: "BMR_EQZ",
	BMR_NEZ: "BMR_NEZ",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("RES(0x%X)", uint32(t))
}

func (r Relop) String() string {
	if name, ok := relopNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RELOP(%d)", uint32(r))
}

// String renders the span name followed by any option flags, joined by "|".
func (f FuzzyLevel) String() string {
	parts := make([]string, 0, 4)
	if name, ok := fuzzySpanNames[f.Span()]; ok {
		parts = append(parts, name)
	} else {
		parts = append(parts, fmt.Sprintf("FL(0x%X)", uint32(f.Span())))
	}
	rest := f &^ 0xFFFF
	for _, fl := range fuzzyFlagNames {
		if rest&fl.flag != 0 {
			parts = append(parts, fl.name)
			rest &^= fl.flag
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%X", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

func (b BitmaskRelation) String() string {
	if name, ok := bmrNames[b]; ok {
		return name
	}
	return fmt.Sprintf("BMR(%d)", uint32(b))
}

// Format renders r depth-first, one node per line. Children of composite
// nodes are indented by indent spaces per level and every line ends with
// sep.
func Format(r Restriction, indent int, sep string) string {
	var b strings.Builder
	format(&b, r, indent, sep, 0)
	return b.String()
}

// Pretty renders r with four-space indentation and the OS line separator.
func Pretty(r Restriction) string {
	return Format(r, 4, lineSep())
}

func lineSep() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

func oneLine(r Restriction) string {
	return strings.TrimSpace(Format(r, 0, " "))
}

func format(b *strings.Builder, r Restriction, indent int, sep string, depth int) {
	b.WriteString(strings.Repeat(" ", indent*depth))
	if r == nil {
		b.WriteString("<nil>")
		b.WriteString(sep)
		return
	}
	b.WriteString(r.Type().String())
	switch n := r.(type) {
	case *Conjunction:
		b.WriteString(sep)
		for _, c := range n.terms {
			format(b, c, indent, sep, depth+1)
		}
		return
	case *Disjunction:
		b.WriteString(sep)
		for _, c := range n.terms {
			format(b, c, indent, sep, depth+1)
		}
		return
	case *Negation:
		b.WriteString(sep)
		format(b, n.operand, indent, sep, depth+1)
		return
	case *Property:
		fmt.Fprintf(b, " relop=%s proptag=%s value=%s", n.Relop, types.PropTagName(n.Tag), formatValue(n.Value))
	case *Exist:
		fmt.Fprintf(b, " proptag=%s", types.PropTagName(n.Tag))
	case *Content:
		fmt.Fprintf(b, " fuzzylevel=%s proptag=%s value=%s", n.FuzzyLevel, types.PropTagName(n.Tag), formatValue(n.Value))
	case *Bitmask:
		fmt.Fprintf(b, " relbmr=%s proptag=%s mask=0x%X", n.Relation, types.PropTagName(n.Tag), n.Mask)
	}
	b.WriteString(sep)
}

func formatValue(v types.PropValue) string {
	switch x := v.Value.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case []byte:
		return fmt.Sprintf("%x", x)
	}
	return fmt.Sprintf("%v", v.Value)
}
