// Package restriction builds restriction trees: boolean predicates over
// property values used to filter and locate table rows.
//
// A Restriction is one of a closed set of node types. Leaves compare a
// property (Exist, Property, Content, Bitmask); composites combine other
// restrictions (Conjunction, Disjunction, Negation). Values are immutable:
// And, Or and Not return new trees and never modify their operands.
//
// And and Or flatten operands of the same composite kind, so
//
//	And(And(a, b), c)
//
// yields one conjunction of a, b and c rather than a nested one. Not never
// collapses double negation. Restrictions have no addition; combining two
// predicates is only meaningful through And, Or and Not.
package restriction

import "github.com/mesh-intelligence/mapikit/pkg/types"

// Type identifies the kind of a restriction node.
type Type uint32

// Restriction node types.
const (
	RES_AND            Type = 0x00
	RES_OR             Type = 0x01
	RES_NOT            Type = 0x02
	RES_CONTENT        Type = 0x03
	RES_PROPERTY       Type = 0x04
	RES_COMPAREPROPS   Type = 0x05
	RES_BITMASK        Type = 0x06
	RES_SIZE           Type = 0x07
	RES_EXIST          Type = 0x08
	RES_SUBRESTRICTION Type = 0x09
	RES_COMMENT        Type = 0x0A
)

// Relop is the relational operator of a property comparison.
type Relop uint32

const (
	RELOP_LT Relop = 0
	RELOP_LE Relop = 1
	RELOP_GT Relop = 2
	RELOP_GE Relop = 3
	RELOP_EQ Relop = 4
	RELOP_NE Relop = 5
	RELOP_RE Relop = 6
)

// FuzzyLevel controls how a content restriction matches strings. The low
// 16 bits select the match span and the high 16 bits are option flags.
type FuzzyLevel uint32

const (
	FL_FULLSTRING     FuzzyLevel = 0x00000000
	FL_SUBSTRING      FuzzyLevel = 0x00000001
	FL_PREFIX         FuzzyLevel = 0x00000002
	FL_IGNORECASE     FuzzyLevel = 0x00010000
	FL_IGNORENONSPACE FuzzyLevel = 0x00020000
	FL_LOOSE          FuzzyLevel = 0x00040000
)

// Span returns the match-span part of the level.
func (f FuzzyLevel) Span() FuzzyLevel { return f & 0xFFFF }

// BitmaskRelation selects whether a bitmask restriction tests for zero or
// non-zero.
type BitmaskRelation uint32

const (
	BMR_EQZ BitmaskRelation = 0
	BMR_NEZ BitmaskRelation = 1
)

// Restriction is a node in a restriction tree.
type Restriction interface {
	Type() Type
	String() string

	restriction()
}

// Conjunction matches rows that match every term.
type Conjunction struct{ terms []Restriction }

// Disjunction matches rows that match at least one term.
type Disjunction struct{ terms []Restriction }

// Negation matches rows that do not match its operand.
type Negation struct{ operand Restriction }

// Exist matches rows that have the property.
type Exist struct {
	Tag types.PropTag
}

// Property compares a property against a constant value.
type Property struct {
	Relop Relop
	Tag   types.PropTag
	Value types.PropValue
}

// Content matches a string or binary property against a value.
type Content struct {
	FuzzyLevel FuzzyLevel
	Tag        types.PropTag
	Value      types.PropValue
}

// Bitmask tests an integer property against a mask.
type Bitmask struct {
	Relation BitmaskRelation
	Tag      types.PropTag
	Mask     uint32
}

func (*Conjunction) Type() Type { return RES_AND }
func (*Disjunction) Type() Type { return RES_OR }
func (*Negation) Type() Type    { return RES_NOT }
func (*Exist) Type() Type       { return RES_EXIST }
func (*Property) Type() Type    { return RES_PROPERTY }
func (*Content) Type() Type     { return RES_CONTENT }
func (*Bitmask) Type() Type     { return RES_BITMASK }

func (*Conjunction) restriction() {}
func (*Disjunction) restriction() {}
func (*Negation) restriction()    {}
func (*Exist) restriction()       {}
func (*Property) restriction()    {}
func (*Content) restriction()     {}
func (*Bitmask) restriction()     {}

// Terms returns a copy of the conjunction's terms.
func (c *Conjunction) Terms() []Restriction { return append([]Restriction(nil), c.terms...) }

// Len returns the number of terms.
func (c *Conjunction) Len() int { return len(c.terms) }

// Terms returns a copy of the disjunction's terms.
func (d *Disjunction) Terms() []Restriction { return append([]Restriction(nil), d.terms...) }

// Len returns the number of terms.
func (d *Disjunction) Len() int { return len(d.terms) }

// Operand returns the negated restriction.
func (n *Negation) Operand() Restriction { return n.operand }

func (c *Conjunction) String() string { return oneLine(c) }
func (d *Disjunction) String() string { return oneLine(d) }
func (n *Negation) String() string    { return oneLine(n) }
func (e *Exist) String() string       { return oneLine(e) }
func (p *Property) String() string    { return oneLine(p) }
func (c *Content) String() string     { return oneLine(c) }
func (b *Bitmask) String() string     { return oneLine(b) }

// Exists builds a restriction matching rows that have tag.
func Exists(tag types.PropTag) Restriction {
	return &Exist{Tag: tag}
}

// Compare builds a restriction comparing tag against value with relop. The
// value is coerced to the tag's type class and byte values are copied.
func Compare(relop Relop, tag types.PropTag, value any) (Restriction, error) {
	pv, err := types.NewPropValue(tag, value)
	if err != nil {
		return nil, err
	}
	return &Property{Relop: relop, Tag: tag, Value: pv.Clone()}, nil
}

// MustCompare is Compare that panics on a value of the wrong class.
func MustCompare(relop Relop, tag types.PropTag, value any) Restriction {
	r, err := Compare(relop, tag, value)
	if err != nil {
		panic(err)
	}
	return r
}

// ContentMatch builds a string or binary match on tag. Byte values are
// copied.
func ContentMatch(level FuzzyLevel, tag types.PropTag, value any) (Restriction, error) {
	pv, err := types.NewPropValue(tag, value)
	if err != nil {
		return nil, err
	}
	return &Content{FuzzyLevel: level, Tag: tag, Value: pv.Clone()}, nil
}

// MustContentMatch is ContentMatch that panics on a value of the wrong class.
func MustContentMatch(level FuzzyLevel, tag types.PropTag, value any) Restriction {
	r, err := ContentMatch(level, tag, value)
	if err != nil {
		panic(err)
	}
	return r
}

// BitmaskMatch builds a bitmask test on tag.
func BitmaskMatch(rel BitmaskRelation, tag types.PropTag, mask uint32) Restriction {
	return &Bitmask{Relation: rel, Tag: tag, Mask: mask}
}

// Not wraps r in a negation. Double negation is kept as nested nodes.
func Not(r Restriction) Restriction {
	return &Negation{operand: r}
}

// And conjoins a and b. Conjunction operands are spliced into the result.
// A nil operand is ignored, so And can fold a restriction from nothing.
func And(a, b Restriction) Restriction {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &Conjunction{terms: splice(RES_AND, a, b)}
}

// Or disjoins a and b. Disjunction operands are spliced into the result.
// A nil operand is ignored.
func Or(a, b Restriction) Restriction {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &Disjunction{terms: splice(RES_OR, a, b)}
}

// AllOf conjoins every restriction in rs, left to right.
func AllOf(rs ...Restriction) Restriction {
	var out Restriction
	for _, r := range rs {
		out = And(out, r)
	}
	return out
}

// AnyOf disjoins every restriction in rs, left to right.
func AnyOf(rs ...Restriction) Restriction {
	var out Restriction
	for _, r := range rs {
		out = Or(out, r)
	}
	return out
}

func splice(t Type, rs ...Restriction) []Restriction {
	var out []Restriction
	for _, r := range rs {
		switch {
		case t == RES_AND && r.Type() == RES_AND:
			out = append(out, r.(*Conjunction).terms...)
		case t == RES_OR && r.Type() == RES_OR:
			out = append(out, r.(*Disjunction).terms...)
		default:
			out = append(out, r)
		}
	}
	return out
}
