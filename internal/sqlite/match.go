package sqlite

import (
	"bytes"
	"cmp"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mesh-intelligence/mapikit/internal/charset"
	"github.com/mesh-intelligence/mapikit/pkg/restriction"
	"github.com/mesh-intelligence/mapikit/pkg/types"
)

// match evaluates res against a table record. A restriction on a property
// the record lacks does not match, except through Not.
func match(res restriction.Restriction, row types.Row) (bool, error) {
	switch r := res.(type) {
	case *restriction.Conjunction:
		for _, term := range r.Terms() {
			ok, err := match(term, row)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case *restriction.Disjunction:
		for _, term := range r.Terms() {
			ok, err := match(term, row)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case *restriction.Negation:
		ok, err := match(r.Operand(), row)
		return !ok, err
	case *restriction.Exist:
		_, ok := lookup(row, r.Tag)
		return ok, nil
	case *restriction.Property:
		v, ok := lookup(row, r.Tag)
		if !ok {
			return false, nil
		}
		return matchProperty(r.Relop, v.Value, r.Value.Value)
	case *restriction.Content:
		v, ok := lookup(row, r.Tag)
		if !ok {
			return false, nil
		}
		return matchContent(r.FuzzyLevel, v.Value, r.Value.Value), nil
	case *restriction.Bitmask:
		v, ok := lookup(row, r.Tag)
		if !ok {
			return false, nil
		}
		n, ok := v.Int()
		if !ok {
			return false, nil
		}
		set := uint32(n)&r.Mask != 0
		return set == (r.Relation == restriction.BMR_NEZ), nil
	}
	return false, fmt.Errorf("%v: %w", res.Type(), types.ErrUnsupported)
}

func matchProperty(relop restriction.Relop, have, want any) (bool, error) {
	if relop == restriction.RELOP_RE {
		s, ok1 := have.(string)
		pattern, ok2 := want.(string)
		if !ok1 || !ok2 {
			return false, nil
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		return re.MatchString(s), nil
	}

	c, ok := compare(have, want)
	if !ok {
		return false, nil
	}
	switch relop {
	case restriction.RELOP_LT:
		return c < 0, nil
	case restriction.RELOP_LE:
		return c <= 0, nil
	case restriction.RELOP_GT:
		return c > 0, nil
	case restriction.RELOP_GE:
		return c >= 0, nil
	case restriction.RELOP_EQ:
		return c == 0, nil
	case restriction.RELOP_NE:
		return c != 0, nil
	}
	return false, fmt.Errorf("relop %d: %w", relop, types.ErrUnsupported)
}

// compare orders two values of the same Go type. It reports false when the
// values cannot be ordered against each other.
func compare(a, b any) (int, bool) {
	switch x := a.(type) {
	case int64:
		y, ok := b.(int64)
		return cmp.Compare(x, y), ok
	case float64:
		y, ok := b.(float64)
		return cmp.Compare(x, y), ok
	case string:
		y, ok := b.(string)
		return strings.Compare(x, y), ok
	case []byte:
		y, ok := b.([]byte)
		return bytes.Compare(x, y), ok
	case time.Time:
		y, ok := b.(time.Time)
		return x.Compare(y), ok
	case types.SCode:
		y, ok := b.(types.SCode)
		return cmp.Compare(x, y), ok
	case bool:
		y, ok := b.(bool)
		return cmp.Compare(boolInt(x), boolInt(y)), ok
	}
	return 0, false
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func matchContent(level restriction.FuzzyLevel, have, want any) bool {
	switch x := have.(type) {
	case string:
		y, ok := want.(string)
		if !ok {
			return false
		}
		loose := level&restriction.FL_LOOSE != 0
		if loose || level&restriction.FL_IGNORECASE != 0 {
			x, y = charset.FoldCase(x), charset.FoldCase(y)
		}
		if loose || level&restriction.FL_IGNORENONSPACE != 0 {
			x, y = charset.StripNonSpacing(x), charset.StripNonSpacing(y)
		}
		switch level.Span() {
		case restriction.FL_SUBSTRING:
			return strings.Contains(x, y)
		case restriction.FL_PREFIX:
			return strings.HasPrefix(x, y)
		}
		return x == y
	case []byte:
		y, ok := want.([]byte)
		if !ok {
			return false
		}
		switch level.Span() {
		case restriction.FL_SUBSTRING:
			return bytes.Contains(x, y)
		case restriction.FL_PREFIX:
			return bytes.HasPrefix(x, y)
		}
		return bytes.Equal(x, y)
	}
	return false
}
