// Package aggregate groups canonical records and reduces each group to
// per-metric means, then picks extrema across groups.
package aggregate

import (
	"cmp"
	"encoding/json"
	"strconv"
	"strings"

	"expdata/internal/record"
)

// Unknown stands in for a label the record does not carry.
const Unknown = "Unknown"

// KeyPart is one component of a group key. Numeric parts order
// numerically, text parts lexicographically, numeric before text.
type KeyPart struct {
	Name  string
	Text  string
	Num   float64
	IsNum bool
}

func (p KeyPart) compare(o KeyPart) int {
	switch {
	case p.IsNum && o.IsNum:
		return cmp.Compare(p.Num, o.Num)
	case p.IsNum:
		return -1
	case o.IsNum:
		return 1
	}
	return strings.Compare(p.Text, o.Text)
}

// Value returns the part as an int (integral numbers), float64 or string.
func (p KeyPart) Value() any {
	if !p.IsNum {
		return p.Text
	}
	if p.Num == float64(int64(p.Num)) {
		return int64(p.Num)
	}
	return p.Num
}

func (p KeyPart) String() string {
	if !p.IsNum {
		return p.Text
	}
	return strconv.FormatFloat(p.Num, 'g', -1, 64)
}

// GroupKey is an ordered tuple identifying one group.
type GroupKey []KeyPart

// Compare orders keys part by part; a shorter prefix sorts first.
func (k GroupKey) Compare(o GroupKey) int {
	for i := 0; i < len(k) && i < len(o); i++ {
		if c := k[i].compare(o[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(k), len(o))
}

// Equal reports whether two keys hold the same parts.
func (k GroupKey) Equal(o GroupKey) bool { return k.Compare(o) == 0 }

// Get returns the part named name.
func (k GroupKey) Get(name string) (KeyPart, bool) {
	for _, p := range k {
		if p.Name == name {
			return p, true
		}
	}
	return KeyPart{}, false
}

// Text returns the text of a part, or "" when it is missing.
func (k GroupKey) Text(name string) string {
	p, _ := k.Get(name)
	return p.String()
}

// Int returns a numeric part truncated to int, or 0.
func (k GroupKey) Int(name string) int {
	p, ok := k.Get(name)
	if !ok || !p.IsNum {
		return 0
	}
	return int(p.Num)
}

// String renders the key as "part/part".
func (k GroupKey) String() string {
	parts := make([]string, len(k))
	for i, p := range k {
		parts[i] = p.String()
	}
	return strings.Join(parts, "/")
}

func (k GroupKey) id() string {
	parts := make([]string, len(k))
	for i, p := range k {
		if p.IsNum {
			parts[i] = "#" + p.String()
		} else {
			parts[i] = "$" + p.Text
		}
	}
	return strings.Join(parts, "\x1f")
}

// Object renders the key as an ordered object of name to value.
func (k GroupKey) Object() *record.Object {
	o := record.NewObject()
	for _, p := range k {
		o.Set(p.Name, p.Value())
	}
	return o
}

// MarshalJSON encodes the key as an ordered object.
func (k GroupKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.Object())
}

// KeyFunc derives the group key of a record.
type KeyFunc func(record.Canonical) GroupKey

// By builds a KeyFunc from field names. Label fields become text parts;
// network_size and metric names become numeric parts. Absent values
// become the text part "Unknown".
func By(fields ...string) KeyFunc {
	return func(c record.Canonical) GroupKey {
		key := make(GroupKey, 0, len(fields))
		for _, f := range fields {
			key = append(key, partOf(c, f))
		}
		return key
	}
}

func partOf(c record.Canonical, field string) KeyPart {
	switch field {
	case record.FieldNetworkSize:
		if c.NetworkSize > 0 {
			return KeyPart{Name: field, Num: float64(c.NetworkSize), IsNum: true}
		}
		return KeyPart{Name: field, Text: Unknown}
	case record.FieldFamily, record.FieldProtocol, record.FieldTopology,
		record.FieldEmbedding, record.FieldStrategy, record.FieldSelection:
		if v, ok := c.Label(field); ok {
			return KeyPart{Name: field, Text: v}
		}
		return KeyPart{Name: field, Text: Unknown}
	}
	if v, ok := c.Metric(field); ok {
		return KeyPart{Name: field, Num: v, IsNum: true}
	}
	return KeyPart{Name: field, Text: Unknown}
}
