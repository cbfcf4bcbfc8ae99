package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"expdata/internal/record"
)

// ErrDropped marks a raw record that could not be normalized.
var ErrDropped = errors.New("record dropped")

// DropError explains why one raw record was dropped.
type DropError struct {
	Index  int
	Field  string
	Reason string
}

func (e *DropError) Error() string {
	return fmt.Sprintf("record %d: %s: %s", e.Index, e.Field, e.Reason)
}

func (e *DropError) Is(target error) bool { return target == ErrDropped }

// Context carries what the caller knows about a record that the record
// itself may not state.
type Context struct {
	Family record.Family
	Source string
	// NetworkSize is authoritative for families whose schema injects it.
	NetworkSize int
}

// Normalizer turns raw records into canonical ones and keeps per-family
// drop counts.
type Normalizer struct {
	log   *slog.Logger
	drops map[record.Family]int
	warns map[record.Family]int
}

// New creates a Normalizer. A nil logger uses slog.Default.
func New(log *slog.Logger) *Normalizer {
	if log == nil {
		log = slog.Default()
	}
	return &Normalizer{
		log:   log,
		drops: make(map[record.Family]int),
		warns: make(map[record.Family]int),
	}
}

// Dropped returns how many records of a family were dropped.
func (n *Normalizer) Dropped(f record.Family) int { return n.drops[f] }

// Coercions returns how many optional values of a family were discarded
// because they could not be coerced.
func (n *Normalizer) Coercions(f record.Family) int { return n.warns[f] }

// All normalizes a batch in input order. Dropped records are logged and
// counted; they never abort the batch.
func (n *Normalizer) All(raws []*record.Object, ctx Context) []record.Canonical {
	out := make([]record.Canonical, 0, len(raws))
	for i, raw := range raws {
		c, err := n.One(raw, i, ctx)
		if err != nil {
			n.drops[ctx.Family]++
			n.log.Warn("record dropped",
				slog.String("family", string(ctx.Family)),
				slog.String("source", ctx.Source),
				slog.String("error", err.Error()),
			)
			continue
		}
		out = append(out, c)
	}
	return out
}

// One normalizes a single raw record found at position index of its source.
func (n *Normalizer) One(raw *record.Object, index int, ctx Context) (record.Canonical, error) {
	s, ok := SchemaFor(ctx.Family)
	if !ok {
		return record.Canonical{}, fmt.Errorf("normalize: no schema for family %q", ctx.Family)
	}
	c := record.Canonical{
		Family: ctx.Family,
		Provenance: record.Provenance{
			Family:        ctx.Family,
			Source:        ctx.Source,
			Index:         index,
			SchemaVersion: s.DetectVersion(raw),
		},
	}

	for _, f := range s.RequiredFields() {
		if f.Name == record.FieldNetworkSize && s.InjectSize && ctx.NetworkSize > 0 {
			continue
		}
		if _, _, found := f.Resolve(raw); !found {
			return c, &DropError{Index: index, Field: f.Name, Reason: "missing"}
		}
	}

	var modes [3]float64
	var modeSeen int
	for _, f := range s.Fields {
		v, key, found := f.Resolve(raw)
		if !found {
			continue
		}
		val, err := coerce(v, f.Kind)
		if err != nil {
			if f.Requirement == Required {
				return c, &DropError{Index: index, Field: key, Reason: err.Error()}
			}
			n.warns[ctx.Family]++
			n.log.Debug("optional value ignored",
				slog.String("family", string(ctx.Family)),
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			continue
		}
		switch f.Name {
		case record.FieldProtocol:
			c.Protocol = val.(string)
		case record.FieldTopology:
			c.Topology = val.(string)
		case record.FieldEmbedding:
			c.Embedding = val.(string)
		case record.FieldStrategy:
			c.Strategy = val.(string)
		case record.FieldSelection:
			c.Selection = val.(string)
		case record.FieldNetworkSize:
			c.NetworkSize = int(val.(float64))
		case ModeGravity:
			modes[0] = val.(float64)
			modeSeen++
		case ModePressure:
			modes[1] = val.(float64)
			modeSeen++
		case ModeTree:
			modes[2] = val.(float64)
			modeSeen++
		default:
			c.SetMetric(f.Name, val.(float64))
		}
	}

	if s.InjectSize && ctx.NetworkSize > 0 {
		c.NetworkSize = ctx.NetworkSize
		c.Provenance.SizeFromContext = true
	}
	if modeSeen == 3 {
		c.Modes = &record.ModeCounts{
			Gravity:    modes[0],
			Pressure:   modes[1],
			Tree:       modes[2],
			Normalized: s.RatioModes,
		}
	}
	if sr, ok := c.Metric(record.SuccessRate); ok && (sr < 0 || sr > 1) {
		return c, &DropError{Index: index, Field: record.SuccessRate, Reason: fmt.Sprintf("%g outside [0, 1]", sr)}
	}
	return c, nil
}

// coerce converts a raw value to the field kind. Numbers come back as
// float64, text as string.
func coerce(v any, kind Kind) (any, error) {
	if kind == Text {
		switch t := v.(type) {
		case string:
			return t, nil
		case json.Number:
			return t.String(), nil
		default:
			return nil, fmt.Errorf("expected text, got %T", v)
		}
	}
	f, err := toFloat(v)
	if err != nil {
		return nil, err
	}
	if kind == Integer {
		if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return nil, fmt.Errorf("%g is not an integer", f)
		}
	}
	return f, nil
}

func toFloat(v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case json.Number:
		x, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", t.String())
		}
		f = x
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		x, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", t)
		}
		f = x
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite number %v", f)
	}
	return f, nil
}
