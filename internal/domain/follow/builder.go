package follow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/phrazzld/mutuals/internal/domain"
	"github.com/phrazzld/mutuals/internal/redact"
)

// DuplicatePolicy decides which record wins when two records share an id.
type DuplicatePolicy string

const (
	// LastWins lets a later record replace an earlier one with the same id.
	LastWins DuplicatePolicy = "last_wins"

	// FirstWins keeps the first record and rejects later duplicates.
	FirstWins DuplicatePolicy = "first_wins"
)

// Diagnostic describes an input record that was skipped or overridden while
// building the graph.
type Diagnostic struct {
	// Index is the zero-based position of the record in the input.
	Index int

	// Raw is the record exactly as received.
	Raw string

	// Err classifies the problem; it wraps one of the domain errors.
	Err error
}

// Builder converts raw user entries into a FollowGraph.
type Builder struct {
	logger *slog.Logger
	policy DuplicatePolicy
}

// NewBuilder creates a Builder. An empty policy means LastWins.
func NewBuilder(logger *slog.Logger, policy DuplicatePolicy) *Builder {
	if policy == "" {
		policy = LastWins
	}
	return &Builder{
		logger: logger.With("component", "graph_builder"),
		policy: policy,
	}
}

// Build parses every entry and assembles the graph. Entries that cannot be
// parsed are skipped and returned as diagnostics; they never abort the build.
func (b *Builder) Build(entries []json.RawMessage) (*domain.FollowGraph, []Diagnostic) {
	records := make([]domain.UserRecord, 0, len(entries))
	position := make(map[int]int, len(entries))
	var diags []Diagnostic

	report := func(i int, err error) {
		d := Diagnostic{Index: i, Raw: string(entries[i]), Err: err}
		diags = append(diags, d)
		b.logger.Warn("skipping user record",
			"index", d.Index,
			"record", redact.JSON(entries[i]),
			"error", d.Err)
	}

	for i, raw := range entries {
		rec, err := ParseRecord(raw)
		if err != nil {
			report(i, err)
			continue
		}

		pos, dup := position[rec.ID]
		if !dup {
			position[rec.ID] = len(records)
			records = append(records, rec)
			continue
		}

		switch b.policy {
		case FirstWins:
			report(i, fmt.Errorf("%w: %d already defined by an earlier record", domain.ErrDuplicateID, rec.ID))
		default:
			records[pos] = rec
			d := Diagnostic{
				Index: i,
				Raw:   string(raw),
				Err:   fmt.Errorf("%w: %d replaces an earlier record", domain.ErrDuplicateID, rec.ID),
			}
			diags = append(diags, d)
			b.logger.Warn("duplicate user id, keeping later record",
				"index", i,
				"id", rec.ID)
		}
	}

	g := domain.NewFollowGraph(records)
	b.logger.Info("follow graph built",
		"entries", len(entries),
		"users", g.Len(),
		"edges", g.EdgeCount(),
		"diagnostics", len(diags))
	b.logger.Debug("known user ids", "ids", g.IDs())

	return g, diags
}

// ParseRecord decodes a single user entry of the form
// {"id": 1, "follows": [2, 3]}. A missing or null follows field yields an
// empty follow set.
func ParseRecord(raw json.RawMessage) (domain.UserRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return domain.UserRecord{}, fmt.Errorf("%w: not a JSON object", domain.ErrMalformedRecord)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return domain.UserRecord{}, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}

	idRaw, ok := fields["id"]
	if !ok || isNull(idRaw) {
		return domain.UserRecord{}, domain.ErrMissingID
	}
	id, err := coerceInt(idRaw)
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("%w: %v", domain.ErrInvalidID, err)
	}

	rec := domain.UserRecord{ID: id, Follows: domain.IDSet{}}

	followsRaw, ok := fields["follows"]
	if !ok || isNull(followsRaw) {
		return rec, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(followsRaw, &items); err != nil {
		return domain.UserRecord{}, fmt.Errorf("%w: expected an array of ids", domain.ErrMalformedFollows)
	}
	for i, item := range items {
		followed, err := coerceInt(item)
		if err != nil {
			return domain.UserRecord{}, fmt.Errorf("%w: element %d: %v", domain.ErrMalformedFollows, i, err)
		}
		rec.Follows.Add(followed)
	}

	return rec, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// coerceInt accepts JSON integers, integral floats and numeric strings.
func coerceInt(raw json.RawMessage) (int, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, err
	}

	switch val := v.(type) {
	case json.Number:
		return numberToInt(string(val))
	case string:
		return numberToInt(strings.TrimSpace(val))
	default:
		return 0, fmt.Errorf("unsupported value %s", string(raw))
	}
}

func numberToInt(s string) (int, error) {
	if n, err := strconv.ParseInt(s, 10, strconv.IntSize); err == nil {
		return int(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if f != math.Trunc(f) || f >= math.MaxInt || f < math.MinInt {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return int(f), nil
}
