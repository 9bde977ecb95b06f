// Package diff implements a generic keyed structural diff over two sequences
// of records, reporting which keys are missing, extra, or different in the
// actual sequence relative to the expected one.
package diff

import (
	"encoding/json"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/topomq/topomq/internal/topology"
)

// Result holds the outcome of one keyed diff. Key lists are sorted so output
// is deterministic regardless of input order.
type Result struct {
	Missing   []string `json:"missing"`
	Extra     []string `json:"extra"`
	Different []string `json:"different"`
}

// Empty reports whether the two sequences were structurally identical.
func (r Result) Empty() bool {
	return len(r.Missing) == 0 && len(r.Extra) == 0 && len(r.Different) == 0
}

// Report aggregates the per-entity diff results of two topologies.
type Report struct {
	Exchanges Result `json:"exchanges"`
	Queues    Result `json:"queues"`
	Bindings  Result `json:"bindings"`
}

// InSync reports whether the two topologies were structurally identical.
func (r Report) InSync() bool {
	return r.Exchanges.Empty() && r.Queues.Empty() && r.Bindings.Empty()
}

// equalRecords compares two records by their JSON encoding. Map keys are
// sorted during encoding, so map field order never affects the outcome; it
// also sidesteps int/float64 discrepancies after JSON round-trips.
func equalRecords(a, b any) bool {
	ab, err1 := json.Marshal(a)
	bb, err2 := json.Marshal(b)
	if err1 != nil || err2 != nil {
		return false
	}
	return string(ab) == string(bb)
}

func index[T any](records []T, keyOf func(T) (string, error)) (map[string]T, error) {
	byKey := make(map[string]T, len(records))
	for _, rec := range records {
		key, err := keyOf(rec)
		if err != nil {
			return nil, err
		}
		if _, dup := byKey[key]; dup {
			// Data-quality condition, not an error. Last write wins.
			log.Warn().Str("key", key).Msg("Duplicate diff key, keeping the last record")
		}
		byKey[key] = rec
	}
	return byKey, nil
}

// Keyed diffs two sequences of records under the given key function. It is
// total over any two finite sequences; the only failure mode is a record the
// key function cannot evaluate.
func Keyed[T any](expected, actual []T, keyOf func(T) (string, error)) (Result, error) {
	want, err := index(expected, keyOf)
	if err != nil {
		return Result{}, err
	}
	have, err := index(actual, keyOf)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Missing:   make([]string, 0),
		Extra:     make([]string, 0),
		Different: make([]string, 0),
	}
	for key, rec := range want {
		other, ok := have[key]
		switch {
		case !ok:
			res.Missing = append(res.Missing, key)
		case !equalRecords(rec, other):
			res.Different = append(res.Different, key)
		}
	}
	for key := range have {
		if _, ok := want[key]; !ok {
			res.Extra = append(res.Extra, key)
		}
	}

	sort.Strings(res.Missing)
	sort.Strings(res.Extra)
	sort.Strings(res.Different)
	return res, nil
}

// Topologies diffs two topologies entity by entity using the fixed per-entity
// key functions.
func Topologies(expected, actual *topology.Topology) (Report, error) {
	exchanges, err := Keyed(expected.Exchanges, actual.Exchanges, topology.ExchangeKey)
	if err != nil {
		return Report{}, err
	}
	queues, err := Keyed(expected.Queues, actual.Queues, topology.QueueKey)
	if err != nil {
		return Report{}, err
	}
	bindings, err := Keyed(expected.Bindings, actual.Bindings, topology.BindingKey)
	if err != nil {
		return Report{}, err
	}
	return Report{Exchanges: exchanges, Queues: queues, Bindings: bindings}, nil
}
