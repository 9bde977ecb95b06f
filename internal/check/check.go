// Package check implements advisory anomaly rules over a canonical topology.
// Every rule is a pure function returning the sorted names of offending
// resources; rules never fail.
package check

import (
	"sort"

	"github.com/topomq/topomq/internal/topology"
)

// Report aggregates the result of all rules for one topology.
type Report struct {
	UnboundQueues    []string `json:"unbound_queues"`
	UnboundExchanges []string `json:"unbound_exchanges"`
	NoConsumersNoTTL []string `json:"no_consumers_no_ttl"`
	NoConsumersNoDLX []string `json:"no_consumers_no_dlx"`
}

// Clean reports whether no rule flagged anything.
func (r Report) Clean() bool {
	return len(r.UnboundQueues) == 0 && len(r.UnboundExchanges) == 0 &&
		len(r.NoConsumersNoTTL) == 0 && len(r.NoConsumersNoDLX) == 0
}

// Run applies all rules. consumers carries the per-queue consumer counts
// captured from the raw broker records before canonicalization stripped
// them; for snapshot sources it is empty and counts read as zero.
func Run(tp *topology.Topology, consumers map[string]int) Report {
	return Report{
		UnboundQueues:    UnboundQueues(tp),
		UnboundExchanges: UnboundExchanges(tp),
		NoConsumersNoTTL: NoConsumersNoTTL(tp, consumers),
		NoConsumersNoDLX: NoConsumersNoDLX(tp, consumers),
	}
}

func sorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// UnboundQueues returns queues that are never the destination of any
// binding. Messages cannot reach them.
func UnboundQueues(tp *topology.Topology) []string {
	bound := make(map[string]struct{})
	for _, b := range tp.Bindings {
		if b.DestinationType == topology.DestinationQueue {
			bound[b.Destination] = struct{}{}
		}
	}
	offending := make(map[string]struct{})
	for _, q := range tp.Queues {
		if _, ok := bound[q.Name]; !ok {
			offending[q.Name] = struct{}{}
		}
	}
	return sorted(offending)
}

// UnboundExchanges returns exchanges that are never a binding source, never
// an exchange-typed binding destination, and never referenced as a queue's
// dead-letter exchange. Dead-letter wiring counts as an implicit binding for
// reachability purposes.
func UnboundExchanges(tp *topology.Topology) []string {
	referenced := make(map[string]struct{})
	for _, b := range tp.Bindings {
		referenced[b.Source] = struct{}{}
		if b.DestinationType == topology.DestinationExchange {
			referenced[b.Destination] = struct{}{}
		}
	}
	for _, q := range tp.Queues {
		if dlx, ok := q.DeadLetterExchange(); ok {
			referenced[dlx] = struct{}{}
		}
	}
	offending := make(map[string]struct{})
	for _, ex := range tp.Exchanges {
		if _, ok := referenced[ex.Name]; !ok {
			offending[ex.Name] = struct{}{}
		}
	}
	return sorted(offending)
}

// NoConsumersNoTTL returns queues with no active consumers and no
// x-message-ttl argument; messages could accumulate unbounded.
func NoConsumersNoTTL(tp *topology.Topology, consumers map[string]int) []string {
	offending := make(map[string]struct{})
	for _, q := range tp.Queues {
		if consumers[q.Name] > 0 {
			continue
		}
		if _, ok := q.MessageTTL(); ok {
			continue
		}
		offending[q.Name] = struct{}{}
	}
	return sorted(offending)
}

// NoConsumersNoDLX returns queues with no active consumers and no
// x-dead-letter-exchange argument; messages have no overflow destination.
func NoConsumersNoDLX(tp *topology.Topology, consumers map[string]int) []string {
	offending := make(map[string]struct{})
	for _, q := range tp.Queues {
		if consumers[q.Name] > 0 {
			continue
		}
		if _, ok := q.DeadLetterExchange(); ok {
			continue
		}
		offending[q.Name] = struct{}{}
	}
	return sorted(offending)
}
