// Package source resolves a command argument into a loaded topology. An
// argument naming an existing file (or ending in .json) is a snapshot path;
// anything else is treated as a broker address.
package source

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/topomq/topomq/internal/mgmt"
	"github.com/topomq/topomq/internal/topology"
)

// Source is one loaded topology plus the live-only data that rides along
// with it.
type Source struct {
	Topology *topology.Topology
	// Consumers holds per-queue consumer counts captured from the raw broker
	// records before canonicalization strips them. Empty for snapshots.
	Consumers map[string]int
	// Origin is "snapshot" or the resolved broker base URL.
	Origin string
}

// IsSnapshotPath reports whether the argument names a snapshot file rather
// than a broker address.
func IsSnapshotPath(arg string) bool {
	if strings.HasSuffix(arg, ".json") {
		return true
	}
	if _, err := os.Stat(arg); err == nil {
		return true
	}
	return false
}

// Load resolves arg into a topology. vhost, when non-empty, restricts a live
// load to one virtual host; it has no effect on snapshots, which are stored
// pre-filtered.
func Load(ctx context.Context, arg string, creds mgmt.Credentials, vhost string) (*Source, error) {
	if IsSnapshotPath(arg) {
		tp, err := topology.LoadSnapshot(arg)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("path", arg).Msg("Loaded topology from snapshot")
		return &Source{Topology: tp, Consumers: map[string]int{}, Origin: "snapshot"}, nil
	}

	base, err := mgmt.Resolve(ctx, arg)
	if err != nil {
		return nil, err
	}
	return LoadBroker(ctx, base, creds, vhost)
}

// LoadBroker fetches the raw records from a live broker, captures consumer
// counts, then filters and canonicalizes everything into a topology.
func LoadBroker(ctx context.Context, base string, creds mgmt.Credentials, vhost string) (*Source, error) {
	client := mgmt.NewClient(base, creds)

	rawExchanges, err := client.ListExchanges(ctx)
	if err != nil {
		return nil, err
	}
	rawQueues, err := client.ListQueues(ctx)
	if err != nil {
		return nil, err
	}
	rawBindings, err := client.ListBindings(ctx)
	if err != nil {
		return nil, err
	}

	rawExchanges = filterVHost(rawExchanges, vhost)
	rawQueues = filterVHost(rawQueues, vhost)
	rawBindings = filterVHost(rawBindings, vhost)

	// Consumer counts live in the raw records only; grab them before the
	// cleaning pass drops them.
	consumers := consumerCounts(rawQueues)

	exchanges, err := topology.CanonicalExchanges(rawExchanges)
	if err != nil {
		return nil, err
	}
	queues, err := topology.CanonicalQueues(rawQueues)
	if err != nil {
		return nil, err
	}
	bindings, err := topology.CanonicalBindings(rawBindings)
	if err != nil {
		return nil, err
	}

	tp, err := topology.FromRecords(exchanges, queues, bindings)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("base", base).
		Int("exchanges", len(tp.Exchanges)).
		Int("queues", len(tp.Queues)).
		Int("bindings", len(tp.Bindings)).
		Msg("Loaded topology from broker")
	return &Source{Topology: tp, Consumers: consumers, Origin: base}, nil
}

func filterVHost(records []topology.Record, vhost string) []topology.Record {
	if vhost == "" {
		return records
	}
	out := make([]topology.Record, 0, len(records))
	for _, r := range records {
		if vh, _ := r.String("vhost"); vh == vhost {
			out = append(out, r)
		}
	}
	return out
}

func consumerCounts(rawQueues []topology.Record) map[string]int {
	counts := make(map[string]int, len(rawQueues))
	for _, r := range rawQueues {
		name, ok := r.String("name")
		if !ok {
			continue
		}
		if n, ok := r.Int("consumers"); ok {
			counts[name] = n
		}
	}
	return counts
}
