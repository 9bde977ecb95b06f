package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topomq/topomq/internal/diff"
	"github.com/topomq/topomq/internal/mgmt"
	"github.com/topomq/topomq/internal/source"
	"github.com/topomq/topomq/internal/syncer"
	"github.com/topomq/topomq/internal/topology"
)

// fixtureTopology builds a uniquely named topology so runs never collide on
// a shared broker.
func fixtureTopology() *topology.Topology {
	suffix := uuid.NewString()[:8]
	exchange := "topomq.e2e." + suffix
	queue := "topomq.e2e." + suffix + ".events"
	return &topology.Topology{
		Exchanges: []topology.Exchange{
			{Name: exchange, VHost: "/", Type: "topic", Durable: true, Arguments: map[string]any{}},
		},
		Queues: []topology.Queue{
			{Name: queue, VHost: "/", Durable: true, Arguments: map[string]any{}},
		},
		Bindings: []topology.Binding{
			{Source: exchange, Destination: queue, DestinationType: topology.DestinationQueue,
				RoutingKey: "events.#", VHost: "/", Arguments: map[string]any{}},
		},
	}
}

func TestSyncThenDiffAgainstLiveBroker(t *testing.T) {
	addr := brokerAddr(t)
	user, password := brokerCreds()
	creds := mgmt.Credentials{Username: user, Password: password}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	base, err := mgmt.Resolve(ctx, addr)
	require.NoError(t, err)

	tp := fixtureTopology()
	client := mgmt.NewClient(base, creds)

	result, err := syncer.Replay(ctx, tp, client)
	require.NoError(t, err)
	require.True(t, result.Synced(), "replay failures: %v", result.Failures)

	// Replaying again must be a no-op: every create is idempotent.
	result, err = syncer.Replay(ctx, tp, client)
	require.NoError(t, err)
	assert.True(t, result.Synced())

	// The replayed topology must now be a subset of the live one.
	live, err := source.LoadBroker(ctx, base, creds, "")
	require.NoError(t, err)

	report, err := diff.Topologies(tp, live.Topology)
	require.NoError(t, err)
	assert.Empty(t, report.Exchanges.Missing)
	assert.Empty(t, report.Queues.Missing)
	assert.Empty(t, report.Bindings.Missing)
	assert.Empty(t, report.Exchanges.Different)
	assert.Empty(t, report.Queues.Different)
}
