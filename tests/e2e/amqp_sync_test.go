package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/topomq/topomq/internal/amqptarget"
	"github.com/topomq/topomq/internal/syncer"
)

func TestSyncOverAMQP(t *testing.T) {
	brokerAddr(t) // shares the e2e gate
	host := os.Getenv("TOPOMQ_E2E_AMQP_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("TOPOMQ_E2E_AMQP_PORT")
	if port == "" {
		port = "5672"
	}
	user, password := brokerCreds()

	target, err := amqptarget.Dial(host, port, "/", user, password)
	require.NoError(t, err)
	defer target.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tp := fixtureTopology()
	result, err := syncer.Replay(ctx, tp, target)
	require.NoError(t, err)
	require.True(t, result.Synced(), "replay failures: %v", result.Failures)

	// Declares are idempotent, a second replay must also be clean.
	result, err = syncer.Replay(ctx, tp, target)
	require.NoError(t, err)
	require.True(t, result.Synced())
}
