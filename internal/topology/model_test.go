package topology

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchangeFromRecord(t *testing.T) {
	ex, err := ExchangeFromRecord(Record{
		"name":        "orders",
		"vhost":       "/",
		"type":        "topic",
		"durable":     true,
		"auto_delete": false,
		"internal":    false,
		"arguments":   map[string]any{"alternate-exchange": "unrouted"},
		"user_who_performed_action": "guest",
	})
	require.NoError(t, err)

	assert.Equal(t, "orders", ex.Name)
	assert.Equal(t, "topic", ex.Type)
	assert.True(t, ex.Durable)
	assert.Equal(t, "unrouted", ex.Arguments["alternate-exchange"])
	// Unknown fields survive opaquely.
	assert.Equal(t, "guest", ex.Extra["user_who_performed_action"])
}

func TestBindingFromRecordDefaultsDestinationType(t *testing.T) {
	b, err := BindingFromRecord(Record{
		"source":      "orders",
		"destination": "orders.created",
		"routing_key": "created",
	})
	require.NoError(t, err)
	assert.Equal(t, DestinationQueue, b.DestinationType)
}

func TestFromRecordsMissingIdentityFails(t *testing.T) {
	_, err := FromRecords([]Record{{"type": "direct"}}, nil, nil)
	var structural *StructuralError
	require.ErrorAs(t, err, &structural)
}

func TestModelJSONRoundTrip(t *testing.T) {
	q := Queue{
		Name:      "jobs",
		VHost:     "/",
		Durable:   true,
		Arguments: map[string]any{"x-message-ttl": float64(60000)},
		Extra:     map[string]any{"exclusive": false},
	}

	data, err := json.Marshal(q)
	require.NoError(t, err)

	var back Queue
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, q.Name, back.Name)
	assert.Equal(t, q.Arguments, back.Arguments)
	assert.Equal(t, q.Extra, back.Extra)
}

func TestQueueArgumentAccessors(t *testing.T) {
	q := Queue{Arguments: map[string]any{
		"x-message-ttl":          float64(60000),
		"x-dead-letter-exchange": "dlx",
	}}

	ttl, ok := q.MessageTTL()
	require.True(t, ok)
	assert.Equal(t, int64(60000), ttl)

	dlx, ok := q.DeadLetterExchange()
	require.True(t, ok)
	assert.Equal(t, "dlx", dlx)

	bare := Queue{Arguments: map[string]any{}}
	_, ok = bare.MessageTTL()
	assert.False(t, ok)
	_, ok = bare.DeadLetterExchange()
	assert.False(t, ok)
}

func TestKeys(t *testing.T) {
	name, err := ExchangeKey(Exchange{Name: "orders"})
	require.NoError(t, err)
	assert.Equal(t, "orders", name)

	_, err = ExchangeKey(Exchange{})
	assert.Error(t, err)

	key, err := BindingKey(Binding{
		Source:          "orders",
		Destination:     "orders.created",
		DestinationType: DestinationQueue,
		RoutingKey:      "created",
	})
	require.NoError(t, err)
	// Routing key is not part of binding identity.
	assert.Equal(t, "orders|orders.created|queue", key)
}
