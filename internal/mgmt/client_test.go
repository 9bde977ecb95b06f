package mgmt

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topomq/topomq/internal/syncer"
	"github.com/topomq/topomq/internal/topology"
)

func testCreds() Credentials {
	return Credentials{Username: "guest", Password: "guest"}
}

func TestListExchanges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/exchanges", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "guest", user)
		assert.Equal(t, "guest", pass)

		json.NewEncoder(w).Encode([]map[string]any{
			{"name": "orders", "vhost": "/", "type": "topic", "durable": true},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testCreds())
	records, err := client.ListExchanges(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	name, _ := records[0].String("name")
	assert.Equal(t, "orders", name)
}

func TestListDecodesErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "not_authorised", "reason": "Login failed"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testCreds())
	_, err := client.ListQueues(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not_authorised")
	assert.Contains(t, err.Error(), "Login failed")
}

func TestListMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testCreds())
	_, err := client.ListBindings(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}

func TestCreateExchangeIdempotentStatuses(t *testing.T) {
	for _, status := range []int{http.StatusCreated, http.StatusNoContent} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/api/exchanges/%2F/orders", r.URL.EscapedPath())
			w.WriteHeader(status)
		}))

		client := NewClient(srv.URL, testCreds())
		err := client.CreateExchange(context.Background(), topology.Exchange{
			Name: "orders", VHost: "/", Type: "topic", Durable: true,
		})
		assert.NoError(t, err)
		srv.Close()
	}
}

func TestCreateQueueRejectionIsMutationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "bad_request", "reason": "inequivalent arg 'durable'",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testCreds())
	err := client.CreateQueue(context.Background(), topology.Queue{Name: "jobs", VHost: "/", Durable: true})

	var mut *syncer.MutationError
	require.ErrorAs(t, err, &mut)
	assert.Equal(t, http.StatusBadRequest, mut.Status)
	assert.Contains(t, mut.Payload, "inequivalent arg")
}

func TestCreateBindingPath(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotMethod = r.Method
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testCreds())
	err := client.CreateBinding(context.Background(), topology.Binding{
		Source: "orders", Destination: "orders.created",
		DestinationType: topology.DestinationQueue,
		RoutingKey:      "created", VHost: "/",
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/bindings/%2F/e/orders/q/orders.created", gotPath)
	assert.Equal(t, "created", gotBody["routing_key"])
}

func TestCreateUnreachableBrokerIsFatal(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", testCreds())
	err := client.CreateExchange(context.Background(), topology.Exchange{Name: "x", VHost: "/"})
	require.Error(t, err)

	var mut *syncer.MutationError
	assert.False(t, errors.As(err, &mut))
}
