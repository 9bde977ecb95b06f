// Package syncer replays a source topology onto a target broker through
// idempotent create calls. Replay is best-effort: individual create failures
// are collected, not fatal.
package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/topomq/topomq/internal/topology"
)

// Target is a broker handle that can create topology resources. A nil return
// means created or already present (idempotent no-op). A *MutationError
// return means the broker rejected this record; replay records it and moves
// on. Any other error is a transport failure and aborts the run.
type Target interface {
	CreateExchange(ctx context.Context, ex topology.Exchange) error
	CreateQueue(ctx context.Context, q topology.Queue) error
	CreateBinding(ctx context.Context, b topology.Binding) error
}

// MutationError is a non-success broker response to one create call.
type MutationError struct {
	Status  int
	Payload string
}

func (e *MutationError) Error() string {
	if e.Payload == "" {
		return fmt.Sprintf("broker rejected the request (status %d)", e.Status)
	}
	return fmt.Sprintf("broker rejected the request (status %d): %s", e.Status, e.Payload)
}

// Failure is one recorded create failure, identifying the request target and
// carrying the broker's error payload.
type Failure struct {
	Kind   string `json:"kind"`
	VHost  string `json:"vhost"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Result is the aggregated outcome of one replay run. Failures are ordered
// by entity identity in replay order, never by completion order.
type Result struct {
	Failures []Failure `json:"failures"`
}

// Synced reports whether every create call succeeded.
func (r Result) Synced() bool {
	return len(r.Failures) == 0
}

// errExchangeBinding marks the one known unsupported replay case.
var errExchangeBinding = errors.New("exchange-to-exchange bindings are not supported")

// Replay issues one create call per exchange, then per queue, then per
// binding. The tier order is mandatory: bindings reference exchanges and
// queues that must already exist on the target.
func Replay(ctx context.Context, tp *topology.Topology, target Target) (Result, error) {
	res := Result{Failures: make([]Failure, 0)}

	for _, ex := range tp.Exchanges {
		if err := record(&res, "exchange", ex.VHost, ex.Name, target.CreateExchange(ctx, ex)); err != nil {
			return res, err
		}
	}
	for _, q := range tp.Queues {
		if err := record(&res, "queue", q.VHost, q.Name, target.CreateQueue(ctx, q)); err != nil {
			return res, err
		}
	}
	for _, b := range tp.Bindings {
		var err error
		if b.DestinationType == topology.DestinationExchange {
			err = errExchangeBinding
		} else {
			err = target.CreateBinding(ctx, b)
		}
		name := b.Source + " -> " + b.Destination
		if err := record(&res, "binding", b.VHost, name, err); err != nil {
			return res, err
		}
	}

	return res, nil
}

func record(res *Result, kind, vhost, name string, err error) error {
	if err == nil {
		return nil
	}
	var mut *MutationError
	if errors.As(err, &mut) || errors.Is(err, errExchangeBinding) {
		log.Warn().Str("kind", kind).Str("vhost", vhost).Str("name", name).
			Err(err).Msg("Create call failed, continuing")
		res.Failures = append(res.Failures, Failure{
			Kind:   kind,
			VHost:  vhost,
			Name:   name,
			Reason: err.Error(),
		})
		return nil
	}
	return fmt.Errorf("failed to create %s %q in vhost %q: %w", kind, name, vhost, err)
}
