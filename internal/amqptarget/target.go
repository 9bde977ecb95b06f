// Package amqptarget implements a sync target over an AMQP 0-9-1 connection
// instead of the management HTTP API. Declares are natively idempotent: a
// declaration matching the existing resource is a no-op.
package amqptarget

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/topomq/topomq/internal/syncer"
	"github.com/topomq/topomq/internal/topology"
)

type Target struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects to the broker's AMQP listener. vhost defaults to "/" when
// empty.
func Dial(host, port, vhost string, username, password string) (*Target, error) {
	if vhost == "" {
		vhost = "/"
	}
	url := fmt.Sprintf("amqp://%s:%s@%s:%s%s", username, password, host, port, "/"+vhost)
	log.Debug().Str("addr", host+":"+port).Str("vhost", vhost).Msg("Connecting to broker over AMQP")

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return &Target{conn: conn, ch: ch}, nil
}

func (t *Target) Close() error {
	if t.ch != nil {
		t.ch.Close()
	}
	return t.conn.Close()
}

// declareErr converts a channel-level AMQP exception into a recoverable
// mutation error and reopens the channel, which the broker closes on any
// declare failure. Connection-level failures stay fatal.
func (t *Target) declareErr(err error) error {
	if err == nil {
		return nil
	}
	amqpErr, ok := err.(*amqp.Error)
	if !ok || t.conn.IsClosed() {
		return err
	}
	ch, chErr := t.conn.Channel()
	if chErr != nil {
		return fmt.Errorf("failed to reopen channel after declare error: %w", chErr)
	}
	t.ch = ch
	return &syncer.MutationError{Status: amqpErr.Code, Payload: amqpErr.Reason}
}

func (t *Target) CreateExchange(ctx context.Context, ex topology.Exchange) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.declareErr(t.ch.ExchangeDeclare(
		ex.Name,
		ex.Type,
		ex.Durable,
		ex.AutoDelete,
		ex.Internal,
		false, // noWait
		amqp.Table(ex.Arguments),
	))
}

func (t *Target) CreateQueue(ctx context.Context, q topology.Queue) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.ch.QueueDeclare(
		q.Name,
		q.Durable,
		q.AutoDelete,
		false, // exclusive
		false, // noWait
		amqp.Table(q.Arguments),
	)
	return t.declareErr(err)
}

func (t *Target) CreateBinding(ctx context.Context, b topology.Binding) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.declareErr(t.ch.QueueBind(
		b.Destination,
		b.RoutingKey,
		b.Source,
		false, // noWait
		amqp.Table(b.Arguments),
	))
}
