// Package events publishes attempt lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	SubjectStarted  = "negotiator.attempt.started"
	SubjectFinished = "negotiator.attempt.finished"
)

type Started struct {
	AttemptID  string    `json:"attempt_id"`
	PlayerID   uint64    `json:"player_id"`
	ScenarioID string    `json:"scenario_id"`
	Day        string    `json:"day"`
	At         time.Time `json:"at"`
}

type Finished struct {
	AttemptID  string    `json:"attempt_id"`
	PlayerID   uint64    `json:"player_id"`
	Username   string    `json:"username"`
	ScenarioID string    `json:"scenario_id"`
	Day        string    `json:"day"`
	Success    bool      `json:"success"`
	Score      float64   `json:"score"`
	Turns      int       `json:"turns"`
	Hostages   int       `json:"hostages"`
	At         time.Time `json:"at"`
}

type Publisher interface {
	Started(ctx context.Context, ev Started) error
	Finished(ctx context.Context, ev Finished) error
	Close() error
}

// Noop drops every event. Used when NATS_URL is unset.
type Noop struct{}

func (Noop) Started(context.Context, Started) error   { return nil }
func (Noop) Finished(context.Context, Finished) error { return nil }
func (Noop) Close() error                             { return nil }

type NATSPublisher struct {
	nc      *nats.Conn
	publish func(subject string, data []byte) error
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("negotiator-lite"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[Events] NATS disconnected: %v", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSPublisher{nc: nc, publish: nc.Publish}, nil
}

func (p *NATSPublisher) Started(ctx context.Context, ev Started) error {
	return p.send(ctx, SubjectStarted, ev)
}

func (p *NATSPublisher) Finished(ctx context.Context, ev Finished) error {
	return p.send(ctx, SubjectFinished, ev)
}

func (p *NATSPublisher) send(ctx context.Context, subject string, ev any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.publish(subject, data)
}

func (p *NATSPublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}
