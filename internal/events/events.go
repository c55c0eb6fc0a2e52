// Package events publishes domain events to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/skill-matcher/internal/logging"
	"github.com/nats-io/nats.go"
)

const (
	ApplicationScoredSubject = "applications.scored"

	defaultConnectTimeout = 5 * time.Second
)

// ApplicationScored is emitted after an application has been scored and stored.
type ApplicationScored struct {
	ApplicationID   uuid.UUID `json:"application_id"`
	JobID           uuid.UUID `json:"job_id"`
	UserID          uuid.UUID `json:"user_id"`
	SkillMatchScore int       `json:"skill_match_score"`
	ScoredAt        time.Time `json:"scored_at"`
}

type Publisher interface {
	PublishApplicationScored(ctx context.Context, event ApplicationScored) error
	Close()
}

// NopPublisher drops every event. It is used when NATS is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishApplicationScored(context.Context, ApplicationScored) error {
	return nil
}

func (NopPublisher) Close() {}

// conn is the subset of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	Close()
}

type natsPublisher struct {
	conn   conn
	logger *logging.Logger
}

// NewPublisher connects to NATS at url. An empty url returns a NopPublisher.
func NewPublisher(url string, logger *logging.Logger) (Publisher, error) {
	if url == "" {
		return NopPublisher{}, nil
	}

	opts := []nats.Option{
		nats.Name("skill-matcher"),
		nats.Timeout(defaultConnectTimeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &natsPublisher{conn: nc, logger: logger}, nil
}

func (p *natsPublisher) PublishApplicationScored(ctx context.Context, event ApplicationScored) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.conn.Publish(ApplicationScoredSubject, data); err != nil {
		p.logger.Error("failed to publish application scored event",
			"application_id", event.ApplicationID.String(),
			"error", err)
		return fmt.Errorf("failed to publish to %s: %w", ApplicationScoredSubject, err)
	}

	p.logger.Debug("published application scored event",
		"application_id", event.ApplicationID.String(),
		"subject", ApplicationScoredSubject)
	return nil
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
