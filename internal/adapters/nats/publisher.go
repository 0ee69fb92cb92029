package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/seismeta/internal/core/domain"
)

// Subjects carried on the seismic streams.
const (
	SubjectSurveyRegistered = "seismic.survey.registered"
	SubjectBinGridPrefix    = "seismic.bingrid."
)

// Streams returns the JetStream streams the service relies on.
func Streams() []nats.StreamConfig {
	return []nats.StreamConfig{
		{
			Name:      "SEISMIC_SURVEYS",
			Subjects:  []string{"seismic.survey.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    7 * 24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "SEISMIC_BINGRIDS",
			Subjects:  []string{"seismic.bingrid.>"},
			Retention: nats.LimitsPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}
}

// BinGridSubject is the subject a survey's derived grid is published on.
// NATS tokens cannot contain dots or wildcards, so the survey ID is used
// rather than its path.
func BinGridSubject(surveyID string) string {
	return SubjectBinGridPrefix + surveyID
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	for _, cfg := range Streams() {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				conn.Close()
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishSurveyRegistered(ctx context.Context, survey *domain.Survey) error {
	data, err := json.Marshal(survey)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectSurveyRegistered, data, nats.Context(ctx))
	return err
}

func (p *Publisher) PublishBinGridDerived(ctx context.Context, event *domain.BinGridEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(BinGridSubject(event.SurveyID), data, nats.Context(ctx))
	return err
}

// Ping reports whether the connection is usable.
func (p *Publisher) Ping(ctx context.Context) error {
	if p.conn.Status() != nats.CONNECTED {
		return errors.New("nats not connected: " + p.conn.Status().String())
	}
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
