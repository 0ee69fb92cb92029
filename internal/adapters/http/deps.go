package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/seismeta/internal/core/usecases"
)

// Pinger is a backing service that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Surveys  *usecases.SurveyService
	BinGrids *usecases.BinGridService
	NATS     *nats.Conn
	DB       Pinger
	Cache    Pinger
}
