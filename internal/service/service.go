package service

import (
	"context"
	"time"

	"stationwatch/internal/alert"
	"stationwatch/internal/logger"
	"stationwatch/internal/metrics"
	"stationwatch/internal/models"
	"stationwatch/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// StationAPI is the upstream collaborator the poller consumes: the account's
// station list and per-station diagnostics.
type StationAPI interface {
	Stations(ctx context.Context, token string) ([]models.Station, error)
	Diagnostics(ctx context.Context, token string, stationID int) ([]models.DeviceDiagnostic, error)
}

// Poller runs poll cycles and remembers the outcome of the last one.
type Poller interface {
	RunCycle(ctx context.Context) models.RunSummary
	LastRun() (models.RunSummary, bool)
}

// EventLog exposes the persisted transition history with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.StationEvent, error)
}

// Scheduler runs the background poll loop. Stop via context cancellation
// in main() for graceful shutdown.
type Scheduler interface {
	Run(ctx context.Context, tick time.Duration)
}

// AccountConfig describes one monitored account.
type AccountConfig struct {
	Name     string
	Token    string
	Mentions []string
}

// Config carries the poller's tunables from the config file.
type Config struct {
	Accounts []AccountConfig
	JobName  string
	Workers  int
}

// LogFilter supports history filtering by time range and category.
type LogFilter struct {
	From     time.Time // inclusive; zero means no lower bound
	To       time.Time // inclusive; zero means no upper bound
	Category string    // "", "NEW_FAILURE", "RECOVERED", "NEWLY_OFFLINE", ...
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Poller
	EventLog
	Scheduler
	Authorization

	// Events fans emitted transitions out to live subscribers (websocket).
	Events *EventHub
}

// NewService wires repositories and external collaborators into concrete
// services.
func NewService(
	repos *repository.Repository,
	api StationAPI,
	notifier alert.Notifier,
	sender metrics.Sender,
	cfg Config,
	signingKey string,
	log *logger.Logger,
) *Service {
	hub := NewEventHub()
	poller := NewPollerService(repos, api, notifier, sender, hub, cfg, log)
	return &Service{
		Poller:        poller,
		EventLog:      NewEventLogService(repos.EventRepo),
		Scheduler:     NewSchedulerService(poller, log),
		Authorization: NewAuthService(repos.Auth, signingKey),
		Events:        hub,
	}
}
