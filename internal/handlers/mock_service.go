package handlers

import (
	"context"
	"time"

	"stationwatch/internal/logger"
	"stationwatch/internal/models"
	"stationwatch/internal/service"
)

// Test doubles for the service layer, shared across handler tests.

type mockPoller struct {
	RunCycleFn func(ctx context.Context) models.RunSummary
	LastRunFn  func() (models.RunSummary, bool)
}

func (m *mockPoller) RunCycle(ctx context.Context) models.RunSummary {
	if m.RunCycleFn != nil {
		return m.RunCycleFn(ctx)
	}
	return models.RunSummary{}
}

func (m *mockPoller) LastRun() (models.RunSummary, bool) {
	if m.LastRunFn != nil {
		return m.LastRunFn()
	}
	return models.RunSummary{}, false
}

type mockEventLog struct {
	ListFn func(ctx context.Context, f service.LogFilter) ([]models.StationEvent, error)

	gotFilter service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.StationEvent, error) {
	m.gotFilter = f
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, nil
}

type mockAuth struct {
	SignUpFn        func(username, password string) (int, error)
	GenerateTokenFn func(username, password string) (string, error)
	ParseTokenFn    func(accessToken string) (int, error)
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	if m.SignUpFn != nil {
		return m.SignUpFn(username, password)
	}
	return 0, nil
}

func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(username, password)
	}
	return "", nil
}

func (m *mockAuth) ParseToken(accessToken string) (int, error) {
	if m.ParseTokenFn != nil {
		return m.ParseTokenFn(accessToken)
	}
	return 1, nil
}

type mockScheduler struct{}

func (m *mockScheduler) Run(ctx context.Context, tick time.Duration) {}

// newTestHandler assembles a Handler over the given doubles; nil doubles
// get permissive defaults.
func newTestHandler(poller *mockPoller, events *mockEventLog, auth *mockAuth) *Handler {
	if poller == nil {
		poller = &mockPoller{}
	}
	if events == nil {
		events = &mockEventLog{}
	}
	if auth == nil {
		auth = &mockAuth{}
	}
	svc := &service.Service{
		Poller:        poller,
		EventLog:      events,
		Scheduler:     &mockScheduler{},
		Authorization: auth,
		Events:        service.NewEventHub(),
	}
	return NewHandler(svc, logger.Get(logger.InfoLevel))
}
