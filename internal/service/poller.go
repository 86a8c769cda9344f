package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"stationwatch/internal/alert"
	"stationwatch/internal/logger"
	"stationwatch/internal/metrics"
	"stationwatch/internal/models"
	"stationwatch/internal/repository"
	"stationwatch/internal/snapshot"
	"stationwatch/internal/status"
	"stationwatch/internal/transition"
)

const defaultWorkers = 4

// PollerService is the run coordinator: it walks every configured account,
// diffs each station against the previous cycle's snapshot and hands the
// resulting transitions to the alert, metrics and persistence collaborators.
//
// Accounts are independent and processed concurrently under a bounded worker
// pool; each account's snapshot map is owned by the goroutine processing it.
// Stations within one account are walked sequentially against the snapshot
// read at the start of that same cycle.
type PollerService struct {
	snapshots repository.SnapshotStore
	lock      repository.RunLock
	events    repository.EventRepo
	api       StationAPI
	notifier  alert.Notifier
	sender    metrics.Sender
	hub       *EventHub
	log       *logger.Logger

	accounts []AccountConfig
	jobName  string
	workers  int

	mu      sync.Mutex
	lastRun *models.RunSummary
}

func NewPollerService(
	repos *repository.Repository,
	api StationAPI,
	notifier alert.Notifier,
	sender metrics.Sender,
	hub *EventHub,
	cfg Config,
	log *logger.Logger,
) *PollerService {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &PollerService{
		snapshots: repos.Snapshots,
		lock:      repos.Lock,
		events:    repos.EventRepo,
		api:       api,
		notifier:  notifier,
		sender:    sender,
		hub:       hub,
		log:       log,
		accounts:  cfg.Accounts,
		jobName:   cfg.JobName,
		workers:   workers,
	}
}

var _ Poller = (*PollerService)(nil)

// RunCycle polls every account once. No account failure is fatal: accounts
// and stations are isolated so one bad fetch cannot mask the rest.
func (s *PollerService) RunCycle(ctx context.Context) models.RunSummary {
	run := models.RunSummary{
		StartedAt: time.Now().UTC(),
		Accounts:  make([]models.AccountSummary, len(s.accounts)),
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)
	for i, acct := range s.accounts {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, acct AccountConfig) {
			defer wg.Done()
			defer func() { <-sem }()
			run.Accounts[i] = s.processAccount(ctx, acct)
		}(i, acct)
	}
	wg.Wait()

	run.FinishedAt = time.Now().UTC()

	s.mu.Lock()
	s.lastRun = &run
	s.mu.Unlock()

	return run
}

// LastRun returns the most recent cycle summary, if any cycle has finished.
func (s *PollerService) LastRun() (models.RunSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun == nil {
		return models.RunSummary{}, false
	}
	return *s.lastRun, true
}

// processAccount runs one account's cycle end to end: lock, load snapshot,
// fetch stations, evaluate transitions, notify, persist, publish metrics.
func (s *PollerService) processAccount(ctx context.Context, acct AccountConfig) models.AccountSummary {
	summary := models.AccountSummary{
		Account:        acct.Name,
		SensorFailures: make(map[string]int),
	}

	acquired, err := s.lock.Acquire(ctx, acct.Name)
	if err != nil {
		// lock backend down: carry on unguarded rather than blind the fleet
		s.log.Errorw("cycle lock unavailable, proceeding without single-flight",
			"account", acct.Name, "err", err)
	} else if !acquired {
		s.log.Infow("previous cycle still in flight, skipping", "account", acct.Name)
		summary.Skipped = true
		return summary
	} else {
		defer func() {
			if err := s.lock.Release(ctx, acct.Name); err != nil {
				s.log.Errorw("failed to release cycle lock", "account", acct.Name, "err", err)
			}
		}()
	}

	image, err := s.snapshots.Load(ctx, acct.Name)
	if err != nil {
		// every station becomes previously-unknown; duplicate alerts for
		// one cycle are the accepted degraded behavior
		s.log.Errorw("snapshot cache read failed, starting from empty map",
			"account", acct.Name, "err", err)
		image = make(map[string]models.StationSnapshot)
	}

	stations, err := s.api.Stations(ctx, acct.Token)
	if err != nil {
		// ambiguous outcome: indistinguishable from "all clear", so the
		// summary is flagged degraded and contributes zero counts
		s.log.Errorw("station list fetch failed, skipping account this cycle",
			"account", acct.Name, "err", err)
		summary.Degraded = true
		s.publishMetrics(ctx, summary)
		return summary
	}

	mentions := alert.Mentions(acct.Mentions)
	newImage := make(map[string]models.StationSnapshot, len(stations))

	for _, station := range stations {
		results, failures := s.stationHealth(ctx, acct, station)

		key := strconv.Itoa(station.StationID)
		out := transition.Evaluate(image[key], station.Online(), failures)
		newImage[key] = out.Snapshot

		if station.Online() {
			summary.Online++
		} else {
			summary.Offline++
		}
		for _, sensor := range out.AllSensors {
			summary.SensorFailures[sensor]++
			summary.TotalFailures++
		}

		event := models.TransitionEvent{
			Account:     acct.Name,
			StationID:   station.StationID,
			StationName: station.Name,
			Category:    out.Category,
			NewSensors:  out.NewSensors,
			AllSensors:  out.AllSensors,
		}
		if !event.Notifiable() {
			continue
		}
		summary.Transitions++

		// notify before persisting the snapshot: a failed cache write then
		// re-fires the same alerts next cycle (at-least-once delivery)
		summary.Alerts += s.notify(ctx, acct.Name, mentions, station, out, results)
		s.record(ctx, event)
		s.hub.Publish(event)
	}
	summary.Stations = len(stations)

	if err := s.snapshots.Save(ctx, acct.Name, newImage); err != nil {
		s.log.Errorw("snapshot cache write failed; next cycle may re-alert",
			"account", acct.Name, "err", err)
	}

	s.publishMetrics(ctx, summary)
	return summary
}

// stationHealth fetches and decodes one station's diagnostics. A failed
// fetch degrades to "no diagnostics this cycle": liveness still governs
// the offline classification.
func (s *PollerService) stationHealth(ctx context.Context, acct AccountConfig, station models.Station) ([]models.DeviceStatusResult, []string) {
	diags, err := s.api.Diagnostics(ctx, acct.Token, station.StationID)
	if err != nil {
		s.log.Errorw("diagnostics fetch failed, treating as empty",
			"account", acct.Name, "station", station.StationID, "err", err)
		diags = nil
	}
	results := status.Aggregate(diags)
	return results, status.FailureSet(results)
}

// notify delivers the alert(s) for one notifiable transition and returns
// how many messages were sent. Delivery failures are logged per message and
// never abort the cycle.
func (s *PollerService) notify(
	ctx context.Context,
	account, mentions string,
	station models.Station,
	out transition.Outcome,
	results []models.DeviceStatusResult,
) int {
	link := alert.StationLink(station.StationID, station.Name)

	var messages []string
	switch out.Category {
	case models.TransitionNewlyOffline:
		messages = append(messages, alert.NewlyOffline(mentions, account, link, out.AllSensors))
	case models.TransitionRecovered:
		messages = append(messages, alert.Recovered(account, link))
	case models.TransitionNewFailure:
		// one message per device carrying new failures
		for _, r := range results {
			if r.Classification != models.ClassFailure {
				continue
			}
			if sensors := intersect(r.FailedSensors(), out.NewSensors); len(sensors) > 0 {
				messages = append(messages, alert.SensorFailure(mentions, account, link, sensors))
			}
		}
	}

	sent := 0
	for _, msg := range messages {
		if err := s.notifier.Send(ctx, msg); err != nil {
			s.log.Errorw("alert delivery failed", "account", account,
				"station", station.StationID, "err", err)
			continue
		}
		sent++
	}
	return sent
}

// record persists one transition to the event history; failures are logged
// and swallowed — history is best effort.
func (s *PollerService) record(ctx context.Context, event models.TransitionEvent) {
	sensors := event.NewSensors
	if len(sensors) == 0 {
		sensors = event.AllSensors
	}
	e := models.StationEvent{
		Account:     event.Account,
		StationID:   event.StationID,
		Category:    event.Category,
		Sensors:     sensors,
		Description: describeTransition(event),
	}
	if err := s.events.Append(ctx, e); err != nil {
		s.log.Errorw("failed to record transition event",
			"account", event.Account, "station", event.StationID, "err", err)
	}
}

func (s *PollerService) publishMetrics(ctx context.Context, summary models.AccountSummary) {
	lines := metrics.CycleLines(s.jobName, time.Now().Unix(), summary)
	if err := s.sender.Publish(ctx, lines); err != nil {
		s.log.Errorw("metrics delivery failed", "account", summary.Account, "err", err)
	}
}

// intersect returns the labels present in both sets, sorted.
func intersect(labels, allowed []string) []string {
	allow := make(map[string]bool, len(allowed))
	for _, l := range allowed {
		allow[l] = true
	}
	var out []string
	for _, l := range labels {
		if allow[l] {
			out = append(out, l)
		}
	}
	return snapshot.NormalizeSet(out)
}

func describeTransition(event models.TransitionEvent) string {
	switch event.Category {
	case models.TransitionNewlyOffline:
		if len(event.AllSensors) > 0 {
			return fmt.Sprintf("station %d (%s) went offline with sensor failures: %s",
				event.StationID, event.StationName, strings.Join(event.AllSensors, ", "))
		}
		return fmt.Sprintf("station %d (%s) went offline", event.StationID, event.StationName)
	case models.TransitionRecovered:
		return fmt.Sprintf("station %d (%s) recovered", event.StationID, event.StationName)
	case models.TransitionNewFailure:
		return fmt.Sprintf("station %d (%s) has new sensor failures: %s",
			event.StationID, event.StationName, strings.Join(event.NewSensors, ", "))
	default:
		return fmt.Sprintf("station %d (%s): %s", event.StationID, event.StationName, event.Category)
	}
}
