package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"stationwatch/internal/logger"
	"stationwatch/internal/models"
	"stationwatch/internal/repository"
)

// --- stubs for the poller's collaborators ---

type snapshotStoreStub struct {
	mu      sync.Mutex
	images  map[string]map[string]models.StationSnapshot
	loadErr error
	saveErr error
	saved   map[string]map[string]models.StationSnapshot
}

func newSnapshotStoreStub() *snapshotStoreStub {
	return &snapshotStoreStub{
		images: make(map[string]map[string]models.StationSnapshot),
		saved:  make(map[string]map[string]models.StationSnapshot),
	}
}

func (s *snapshotStoreStub) Load(ctx context.Context, account string) (map[string]models.StationSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	image := make(map[string]models.StationSnapshot)
	for k, v := range s.images[account] {
		image[k] = v
	}
	return image, nil
}

func (s *snapshotStoreStub) Save(ctx context.Context, account string, image map[string]models.StationSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved[account] = image
	return nil
}

type runLockStub struct {
	held       bool
	acquireErr error
	releases   int
}

func (l *runLockStub) Acquire(ctx context.Context, account string) (bool, error) {
	if l.acquireErr != nil {
		return false, l.acquireErr
	}
	return !l.held, nil
}

func (l *runLockStub) Release(ctx context.Context, account string) error {
	l.releases++
	return nil
}

type eventRepoStub struct {
	mu       sync.Mutex
	appended []models.StationEvent
}

func (r *eventRepoStub) Append(ctx context.Context, e models.StationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appended = append(r.appended, e)
	return nil
}

func (r *eventRepoStub) List(ctx context.Context, from, to time.Time, category string) ([]models.StationEvent, error) {
	return nil, nil
}

type stationAPIStub struct {
	stations    []models.Station
	stationsErr error
	diags       map[int][]models.DeviceDiagnostic
	diagsErr    map[int]error
}

func (a *stationAPIStub) Stations(ctx context.Context, token string) ([]models.Station, error) {
	return a.stations, a.stationsErr
}

func (a *stationAPIStub) Diagnostics(ctx context.Context, token string, stationID int) ([]models.DeviceDiagnostic, error) {
	if err := a.diagsErr[stationID]; err != nil {
		return nil, err
	}
	return a.diags[stationID], nil
}

type notifierStub struct {
	mu      sync.Mutex
	sent    []string
	sendErr error
}

func (n *notifierStub) Send(ctx context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sendErr != nil {
		return n.sendErr
	}
	n.sent = append(n.sent, text)
	return nil
}

type senderStub struct {
	mu      sync.Mutex
	batches [][]string
}

func (s *senderStub) Publish(ctx context.Context, lines []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, lines)
	return nil
}

type pollerFixture struct {
	snapshots *snapshotStoreStub
	lock      *runLockStub
	events    *eventRepoStub
	api       *stationAPIStub
	notifier  *notifierStub
	sender    *senderStub
	poller    *PollerService
}

func newPollerFixture(api *stationAPIStub) *pollerFixture {
	f := &pollerFixture{
		snapshots: newSnapshotStoreStub(),
		lock:      &runLockStub{},
		events:    &eventRepoStub{},
		api:       api,
		notifier:  &notifierStub{},
		sender:    &senderStub{},
	}
	repos := &repository.Repository{
		Snapshots: f.snapshots,
		Lock:      f.lock,
		EventRepo: f.events,
	}
	cfg := Config{
		Accounts: []AccountConfig{{Name: "Acme", Token: "tok", Mentions: []string{"U123"}}},
		JobName:  "stationwatch",
		Workers:  2,
	}
	f.poller = NewPollerService(repos, api, f.notifier, f.sender, NewEventHub(), cfg, logger.Get(logger.InfoLevel))
	return f
}

// --- tests ---

func TestRunCycle_NewFailureAlertsPerDevice(t *testing.T) {
	api := &stationAPIStub{
		stations: []models.Station{{StationID: 1001, Name: "Rooftop", State: 1}},
		diags: map[int][]models.DeviceDiagnostic{
			1001: {
				{DeviceID: 1, SerialNumber: "ST-00000001", SensorStatus: 0x40}, // wind failed
				{DeviceID: 2, SerialNumber: "SK-00000002", SensorStatus: 0x80}, // precip failed
				{DeviceID: 3, SerialNumber: "HB-00000003", SensorStatus: 0xFF}, // heartbeat, ignored
			},
		},
	}
	f := newPollerFixture(api)

	run := f.poller.RunCycle(context.Background())

	if len(run.Accounts) != 1 {
		t.Fatalf("want 1 account summary, got %d", len(run.Accounts))
	}
	acct := run.Accounts[0]
	if acct.Online != 1 || acct.Offline != 0 || acct.Stations != 1 {
		t.Errorf("counts: %+v", acct)
	}
	if acct.TotalFailures != 2 {
		t.Errorf("total failures: want 2, got %d", acct.TotalFailures)
	}

	// one message per device carrying new failures
	if len(f.notifier.sent) != 2 {
		t.Fatalf("want 2 alert messages, got %d: %v", len(f.notifier.sent), f.notifier.sent)
	}
	joined := strings.Join(f.notifier.sent, "\n")
	if !strings.Contains(joined, "wind") || !strings.Contains(joined, "precip") {
		t.Errorf("alerts must name both sensors:\n%s", joined)
	}
	if !strings.Contains(f.notifier.sent[0], "<@U123>:warning: Acme Station") {
		t.Errorf("unexpected alert prefix: %q", f.notifier.sent[0])
	}

	// updated snapshot persisted
	saved := f.snapshots.saved["Acme"]
	if saved == nil {
		t.Fatal("snapshot image was not saved")
	}
	snap := saved["1001"]
	if snap.Offline || len(snap.Failures) != 2 {
		t.Errorf("saved snapshot: %+v", snap)
	}

	// transition recorded and metrics published
	if len(f.events.appended) != 1 {
		t.Errorf("want 1 recorded event, got %d", len(f.events.appended))
	}
	if len(f.sender.batches) != 1 {
		t.Errorf("want 1 metrics batch, got %d", len(f.sender.batches))
	}
}

// a second cycle over unchanged data must stay silent
func TestRunCycle_IdempotentAcrossCycles(t *testing.T) {
	api := &stationAPIStub{
		stations: []models.Station{{StationID: 1001, Name: "Rooftop", State: 1}},
		diags: map[int][]models.DeviceDiagnostic{
			1001: {{DeviceID: 1, SerialNumber: "ST-00000001", SensorStatus: 0x40}},
		},
	}
	f := newPollerFixture(api)

	f.poller.RunCycle(context.Background())
	firstAlerts := len(f.notifier.sent)

	// feed the saved image back as the next cycle's previous snapshot
	f.snapshots.images["Acme"] = f.snapshots.saved["Acme"]
	f.poller.RunCycle(context.Background())

	if len(f.notifier.sent) != firstAlerts {
		t.Fatalf("unchanged data re-alerted: %d then %d messages", firstAlerts, len(f.notifier.sent))
	}
}

func TestRunCycle_OfflineBeatsSensorFailures(t *testing.T) {
	api := &stationAPIStub{
		stations: []models.Station{{StationID: 1001, Name: "Rooftop", State: 0}},
		diags: map[int][]models.DeviceDiagnostic{
			1001: {{DeviceID: 1, SerialNumber: "ST-00000001", SensorStatus: 0x40 | 0x80}},
		},
	}
	f := newPollerFixture(api)

	f.poller.RunCycle(context.Background())

	if len(f.notifier.sent) != 1 {
		t.Fatalf("want exactly 1 offline alert, got %d: %v", len(f.notifier.sent), f.notifier.sent)
	}
	msg := f.notifier.sent[0]
	if !strings.Contains(msg, "*OFFLINE* and has sensor failures: precip, wind") {
		t.Errorf("offline alert must carry the full failure set, got %q", msg)
	}

	snap := f.snapshots.saved["Acme"]["1001"]
	if !snap.Offline || len(snap.Failures) != 2 {
		t.Errorf("offline snapshot must retain failures: %+v", snap)
	}
}

func TestRunCycle_Recovery(t *testing.T) {
	api := &stationAPIStub{
		stations: []models.Station{{StationID: 1001, Name: "Rooftop", State: 1}},
	}
	f := newPollerFixture(api)
	f.snapshots.images["Acme"] = map[string]models.StationSnapshot{
		"1001": {Offline: true, Failures: []string{"wind"}},
	}

	f.poller.RunCycle(context.Background())

	if len(f.notifier.sent) != 1 || !strings.Contains(f.notifier.sent[0], "*RECOVERED*") {
		t.Fatalf("want recovery alert, got %v", f.notifier.sent)
	}
	snap := f.snapshots.saved["Acme"]["1001"]
	if snap.Offline || snap.HasFailures() {
		t.Errorf("recovery must clear the snapshot entirely: %+v", snap)
	}
}

func TestRunCycle_StationListFetchFailure(t *testing.T) {
	api := &stationAPIStub{stationsErr: errors.New("upstream down")}
	f := newPollerFixture(api)

	run := f.poller.RunCycle(context.Background())

	acct := run.Accounts[0]
	if !acct.Degraded {
		t.Error("list-fetch failure must flag the account degraded")
	}
	if acct.Online != 0 || acct.Offline != 0 || acct.Stations != 0 {
		t.Errorf("degraded account must contribute zero counts: %+v", acct)
	}
	if len(f.notifier.sent) != 0 {
		t.Errorf("no alerts on degraded account, got %v", f.notifier.sent)
	}
	if f.snapshots.saved["Acme"] != nil {
		t.Error("degraded account must not overwrite its snapshot cache")
	}
}

func TestRunCycle_DiagnosticsFailureDegradesStationOnly(t *testing.T) {
	api := &stationAPIStub{
		stations: []models.Station{
			{StationID: 1001, Name: "Rooftop", State: 1},
			{StationID: 1002, Name: "Dock", State: 0},
		},
		diagsErr: map[int]error{1001: errors.New("timeout")},
	}
	f := newPollerFixture(api)

	run := f.poller.RunCycle(context.Background())

	acct := run.Accounts[0]
	if acct.Online != 1 || acct.Offline != 1 {
		t.Errorf("liveness must still govern classification: %+v", acct)
	}
	// station 1001 degrades to no known failures; 1002 newly offline alert
	if len(f.notifier.sent) != 1 || !strings.Contains(f.notifier.sent[0], "*OFFLINE*") {
		t.Errorf("want only the offline alert, got %v", f.notifier.sent)
	}
}

func TestRunCycle_CacheReadFailureStartsEmpty(t *testing.T) {
	api := &stationAPIStub{
		stations: []models.Station{{StationID: 1001, Name: "Rooftop", State: 0}},
	}
	f := newPollerFixture(api)
	f.snapshots.loadErr = errors.New("bucket gone")

	f.poller.RunCycle(context.Background())

	// previously-unknown station: the offline alert fires (possibly again)
	if len(f.notifier.sent) != 1 {
		t.Fatalf("want 1 alert from empty map, got %d", len(f.notifier.sent))
	}
}

func TestRunCycle_CacheWriteFailureDoesNotBlockAlerts(t *testing.T) {
	api := &stationAPIStub{
		stations: []models.Station{{StationID: 1001, Name: "Rooftop", State: 0}},
	}
	f := newPollerFixture(api)
	f.snapshots.saveErr = errors.New("bucket full")

	run := f.poller.RunCycle(context.Background())

	if len(f.notifier.sent) != 1 {
		t.Errorf("alerts must fire despite write failure, got %d", len(f.notifier.sent))
	}
	if len(f.sender.batches) != 1 {
		t.Errorf("metrics must publish despite write failure, got %d batches", len(f.sender.batches))
	}
	if run.Accounts[0].Degraded {
		t.Error("write failure alone must not mark the account degraded")
	}
}

func TestRunCycle_AlertDeliveryFailureContinues(t *testing.T) {
	api := &stationAPIStub{
		stations: []models.Station{
			{StationID: 1001, Name: "Rooftop", State: 0},
			{StationID: 1002, Name: "Dock", State: 0},
		},
	}
	f := newPollerFixture(api)
	f.notifier.sendErr = errors.New("webhook down")

	run := f.poller.RunCycle(context.Background())

	acct := run.Accounts[0]
	if acct.Alerts != 0 {
		t.Errorf("failed sends must not count as delivered: %d", acct.Alerts)
	}
	// both stations still evaluated and persisted
	if len(f.snapshots.saved["Acme"]) != 2 {
		t.Errorf("want both snapshots saved, got %v", f.snapshots.saved["Acme"])
	}
}

func TestRunCycle_SkipsWhenLockHeld(t *testing.T) {
	api := &stationAPIStub{
		stations: []models.Station{{StationID: 1001, Name: "Rooftop", State: 0}},
	}
	f := newPollerFixture(api)
	f.lock.held = true

	run := f.poller.RunCycle(context.Background())

	if !run.Accounts[0].Skipped {
		t.Error("held lock must skip the account")
	}
	if len(f.notifier.sent) != 0 || f.snapshots.saved["Acme"] != nil {
		t.Error("skipped account must not alert or persist")
	}
	if f.lock.releases != 0 {
		t.Error("must not release a lock it never acquired")
	}
}

func TestLastRun(t *testing.T) {
	api := &stationAPIStub{stations: []models.Station{}}
	f := newPollerFixture(api)

	if _, ok := f.poller.LastRun(); ok {
		t.Fatal("LastRun must report false before any cycle")
	}
	f.poller.RunCycle(context.Background())
	run, ok := f.poller.LastRun()
	if !ok {
		t.Fatal("LastRun must report true after a cycle")
	}
	if len(run.Accounts) != 1 {
		t.Errorf("want 1 account in last run, got %d", len(run.Accounts))
	}
}
