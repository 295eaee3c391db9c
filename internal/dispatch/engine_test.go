package dispatch

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/example/ride-dispatch/internal/apierr"
	"github.com/example/ride-dispatch/internal/config"
	"github.com/example/ride-dispatch/internal/models"
	"github.com/example/ride-dispatch/internal/room"
	"github.com/example/ride-dispatch/internal/storage"
	"github.com/example/ride-dispatch/internal/stream"
)

// Offsets chosen against the ~6.67 km default pickup radius: one degree of
// latitude is ~111.19 km.
const (
	latPerKm  = 1.0 / 111.19
	nearLat   = 3 * latPerKm  // ~3 km away
	farLat    = 12 * latPerKm // ~12 km away
	roomName  = "testroom"
	driverOne = "driver-1"
	riderOne  = "rider-1"
)

type fakeStore struct {
	mu       sync.Mutex
	drivers  map[string]storage.OnlineDriver
	requests map[string]storage.RideRequestRow
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		drivers:  make(map[string]storage.OnlineDriver),
		requests: make(map[string]storage.RideRequestRow),
	}
}

func driverKey(room, id string) string { return room + "/" + id }

func (f *fakeStore) SaveDriver(room string, d *models.Driver) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drivers[driverKey(room, d.ID)] = storage.OnlineDriver{Room: room, DriverID: d.ID}
	return nil
}

func (f *fakeStore) DeleteDriver(room, driverID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.drivers, driverKey(room, driverID))
	return nil
}

func (f *fakeStore) SaveRequest(room string, r *models.RideRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[r.ID] = storage.RideRequestRow{ID: r.ID, Room: room, Status: string(r.Status)}
	return nil
}

func (f *fakeStore) DeleteRequest(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.requests, id)
	return nil
}

func (f *fakeStore) LoadDrivers() ([]storage.OnlineDriver, error)    { return nil, nil }
func (f *fakeStore) LoadRequests() ([]storage.RideRequestRow, error) { return nil, nil }

type sinkEvent struct {
	Name    string
	Payload any
}

type memSink struct {
	mu     sync.Mutex
	events []sinkEvent
}

func (s *memSink) Send(event string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, sinkEvent{Name: event, Payload: payload})
	return nil
}

func (s *memSink) Close() error { return nil }

func (s *memSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Name
	}
	return out
}

func (s *memSink) count(event string) int {
	n := 0
	for _, name := range s.names() {
		if name == event {
			n++
		}
	}
	return n
}

func testDispatchConfig() config.Dispatch {
	return config.Dispatch{
		MaxPickupMinutes:    10,
		AssumedSpeedKmh:     40,
		MaxPickupDistanceKm: 40.0 * 10 / 60,
		MaxActivePerDriver:  3,
		RequestTTL:          5 * time.Minute,
		AssignedTTL:         60 * time.Minute,
		DriverStale:         45 * time.Second,
		SweepInterval:       5 * time.Second,
		BroadcastMinGap:     2 * time.Second,
		BroadcastMinMoveM:   15,
	}
}

// testEngine wires an engine over a fake store with a controllable clock.
type testEngine struct {
	*Engine
	store *fakeStore
	clock time.Time
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()
	te := &testEngine{
		store: newFakeStore(),
		clock: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	te.Engine = NewEngine(testDispatchConfig(), room.NewRegistry(), te.store, nil, log)
	te.Engine.now = func() time.Time { return te.clock }
	return te
}

func (te *testEngine) advance(d time.Duration) { te.clock = te.clock.Add(d) }

func (te *testEngine) onlineDriver(t *testing.T, id, phone string, lat, lng float64) {
	t.Helper()
	if _, err := te.StartDriver(roomName, id, "Dana", phone); err != nil {
		t.Fatalf("StartDriver(%s): %v", id, err)
	}
	if _, err := te.UpdateDriver(roomName, id, "", "", models.Position{Lat: lat, Lng: lng}); err != nil {
		t.Fatalf("UpdateDriver(%s): %v", id, err)
	}
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected coded error, got %v", err)
	}
	return ae.Code
}

func riderParams(riderID, phone string, lat float64, target string) CreateRequestParams {
	return CreateRequestParams{
		RiderID:        riderID,
		Name:           "Riya",
		Phone:          phone,
		Lat:            lat,
		Lng:            0,
		TargetDriverID: target,
	}
}

func TestCreateRequestMatchesNearest(t *testing.T) {
	te := newTestEngine(t)
	te.onlineDriver(t, "far-driver", "5550000001", 5*latPerKm, 0)
	te.onlineDriver(t, driverOne, "5550000002", nearLat, 0)

	req, err := te.CreateRequest(roomName, riderParams(riderOne, "5551110001", 0, ""))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if req.TargetDriverID != driverOne {
		t.Fatalf("matched %q, want nearest %q", req.TargetDriverID, driverOne)
	}
	if req.Status != models.StatusPending {
		t.Fatalf("status = %q, want pending", req.Status)
	}
}

func TestCreateRequestIdempotentWhilePending(t *testing.T) {
	te := newTestEngine(t)
	te.onlineDriver(t, driverOne, "5550000001", nearLat, 0)

	first, err := te.CreateRequest(roomName, riderParams(riderOne, "5551110001", 0, ""))
	if err != nil {
		t.Fatalf("first CreateRequest: %v", err)
	}
	second, err := te.CreateRequest(roomName, riderParams(riderOne, "5551110001", 0, ""))
	if err != nil {
		t.Fatalf("second CreateRequest: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("resubmission created a new request %q, want existing %q", second.ID, first.ID)
	}
}

func TestCreateRequestNoDriversAndTooFar(t *testing.T) {
	te := newTestEngine(t)
	te.onlineDriver(t, driverOne, "5550000001", farLat, 0)

	_, err := te.CreateRequest(roomName, riderParams(riderOne, "5551110001", 0, ""))
	if got := codeOf(t, err); got != apierr.ErrNoDrivers.Code {
		t.Fatalf("auto match error = %q, want %q", got, apierr.ErrNoDrivers.Code)
	}

	_, err = te.CreateRequest(roomName, riderParams(riderOne, "5551110001", 0, driverOne))
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Code != apierr.ErrTooFar.Code {
		t.Fatalf("direct request error = %v, want %s", err, apierr.ErrTooFar.Code)
	}
	if _, ok := ae.Details["distanceKm"]; !ok {
		t.Fatalf("TOO_FAR details missing distanceKm: %v", ae.Details)
	}

	_, err = te.MatchNearest(roomName, 0, 0)
	if got := codeOf(t, err); got != apierr.ErrNoDrivers.Code {
		t.Fatalf("MatchNearest error = %q, want %q", got, apierr.ErrNoDrivers.Code)
	}
}

func TestCreateRequestCapacityBound(t *testing.T) {
	te := newTestEngine(t)
	te.onlineDriver(t, driverOne, "5550000001", nearLat, 0)

	for i := 0; i < 3; i++ {
		params := riderParams(fmt.Sprintf("rider-%d", i), fmt.Sprintf("555111000%d", i), 0, driverOne)
		if _, err := te.CreateRequest(roomName, params); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	_, err := te.CreateRequest(roomName, riderParams("rider-4", "5551110009", 0, driverOne))
	if got := codeOf(t, err); got != apierr.ErrDriverAtCapacity.Code {
		t.Fatalf("fourth request error = %q, want %q", got, apierr.ErrDriverAtCapacity.Code)
	}

	// A full driver is also invisible to auto matching.
	_, err = te.CreateRequest(roomName, riderParams("rider-5", "5551110008", 0, ""))
	if got := codeOf(t, err); got != apierr.ErrNoDrivers.Code {
		t.Fatalf("auto match error = %q, want %q", got, apierr.ErrNoDrivers.Code)
	}
}

func TestPhoneIdentityRules(t *testing.T) {
	te := newTestEngine(t)
	te.onlineDriver(t, driverOne, "5550000001", nearLat, 0)

	// A rider may not use a phone fronting a fresh driver.
	_, err := te.CreateRequest(roomName, riderParams(riderOne, "5550000001", 0, driverOne))
	if got := codeOf(t, err); got != apierr.ErrRiderPhoneReserved.Code {
		t.Fatalf("reserved phone error = %q, want %q", got, apierr.ErrRiderPhoneReserved.Code)
	}

	// One active request per phone across riders.
	if _, err := te.CreateRequest(roomName, riderParams(riderOne, "5551110001", 0, driverOne)); err != nil {
		t.Fatalf("first rider: %v", err)
	}
	_, err = te.CreateRequest(roomName, riderParams("rider-2", "5551110001", 0, driverOne))
	if got := codeOf(t, err); got != apierr.ErrRiderPhoneInUse.Code {
		t.Fatalf("shared phone error = %q, want %q", got, apierr.ErrRiderPhoneInUse.Code)
	}

	// Cancelling frees the phone.
	if err := te.CancelRequest(roomName, riderOne, ""); err != nil {
		t.Fatalf("CancelRequest: %v", err)
	}
	if _, err := te.CreateRequest(roomName, riderParams("rider-2", "5551110001", 0, driverOne)); err != nil {
		t.Fatalf("after cancel: %v", err)
	}
}

func TestAcceptOnlyTargetDriver(t *testing.T) {
	te := newTestEngine(t)
	te.onlineDriver(t, driverOne, "5550000001", nearLat, 0)
	te.onlineDriver(t, "driver-2", "5550000002", nearLat, 0)

	req, err := te.CreateRequest(roomName, riderParams(riderOne, "5551110001", 0, driverOne))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	_, err = te.AcceptRequest(roomName, "driver-2", req.ID, "Eve", "5550000002")
	if got := codeOf(t, err); got != apierr.ErrNotTargetDriver.Code {
		t.Fatalf("foreign accept error = %q, want %q", got, apierr.ErrNotTargetDriver.Code)
	}

	got, err := te.AcceptRequest(roomName, driverOne, req.ID, "Dana", "5550000001")
	if err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}
	if got.Status != models.StatusAssigned || got.AssignedDriverID != driverOne {
		t.Fatalf("accepted request = %+v, want assigned to %s", got, driverOne)
	}
	if got.AssignedDriverPhone != "5550000001" {
		t.Fatalf("assigned phone = %q, want driver contact revealed", got.AssignedDriverPhone)
	}

	// A second accept is rejected, the request is no longer pending.
	_, err = te.AcceptRequest(roomName, driverOne, req.ID, "Dana", "5550000001")
	if got := codeOf(t, err); got != apierr.ErrRequestNotPending.Code {
		t.Fatalf("re-accept error = %q, want %q", got, apierr.ErrRequestNotPending.Code)
	}
}

func TestDirectRequestFullFlow(t *testing.T) {
	te := newTestEngine(t)
	te.onlineDriver(t, driverOne, "5550000001", nearLat, 0)

	riderSink := &memSink{}
	rider := stream.NewSubscriber("sub-r", roomName, stream.RoleRider, riderOne, riderSink)
	te.Subscribe(rider)
	driverSink := &memSink{}
	driver := stream.NewSubscriber("sub-d", roomName, stream.RoleDriver, driverOne, driverSink)
	te.Subscribe(driver)

	req, err := te.CreateRequest(roomName, riderParams(riderOne, "5551110001", 0, driverOne))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if _, err := te.AcceptRequest(roomName, driverOne, req.ID, "Dana", "5550000001"); err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}
	if err := te.CompleteRequest(roomName, driverOne, req.ID); err != nil {
		t.Fatalf("CompleteRequest: %v", err)
	}

	for _, sink := range []*memSink{riderSink, driverSink} {
		if sink.count(stream.EventRequestNew) != 1 ||
			sink.count(stream.EventRequestUpdate) != 1 ||
			sink.count(stream.EventRequestRemove) != 1 {
			t.Fatalf("lifecycle events = %v", sink.names())
		}
	}
	// Completion clears the rider's active request and the assignment index.
	rm := te.Rooms().Get(roomName)
	rm.Lock()
	active := rm.ActiveForRider(riderOne)
	assigned := rm.AssignedDriverOf(riderOne)
	rm.Unlock()
	if active != nil {
		t.Fatalf("rider still has active request %+v after completion", active)
	}
	if assigned != "" {
		t.Fatalf("assignment index still maps rider to %q after completion", assigned)
	}
}

func TestCompleteOnlyAssignedDriver(t *testing.T) {
	te := newTestEngine(t)
	te.onlineDriver(t, driverOne, "5550000001", nearLat, 0)

	req, err := te.CreateRequest(roomName, riderParams(riderOne, "5551110001", 0, driverOne))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if err := te.CompleteRequest(roomName, "driver-2", req.ID); err == nil {
		t.Fatal("complete by a stranger succeeded")
	}
	if _, err := te.AcceptRequest(roomName, driverOne, req.ID, "Dana", "5550000001"); err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}
	err = te.CompleteRequest(roomName, "driver-2", req.ID)
	if got := codeOf(t, err); got != apierr.ErrNotAssignedDriver.Code {
		t.Fatalf("foreign complete error = %q, want %q", got, apierr.ErrNotAssignedDriver.Code)
	}
}

func TestCancelOnlyOwningRiderWhilePending(t *testing.T) {
	te := newTestEngine(t)
	te.onlineDriver(t, driverOne, "5550000001", nearLat, 0)

	req, err := te.CreateRequest(roomName, riderParams(riderOne, "5551110001", 0, driverOne))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	err = te.CancelRequest(roomName, "rider-2", req.ID)
	if got := codeOf(t, err); got != apierr.ErrRequestNotFound.Code {
		t.Fatalf("foreign cancel error = %q, want %q", got, apierr.ErrRequestNotFound.Code)
	}
	if _, err := te.AcceptRequest(roomName, driverOne, req.ID, "Dana", "5550000001"); err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}
	err = te.CancelRequest(roomName, riderOne, req.ID)
	if got := codeOf(t, err); got != apierr.ErrRequestNotPending.Code {
		t.Fatalf("cancel after accept error = %q, want %q", got, apierr.ErrRequestNotPending.Code)
	}
}

func TestDeclineRemovesPending(t *testing.T) {
	te := newTestEngine(t)
	te.onlineDriver(t, driverOne, "5550000001", nearLat, 0)

	req, err := te.CreateRequest(roomName, riderParams(riderOne, "5551110001", 0, driverOne))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if err := te.DeclineRequest(roomName, driverOne, req.ID); err != nil {
		t.Fatalf("DeclineRequest: %v", err)
	}
	rm := te.Rooms().Get(roomName)
	rm.Lock()
	gone := rm.Request(req.ID) == nil
	rm.Unlock()
	if !gone {
		t.Fatal("declined request still present")
	}
	// The rider can immediately request again.
	if _, err := te.CreateRequest(roomName, riderParams(riderOne, "5551110001", 0, driverOne)); err != nil {
		t.Fatalf("request after decline: %v", err)
	}
}

func TestSweepTimeouts(t *testing.T) {
	te := newTestEngine(t)
	te.onlineDriver(t, driverOne, "5550000001", nearLat, 0)
	te.onlineDriver(t, "driver-2", "5550000002", nearLat, 0)

	pending, err := te.CreateRequest(roomName, riderParams(riderOne, "5551110001", 0, driverOne))
	if err != nil {
		t.Fatalf("pending request: %v", err)
	}
	assigned, err := te.CreateRequest(roomName, riderParams("rider-2", "5551110002", 0, "driver-2"))
	if err != nil {
		t.Fatalf("assigned request: %v", err)
	}
	if _, err := te.AcceptRequest(roomName, "driver-2", assigned.ID, "Eve", "5550000002"); err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}

	// Just inside every window: nothing to evict.
	te.advance(30 * time.Second)
	if d, r := te.SweepOnce(); d != 0 || r != 0 {
		t.Fatalf("early sweep removed %d drivers, %d requests", d, r)
	}

	// Past driver staleness and the pending TTL, inside the assigned TTL.
	te.advance(5 * time.Minute)
	d, r := te.SweepOnce()
	if d != 2 {
		t.Fatalf("swept %d drivers, want 2", d)
	}
	if r != 1 {
		t.Fatalf("swept %d requests, want only the pending one", r)
	}

	rm := te.Rooms().Get(roomName)
	rm.Lock()
	pendingGone := rm.Request(pending.ID) == nil
	assignedKept := rm.Request(assigned.ID) != nil
	rm.Unlock()
	if !pendingGone || !assignedKept {
		t.Fatalf("pendingGone=%v assignedKept=%v", pendingGone, assignedKept)
	}

	// Past the assigned TTL as well.
	te.advance(time.Hour)
	if _, r := te.SweepOnce(); r != 1 {
		t.Fatalf("late sweep removed %d requests, want the assigned one", r)
	}
}

func TestBroadcastThrottle(t *testing.T) {
	te := newTestEngine(t)
	sink := &memSink{}
	sub := stream.NewSubscriber("sub-1", roomName, stream.RoleRider, "rider-x", sink)
	te.Subscribe(sub)

	te.onlineDriver(t, driverOne, "5550000001", nearLat, 0)
	base := sink.count(stream.EventDriverUpdate)

	// A tiny move inside the window is suppressed room-wide.
	te.advance(500 * time.Millisecond)
	if _, err := te.UpdateDriver(roomName, driverOne, "", "", models.Position{Lat: nearLat + 0.00001, Lng: 0}); err != nil {
		t.Fatalf("UpdateDriver: %v", err)
	}
	if got := sink.count(stream.EventDriverUpdate); got != base {
		t.Fatalf("throttled update leaked, count %d -> %d", base, got)
	}

	// A large move breaks the throttle early.
	if _, err := te.UpdateDriver(roomName, driverOne, "", "", models.Position{Lat: nearLat + 0.01, Lng: 0}); err != nil {
		t.Fatalf("UpdateDriver: %v", err)
	}
	if got := sink.count(stream.EventDriverUpdate); got != base+1 {
		t.Fatalf("movement update missing, count %d, want %d", got, base+1)
	}

	// So does waiting out the time gap.
	te.advance(3 * time.Second)
	if _, err := te.UpdateDriver(roomName, driverOne, "", "", models.Position{Lat: nearLat + 0.01, Lng: 0}); err != nil {
		t.Fatalf("UpdateDriver: %v", err)
	}
	if got := sink.count(stream.EventDriverUpdate); got != base+2 {
		t.Fatalf("timed update missing, count %d, want %d", got, base+2)
	}
}

func TestAssignedRiderBypassesThrottle(t *testing.T) {
	te := newTestEngine(t)
	te.onlineDriver(t, driverOne, "5550000001", nearLat, 0)

	req, err := te.CreateRequest(roomName, riderParams(riderOne, "5551110001", 0, driverOne))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if _, err := te.AcceptRequest(roomName, driverOne, req.ID, "Dana", "5550000001"); err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}

	riderSink := &memSink{}
	te.Subscribe(stream.NewSubscriber("sub-r", roomName, stream.RoleRider, riderOne, riderSink))
	otherSink := &memSink{}
	te.Subscribe(stream.NewSubscriber("sub-o", roomName, stream.RoleRider, "rider-2", otherSink))

	// Inside the throttle window with no movement: only the assigned rider
	// gets the position.
	te.advance(100 * time.Millisecond)
	if _, err := te.UpdateDriver(roomName, driverOne, "", "", models.Position{Lat: nearLat, Lng: 0}); err != nil {
		t.Fatalf("UpdateDriver: %v", err)
	}
	if got := riderSink.count(stream.EventDriverUpdate); got != 1 {
		t.Fatalf("assigned rider updates = %d, want 1", got)
	}
	if got := otherSink.count(stream.EventDriverUpdate); got != 0 {
		t.Fatalf("bystander updates = %d, want 0", got)
	}
}

func TestStopDriverBroadcastsRemoval(t *testing.T) {
	te := newTestEngine(t)
	sink := &memSink{}
	te.Subscribe(stream.NewSubscriber("sub-1", roomName, stream.RoleRider, "rider-x", sink))

	te.onlineDriver(t, driverOne, "5550000001", nearLat, 0)
	if err := te.StopDriver(roomName, driverOne); err != nil {
		t.Fatalf("StopDriver: %v", err)
	}
	if got := sink.count(stream.EventDriverRemove); got != 1 {
		t.Fatalf("driver:remove count = %d, want 1", got)
	}
	if _, ok := te.store.drivers[driverKey(roomName, driverOne)]; ok {
		t.Fatal("stopped driver still persisted")
	}
}

func TestSnapshotScoping(t *testing.T) {
	te := newTestEngine(t)
	te.onlineDriver(t, driverOne, "5550000001", nearLat, 0)
	te.onlineDriver(t, "driver-2", "5550000002", nearLat, 0)

	if _, err := te.CreateRequest(roomName, riderParams(riderOne, "5551110001", 0, driverOne)); err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if _, err := te.CreateRequest(roomName, riderParams("rider-2", "5551110002", 0, "driver-2")); err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	driverSnap := te.Snapshot(stream.NewSubscriber("s1", roomName, stream.RoleDriver, driverOne, &memSink{}))
	if len(driverSnap.Drivers) != 2 {
		t.Fatalf("driver snapshot has %d drivers, want 2", len(driverSnap.Drivers))
	}
	if len(driverSnap.Requests) != 1 || *driverSnap.Requests[0].TargetDriverID != driverOne {
		t.Fatalf("driver snapshot requests = %+v, want only own queue", driverSnap.Requests)
	}

	riderSnap := te.Snapshot(stream.NewSubscriber("s2", roomName, stream.RoleRider, riderOne, &memSink{}))
	if len(riderSnap.Requests) != 1 || riderSnap.Requests[0].RiderID != riderOne {
		t.Fatalf("rider snapshot requests = %+v, want only own request", riderSnap.Requests)
	}

	strangerSnap := te.Snapshot(stream.NewSubscriber("s3", roomName, stream.RoleRider, "rider-9", &memSink{}))
	if len(strangerSnap.Requests) != 0 {
		t.Fatalf("stranger snapshot leaked %d requests", len(strangerSnap.Requests))
	}
	if strangerSnap.Config.MaxActiveRequestsPerDriver != 3 {
		t.Fatalf("snapshot config = %+v", strangerSnap.Config)
	}
}

func TestRoomsAreIsolated(t *testing.T) {
	te := newTestEngine(t)
	te.onlineDriver(t, driverOne, "5550000001", nearLat, 0)

	_, err := te.CreateRequest("otherroom", riderParams(riderOne, "5551110001", 0, ""))
	if got := codeOf(t, err); got != apierr.ErrNoDrivers.Code {
		t.Fatalf("cross-room match error = %q, want %q", got, apierr.ErrNoDrivers.Code)
	}
}
