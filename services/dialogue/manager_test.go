package dialogue

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"voicetable/models"
	"voicetable/services/nlu"
	"voicetable/services/session"
)

// --- Fakes ---

// fakeEngine is an in-memory SlotEngine with the same single-holder, capacity
// semantics as the Redis implementation (minus TTL expiry).
type fakeEngine struct {
	mu           sync.Mutex
	counts       map[string]int64
	locks        map[string]string
	lockAttempts int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{counts: make(map[string]int64), locks: make(map[string]string)}
}

func slotKey(date, hour string) string { return date + ":" + hour }

func (f *fakeEngine) Count(_ context.Context, date, hour string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[slotKey(date, hour)], nil
}

func (f *fakeEngine) Increment(_ context.Context, date, hour string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[slotKey(date, hour)]++
	return f.counts[slotKey(date, hour)], nil
}

func (f *fakeEngine) AcquireLock(_ context.Context, date, hour, sessionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lockAttempts++
	key := slotKey(date, hour)
	holder, held := f.locks[key]
	if held && holder != sessionID {
		return false, nil
	}
	f.locks[key] = sessionID
	return true, nil
}

func (f *fakeEngine) ReleaseLock(_ context.Context, date, hour, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := slotKey(date, hour)
	if f.locks[key] == sessionID {
		delete(f.locks, key)
	}
	return nil
}

func (f *fakeEngine) holder(date, hour string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.locks[slotKey(date, hour)]
}

func (f *fakeEngine) count(date, hour string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[slotKey(date, hour)]
}

// fakeDispatcher records dispatched bookings.
type fakeDispatcher struct {
	mu      sync.Mutex
	records []models.BookingRecord
}

func (f *fakeDispatcher) Dispatch(record models.BookingRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
}

func (f *fakeDispatcher) all() []models.BookingRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.BookingRecord(nil), f.records...)
}

// --- Harness ---

func newTestDialogue(t *testing.T) (*DefaultDialogueService, *fakeEngine, *fakeDispatcher, *session.MemorySessionStore) {
	t.Helper()
	store := session.NewMemorySessionStore()
	n := 0
	store.NewID = func() string {
		n++
		return fmt.Sprintf("sess-%d", n)
	}
	engine := newFakeEngine()
	dispatcher := &fakeDispatcher{}

	d := NewDialogueService(store, engine, nlu.NewRegexParser(), dispatcher, 10)
	d.Now = func() time.Time { return time.Date(2026, 8, 27, 19, 5, 0, 0, time.UTC) }
	d.NewToken = func() string { return "ab3f-irrelevant-rest" }
	return d, engine, dispatcher, store
}

func turn(t *testing.T, d *DefaultDialogueService, id, text string) models.Reply {
	t.Helper()
	return d.HandleInput(context.Background(), id, text)
}

// driveToConfirm walks a session up to the CONFIRM state for
// (tomorrow, hour 12) and returns its id.
func driveToConfirm(t *testing.T, d *DefaultDialogueService) string {
	t.Helper()
	id := d.CreateSession()
	turn(t, d, id, "")
	turn(t, d, id, "a table for four tomorrow")
	turn(t, d, id, "noon")
	reply := turn(t, d, id, "Mahesh Kumar")
	if !strings.Contains(reply.Text, "Should I confirm it?") {
		t.Fatalf("expected confirm prompt, got %q", reply.Text)
	}
	return id
}

// --- Tests ---

func TestWelcomeGreetsAndAdvances(t *testing.T) {
	d, _, _, store := newTestDialogue(t)
	id := d.CreateSession()

	reply := turn(t, d, id, "")
	if !strings.Contains(reply.Text, "Welcome to The Gourmet Bistro") {
		t.Fatalf("expected greeting, got %q", reply.Text)
	}
	if reply.Voice != models.VoiceFormal {
		t.Fatalf("expected formal voice, got %q", reply.Voice)
	}
	sess, _ := store.Get(id)
	if sess.State != models.StateCollectInfo {
		t.Fatalf("expected COLLECT_INFO after welcome, got %q", sess.State)
	}
}

func TestUnknownSessionEnds(t *testing.T) {
	d, _, _, _ := newTestDialogue(t)

	reply := turn(t, d, "nope", "hello")
	if reply.Text != "Session not found." || !reply.ShouldEnd {
		t.Fatalf("expected terminal not-found reply, got %+v", reply)
	}
	if reply.Voice != models.VoiceNeutral {
		t.Fatalf("expected neutral voice, got %q", reply.Voice)
	}
}

func TestCollectInfoPromptOrder(t *testing.T) {
	d, _, _, _ := newTestDialogue(t)
	id := d.CreateSession()
	turn(t, d, id, "")

	reply := turn(t, d, id, "I want to book a table")
	if !strings.Contains(reply.Text, "which day") {
		t.Fatalf("expected date prompt first, got %q", reply.Text)
	}

	reply = turn(t, d, id, "tomorrow")
	if !strings.Contains(reply.Text, "what time") {
		t.Fatalf("expected time prompt, got %q", reply.Text)
	}
}

func TestAmbiguousTimePromptsMeridiem(t *testing.T) {
	d, _, _, store := newTestDialogue(t)
	id := d.CreateSession()
	turn(t, d, id, "")
	turn(t, d, id, "tomorrow")

	reply := turn(t, d, id, "at 7")
	if !strings.Contains(reply.Text, "morning... or evening") {
		t.Fatalf("expected meridiem prompt, got %q", reply.Text)
	}

	turn(t, d, id, "evening")
	sess, _ := store.Get(id)
	if sess.Slots.Time != "7:00 pm" {
		t.Fatalf("expected evening cue to qualify time, got %q", sess.Slots.Time)
	}
}

func TestNameFallbackSkipsExplicitPrompt(t *testing.T) {
	d, engine, _, store := newTestDialogue(t)
	id := d.CreateSession()
	turn(t, d, id, "")
	turn(t, d, id, "a table for four tomorrow")
	turn(t, d, id, "noon")

	// A short bare-name utterance the extractor misses must advance straight
	// into the availability check.
	reply := turn(t, d, id, "Mahesh Kumar")
	if !strings.Contains(reply.Text, "Should I confirm it?") {
		t.Fatalf("expected availability confirmation, got %q", reply.Text)
	}

	sess, _ := store.Get(id)
	if sess.Slots.Name != "Mahesh Kumar" {
		t.Fatalf("expected verbatim name, got %q", sess.Slots.Name)
	}
	if sess.State != models.StateConfirm {
		t.Fatalf("expected CONFIRM, got %q", sess.State)
	}
	if engine.holder("tomorrow", "12") != id {
		t.Fatal("expected session to hold the slot lock")
	}
}

func TestNameFallbackRejectsLongOrNegativeUtterances(t *testing.T) {
	d, _, _, _ := newTestDialogue(t)
	id := d.CreateSession()
	turn(t, d, id, "")
	turn(t, d, id, "a table for four tomorrow")
	turn(t, d, id, "noon")

	reply := turn(t, d, id, "well hm let me think about it")
	if !strings.Contains(reply.Text, "your name") {
		t.Fatalf("expected name prompt for long utterance, got %q", reply.Text)
	}
}

func TestSilenceTimeoutReprompts(t *testing.T) {
	d, _, _, store := newTestDialogue(t)
	id := d.CreateSession()
	turn(t, d, id, "")

	reply := turn(t, d, id, SilenceTimeout)
	if !strings.Contains(reply.Text, "Are you still there?") {
		t.Fatalf("expected alternate date prompt on silence, got %q", reply.Text)
	}

	turn(t, d, id, "a table for four tomorrow")
	turn(t, d, id, "noon")
	reply = turn(t, d, id, SilenceTimeout)
	if !strings.Contains(reply.Text, "I still need your name") {
		t.Fatalf("expected alternate name prompt on silence, got %q", reply.Text)
	}

	// The sentinel must never be swallowed as a name.
	sess, _ := store.Get(id)
	if sess.Slots.Name != "" {
		t.Fatalf("silence sentinel leaked into name slot: %q", sess.Slots.Name)
	}
}

func TestFullSlotNeverAttemptsLock(t *testing.T) {
	d, engine, _, _ := newTestDialogue(t)
	for i := 0; i < 10; i++ {
		engine.Increment(context.Background(), "tomorrow", "12")
	}

	id := d.CreateSession()
	turn(t, d, id, "")
	turn(t, d, id, "a table for four tomorrow")
	turn(t, d, id, "noon")
	reply := turn(t, d, id, "Priya")

	if !strings.Contains(reply.Text, "that time is full") {
		t.Fatalf("expected full-slot reply, got %q", reply.Text)
	}
	if engine.lockAttempts != 0 {
		t.Fatalf("expected no lock attempt on a full slot, got %d", engine.lockAttempts)
	}
}

func TestLockContentionReportsTaken(t *testing.T) {
	d, engine, _, store := newTestDialogue(t)

	// Session B wins the slot.
	b := driveToConfirm(t, d)

	// Session C races for the identical (date, hour) and loses.
	c := d.CreateSession()
	turn(t, d, c, "")
	turn(t, d, c, "a table for four tomorrow")
	turn(t, d, c, "noon")
	reply := turn(t, d, c, "Priya")
	if !strings.Contains(reply.Text, "someone just took that spot") {
		t.Fatalf("expected contention reply, got %q", reply.Text)
	}
	sessC, _ := store.Get(c)
	if sessC.State != models.StateCheckAvailability {
		t.Fatalf("expected loser to stay in CHECK_AVAILABILITY, got %q", sessC.State)
	}

	// B walks away; C's re-entrant retry now wins.
	turn(t, d, b, "no thanks")
	reply = turn(t, d, c, "try again")
	if !strings.Contains(reply.Text, "Should I confirm it?") {
		t.Fatalf("expected retry to win the freed slot, got %q", reply.Text)
	}
	if engine.holder("tomorrow", "12") != c {
		t.Fatal("expected session C to hold the lock after retry")
	}
}

func TestConfirmAmendmentReleasesPriorLock(t *testing.T) {
	d, engine, _, store := newTestDialogue(t)
	id := driveToConfirm(t, d)

	reply := turn(t, d, id, "actually make it 8 pm")
	if !strings.Contains(reply.Text, "Should I confirm it?") {
		t.Fatalf("expected re-check confirmation for amended slot, got %q", reply.Text)
	}

	if engine.holder("tomorrow", "12") != "" {
		t.Fatal("expected prior slot lock to be released on amendment")
	}
	if engine.holder("tomorrow", "8") != id {
		t.Fatal("expected lock on the amended slot key")
	}
	sess, _ := store.Get(id)
	if sess.Slots.Time != "8 pm" {
		t.Fatalf("expected amended time, got %q", sess.Slots.Time)
	}
}

func TestConfirmRejectReleasesLockAndEnds(t *testing.T) {
	d, engine, dispatcher, _ := newTestDialogue(t)
	id := driveToConfirm(t, d)

	reply := turn(t, d, id, "no")
	if !reply.ShouldEnd || !strings.Contains(reply.Text, "cancelled") {
		t.Fatalf("expected cancellation, got %+v", reply)
	}
	if engine.holder("tomorrow", "12") != "" {
		t.Fatal("expected lock released on rejection")
	}
	if engine.count("tomorrow", "12") != 0 {
		t.Fatal("expected no count increment on rejection")
	}
	if len(dispatcher.all()) != 0 {
		t.Fatal("expected no record dispatched on rejection")
	}
}

func TestConfirmUnrecognizedRepromptsWithoutStateChange(t *testing.T) {
	d, engine, _, store := newTestDialogue(t)
	id := driveToConfirm(t, d)

	reply := turn(t, d, id, "banana")
	if !strings.Contains(reply.Text, "Just say yes or no") {
		t.Fatalf("expected yes/no re-prompt, got %q", reply.Text)
	}
	sess, _ := store.Get(id)
	if sess.State != models.StateConfirm {
		t.Fatalf("expected to stay in CONFIRM, got %q", sess.State)
	}
	if engine.holder("tomorrow", "12") != id {
		t.Fatal("expected lock untouched by unrecognized reply")
	}
}

func TestFinalizeMintsConfirmationAndSettlesSlot(t *testing.T) {
	d, engine, dispatcher, store := newTestDialogue(t)
	id := driveToConfirm(t, d)

	reply := turn(t, d, id, "yes")
	if !reply.ShouldEnd {
		t.Fatal("expected finalize to end the session")
	}
	if reply.Booking == nil {
		t.Fatal("expected booking record on finalize reply")
	}

	idPattern := regexp.MustCompile(`^R-\d{8}-[A-Z0-9]{4}$`)
	if !idPattern.MatchString(reply.Booking.ConfirmationID) {
		t.Fatalf("confirmation id %q does not match pattern", reply.Booking.ConfirmationID)
	}
	if reply.Booking.ConfirmationID != "R-20260827-AB3F" {
		t.Fatalf("expected deterministic id from injected clock/token, got %q", reply.Booking.ConfirmationID)
	}
	if !strings.Contains(reply.Text, reply.Booking.ConfirmationID) {
		t.Fatal("expected confirmation id spoken in the reply")
	}

	if engine.count("tomorrow", "12") != 1 {
		t.Fatalf("expected count bumped by exactly 1, got %d", engine.count("tomorrow", "12"))
	}
	if engine.holder("tomorrow", "12") != "" {
		t.Fatal("expected lock released after finalize")
	}

	recs := dispatcher.all()
	if len(recs) != 1 {
		t.Fatalf("expected exactly one dispatched record, got %d", len(recs))
	}
	if recs[0].Name != "Mahesh Kumar" || recs[0].People != 4 || recs[0].Status != models.BookingStatusConfirmed {
		t.Fatalf("unexpected record %+v", recs[0])
	}
	if recs[0].Phone != "Unknown" {
		t.Fatalf("expected Unknown phone placeholder, got %q", recs[0].Phone)
	}

	sess, _ := store.Get(id)
	if sess.State != models.StateFinalize {
		t.Fatalf("expected FINALIZE, got %q", sess.State)
	}
	if sess.PhoneAttempts != 0 {
		t.Fatalf("phoneAttempts must stay untouched, got %d", sess.PhoneAttempts)
	}

	// Terminal state answers any further input with a fixed reply.
	reply = turn(t, d, id, "hello?")
	if reply.Text != "Your booking is already done." || !reply.ShouldEnd {
		t.Fatalf("expected already-booked terminal reply, got %+v", reply)
	}
}
