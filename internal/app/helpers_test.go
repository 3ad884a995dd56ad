package app

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"festquiz/internal/domain"
)

type recordingView struct {
	mu        sync.Mutex
	events    chan string
	questions []RenderedQuestion
	locked    []*domain.LockedResult
	facits    [][]domain.AnsweredRecord
	boards    []Scoreboard
	startErrs []error
	starts    int
	onLocked  func()
}

func newRecordingView() *recordingView {
	return &recordingView{events: make(chan string, 64)}
}

func (v *recordingView) emit(event string) {
	select {
	case v.events <- event:
	default:
	}
}

func (v *recordingView) ShowStart() {
	v.mu.Lock()
	v.starts++
	v.mu.Unlock()
	v.emit("start")
}

func (v *recordingView) ShowLoading() { v.emit("loading") }

func (v *recordingView) ShowStartError(err error) {
	v.mu.Lock()
	v.startErrs = append(v.startErrs, err)
	v.mu.Unlock()
	v.emit("start_error")
}

func (v *recordingView) ShowQuestion(q RenderedQuestion) {
	v.mu.Lock()
	v.questions = append(v.questions, q)
	v.mu.Unlock()
	v.emit("question")
}

func (v *recordingView) ShowLocked(result *domain.LockedResult) {
	v.mu.Lock()
	v.locked = append(v.locked, result)
	hook := v.onLocked
	v.mu.Unlock()
	if hook != nil {
		hook()
	}
	v.emit("locked")
}

func (v *recordingView) ShowFacit(records []domain.AnsweredRecord) {
	v.mu.Lock()
	v.facits = append(v.facits, records)
	v.mu.Unlock()
	v.emit("facit")
}

func (v *recordingView) ShowScoreboard(board Scoreboard) {
	v.mu.Lock()
	v.boards = append(v.boards, board)
	v.mu.Unlock()
	v.emit("scoreboard")
}

func (v *recordingView) counts() (questions, locked, facits, boards int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.questions), len(v.locked), len(v.facits), len(v.boards)
}

// waitFor drains view events until want shows up.
func (v *recordingView) waitFor(t *testing.T, want string) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case got := <-v.events:
			if got == want {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q view event", want)
		}
	}
}

type sourceFunc func(ctx context.Context, query domain.Query) ([]domain.Question, error)

func (f sourceFunc) FetchQuestions(ctx context.Context, query domain.Query) ([]domain.Question, error) {
	return f(ctx, query)
}

func staticSource(questions ...domain.Question) sourceFunc {
	return func(context.Context, domain.Query) ([]domain.Question, error) {
		return questions, nil
	}
}

type fakeRooms struct {
	mu     sync.Mutex
	codes  []string
	called chan struct{}
	next   func(call int) (domain.RoomSnapshot, error)
}

func newFakeRooms(next func(call int) (domain.RoomSnapshot, error)) *fakeRooms {
	return &fakeRooms{called: make(chan struct{}, 64), next: next}
}

func (r *fakeRooms) Snapshot(_ context.Context, code string) (domain.RoomSnapshot, error) {
	r.mu.Lock()
	r.codes = append(r.codes, code)
	call := len(r.codes)
	r.mu.Unlock()

	snap, err := r.next(call)
	r.called <- struct{}{}
	return snap, err
}

func (r *fakeRooms) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.codes)
}

func (r *fakeRooms) waitCall(t *testing.T) {
	t.Helper()
	select {
	case <-r.called:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for room poll")
	}
}

type recordingObserver struct {
	mu    sync.Mutex
	sent  []domain.QuestionBroadcast
	fails bool
}

func (o *recordingObserver) QuestionShown(_ context.Context, b domain.QuestionBroadcast) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, b)
	if o.fails {
		return errors.New("observer offline")
	}
	return nil
}

type memArchive struct {
	mu     sync.Mutex
	facits []domain.Facit
}

func (a *memArchive) Save(_ context.Context, f domain.Facit) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.facits = append(a.facits, f)
	return nil
}

func (a *memArchive) Get(_ context.Context, id string) (domain.Facit, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, f := range a.facits {
		if f.ID == id {
			return f, nil
		}
	}
	return domain.Facit{}, domain.ErrFacitNotFound
}

func (a *memArchive) Recent(_ context.Context, limit int) ([]domain.Facit, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if limit > len(a.facits) {
		limit = len(a.facits)
	}
	return append([]domain.Facit(nil), a.facits[:limit]...), nil
}

func question(text, correct string, incorrect ...string) domain.Question {
	if incorrect == nil {
		incorrect = []string{}
	}
	return domain.Question{Text: text, CorrectAnswer: correct, IncorrectAnswers: incorrect}
}

func seeded() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func currentSession(c *Controller) (*Session, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session, c.session.round
}

func lockTimerArmed(c *Controller) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil && c.session.pending != nil
}
