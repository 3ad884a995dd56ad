package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"festquiz/internal/domain"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// QuestionSource fetches a batch of questions (remote API, cache, etc).
type QuestionSource interface {
	FetchQuestions(ctx context.Context, query domain.Query) ([]domain.Question, error)
}

// RoomSource reads the server-side state of a multiplayer room.
type RoomSource interface {
	Snapshot(ctx context.Context, code string) (domain.RoomSnapshot, error)
}

// QuestionObserver is notified once per shown question.
type QuestionObserver interface {
	QuestionShown(ctx context.Context, b domain.QuestionBroadcast) error
}

// Observers fans a broadcast out to several observers. Every observer is
// called even when an earlier one fails.
type Observers []QuestionObserver

func (o Observers) QuestionShown(ctx context.Context, b domain.QuestionBroadcast) error {
	var errs []error
	for _, observer := range o {
		if err := observer.QuestionShown(ctx, b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FacitArchive stores the answer keys of finished sessions.
type FacitArchive interface {
	Save(ctx context.Context, facit domain.Facit) error
	Get(ctx context.Context, id string) (domain.Facit, error)
	Recent(ctx context.Context, limit int) ([]domain.Facit, error)
}

// View presents controller output. Calls are made without the controller
// lock held, one at a time per triggering operation.
type View interface {
	ShowStart()
	ShowLoading()
	ShowStartError(err error)
	ShowQuestion(q RenderedQuestion)
	ShowLocked(result *domain.LockedResult)
	ShowFacit(records []domain.AnsweredRecord)
	ShowScoreboard(board Scoreboard)
}

// State is the controller's position in the quiz lifecycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateInQuestion
	StateLocked
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateInQuestion:
		return "in_question"
	case StateLocked:
		return "locked"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// SessionView is a read-only copy of the controller's progress.
type SessionView struct {
	State    State
	Mode     domain.Mode
	Index    int
	Total    int
	Results  []domain.AnsweredRecord
	RoomCode string
}

const (
	defaultPollInterval = 500 * time.Millisecond
	defaultPollTimeout  = 2 * time.Second
	defaultLockDelay    = 1500 * time.Millisecond
	defaultFetchTimeout = 15 * time.Second
	finalFetchTimeout   = 5 * time.Second
)

// Option configures a Controller.
type Option func(*Controller)

// WithRoom enables room synchronisation. An empty code keeps the controller offline.
func WithRoom(code string, rooms RoomSource) Option {
	return func(c *Controller) {
		c.roomCode = strings.ToUpper(strings.TrimSpace(code))
		c.rooms = rooms
	}
}

// WithObserver registers the question observer.
func WithObserver(observer QuestionObserver) Option {
	return func(c *Controller) { c.observer = observer }
}

// WithArchive stores every finished session's facit.
func WithArchive(archive FacitArchive) Option {
	return func(c *Controller) { c.archive = archive }
}

// WithClock replaces the real clock, mostly for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithRand fixes the shuffle source.
func WithRand(rnd *rand.Rand) Option {
	return func(c *Controller) { c.rnd = rnd }
}

// WithTimings overrides poll interval, per-poll timeout and the delay between
// answers locking and the next question. Zero values keep the defaults.
func WithTimings(pollInterval, pollTimeout, lockDelay time.Duration) Option {
	return func(c *Controller) {
		if pollInterval > 0 {
			c.pollInterval = pollInterval
		}
		if pollTimeout > 0 {
			c.pollTimeout = pollTimeout
		}
		if lockDelay > 0 {
			c.lockDelay = lockDelay
		}
	}
}

// WithFetchTimeout bounds the initial question fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// Controller drives a quiz session from fetch to facit, locally or in lock-step
// with a room.
type Controller struct {
	source   QuestionSource
	view     View
	rooms    RoomSource
	roomCode string
	observer QuestionObserver
	archive  FacitArchive
	clock    clockwork.Clock
	rnd      *rand.Rand

	pollInterval time.Duration
	pollTimeout  time.Duration
	lockDelay    time.Duration
	fetchTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	session *Session
	poll    *PollHandle
	loadSeq uint64
}

func NewController(source QuestionSource, view View, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		source:       source,
		view:         view,
		clock:        clockwork.NewRealClock(),
		pollInterval: defaultPollInterval,
		pollTimeout:  defaultPollTimeout,
		lockDelay:    defaultLockDelay,
		fetchTimeout: defaultFetchTimeout,
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rnd == nil {
		c.rnd = rand.New(rand.NewSource(c.clock.Now().UnixNano()))
	}
	return c
}

// RoomCode returns the normalised room code, empty when offline.
func (c *Controller) RoomCode() string {
	return c.roomCode
}

func (c *Controller) roomMode() bool {
	return c.roomCode != "" && c.rooms != nil
}

// Start fetches questions and shows the first one. On failure the controller
// returns to idle so the caller can retry.
func (c *Controller) Start(ctx context.Context, query domain.Query) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return domain.ErrSessionActive
	}
	c.state = StateLoading
	c.loadSeq++
	seq := c.loadSeq
	c.mu.Unlock()

	c.view.ShowLoading()

	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	questions, err := c.source.FetchQuestions(fetchCtx, query)
	cancel()
	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	} else if len(questions) == 0 {
		err = domain.ErrNoQuestions
	}

	c.mu.Lock()
	if c.loadSeq != seq || c.state != StateLoading {
		c.mu.Unlock()
		return domain.ErrStartAborted
	}
	if err != nil {
		c.state = StateIdle
		c.mu.Unlock()
		log.Error().Err(err).
			Int("amount", query.Amount).
			Str("category", query.Category).
			Str("difficulty", query.Difficulty).
			Msg("start quiz failed")
		c.view.ShowStartError(err)
		return err
	}

	c.session = newSession(query, questions)
	c.state = StateInQuestion
	log.Info().
		Int("questions", len(questions)).
		Str("room", c.roomCode).
		Msg("quiz started")
	fx := c.showCurrentLocked()
	c.mu.Unlock()

	runEffects(fx)
	return nil
}

// Next advances past the current question. It is a no-op when the round has
// already been triggered, e.g. by the room locking its answers.
func (c *Controller) Next() error {
	c.mu.Lock()
	s := c.session
	if s == nil {
		c.mu.Unlock()
		return domain.ErrNoSession
	}
	if c.state != StateInQuestion || s.triggered {
		c.mu.Unlock()
		return nil
	}
	s.triggered = true
	fx := c.advanceLocked()
	c.mu.Unlock()

	runEffects(fx)
	return nil
}

// Restart drops the current session from any state and returns to the start screen.
func (c *Controller) Restart() {
	c.mu.Lock()
	c.stopPollerLocked()
	if c.session != nil && c.session.pending != nil {
		c.session.pending.Stop()
	}
	c.session = nil
	c.state = StateIdle
	c.loadSeq++
	c.mu.Unlock()

	log.Info().Msg("quiz restarted")
	c.view.ShowStart()
}

// Close stops background work. The controller must not be used afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	c.stopPollerLocked()
	if c.session != nil && c.session.pending != nil {
		c.session.pending.Stop()
	}
	c.mu.Unlock()
	c.cancel()
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a copy of the session progress.
func (c *Controller) Snapshot() SessionView {
	c.mu.Lock()
	defer c.mu.Unlock()
	view := SessionView{State: c.state, RoomCode: c.roomCode}
	if s := c.session; s != nil {
		view.Mode = s.mode
		view.Index = s.index
		view.Total = len(s.questions)
		view.Results = s.resultsCopy()
	}
	return view
}

// advanceLocked records the current question and shows the next one or finishes.
func (c *Controller) advanceLocked() []func() {
	c.stopPollerLocked()
	c.session.record()
	return c.showCurrentLocked()
}

func (c *Controller) showCurrentLocked() []func() {
	s := c.session
	if skipped := s.skipMalformed(); skipped > 0 {
		log.Warn().Int("skipped", skipped).Int("index", s.index).Msg("skipped malformed questions")
	}
	if s.finished() {
		return c.finishLocked()
	}

	c.state = StateInQuestion
	rendered := s.render(c.rnd)
	round := s.round
	fx := []func(){func() { c.view.ShowQuestion(rendered) }}

	if c.observer != nil {
		if b, ok := s.broadcast(s.query.Difficulty); ok {
			fx = append(fx, func() { c.notify(b) })
		}
	}
	if c.roomMode() {
		fx = append(fx, func() { c.armPoller(s, round) })
	}
	return fx
}

func (c *Controller) notify(b domain.QuestionBroadcast) {
	if err := c.observer.QuestionShown(c.ctx, b); err != nil {
		log.Warn().Err(err).Str("question_id", b.ID).Msg("question observer failed")
	}
}

// current reports whether s is still the active session and round its
// current question. Callers hold c.mu.
func (c *Controller) current(s *Session, round uint64) bool {
	return s != nil && c.session == s && s.round == round
}

// armPoller replaces any previous poller with one bound to the session's round.
func (c *Controller) armPoller(s *Session, round uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.current(s, round) || c.state != StateInQuestion || s.triggered {
		return
	}
	c.stopPollerLocked()

	code := c.roomCode
	fetch := func(ctx context.Context) (domain.RoomSnapshot, error) {
		return c.rooms.Snapshot(ctx, code)
	}
	c.poll = StartPoller(c.ctx, c.clock, c.pollInterval, c.pollTimeout, fetch, func(snap domain.RoomSnapshot) bool {
		return c.handleSnapshot(s, round, snap)
	})
	log.Debug().Str("room", code).Uint64("round", round).Msg("room poller armed")
}

func (c *Controller) stopPollerLocked() {
	if c.poll != nil {
		c.poll.Stop()
		c.poll = nil
	}
}

// handleSnapshot reacts to one poll result for the session's round and
// reports whether polling for that round is over.
func (c *Controller) handleSnapshot(s *Session, round uint64, snap domain.RoomSnapshot) bool {
	c.mu.Lock()
	if !c.current(s, round) || c.state != StateInQuestion || s.triggered {
		c.mu.Unlock()
		return true
	}
	if !snap.AnswersLocked {
		c.mu.Unlock()
		return false
	}

	s.triggered = true
	s.mode = domain.ModeLocked
	c.state = StateLocked
	c.stopPollerLocked()
	index := s.index
	c.mu.Unlock()

	log.Info().Str("room", c.roomCode).Int("index", index).Msg("answers locked")
	c.view.ShowLocked(snap.LastResult)
	c.scheduleAdvance(s, round)
	return true
}

// scheduleAdvance arms the lock-delay timer once the locked summary is shown.
func (c *Controller) scheduleAdvance(s *Session, round uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx.Err() != nil || !c.current(s, round) || c.state != StateLocked || s.pending != nil {
		return
	}
	s.pending = c.clock.AfterFunc(c.lockDelay, func() { c.autoAdvance(s, round) })
}

func (c *Controller) autoAdvance(s *Session, round uint64) {
	c.mu.Lock()
	if !c.current(s, round) || c.state != StateLocked {
		c.mu.Unlock()
		return
	}
	s.pending = nil
	fx := c.advanceLocked()
	c.mu.Unlock()

	runEffects(fx)
}

func (c *Controller) finishLocked() []func() {
	s := c.session
	c.stopPollerLocked()
	c.state = StateFinished
	s.mode = domain.ModeFacit
	records := s.resultsCopy()

	facit := domain.Facit{
		ID:         uuid.NewString(),
		RoomCode:   c.roomCode,
		Query:      s.query,
		Records:    records,
		FinishedAt: c.clock.Now(),
	}
	log.Info().Int("answered", len(records)).Int("total", len(s.questions)).Msg("quiz finished")

	if !c.roomMode() {
		return []func(){
			func() { c.view.ShowFacit(records) },
			func() { c.store(facit) },
		}
	}
	return []func(){func() { c.finishRoom(s, facit) }}
}

// finishRoom fetches the final room state and renders the scoreboard, falling
// back to the local facit when the room cannot be read.
func (c *Controller) finishRoom(s *Session, facit domain.Facit) {
	ctx, cancel := context.WithTimeout(c.ctx, finalFetchTimeout)
	snap, err := c.rooms.Snapshot(ctx, c.roomCode)
	cancel()

	c.mu.Lock()
	if c.session != s {
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.mu.Unlock()
		log.Warn().Err(err).Str("room", c.roomCode).Msg("final room fetch failed, showing local facit")
		c.view.ShowFacit(facit.Records)
		c.store(facit)
		return
	}
	s.mode = domain.ModeScoreboard
	c.mu.Unlock()

	facit.FinalResults = snap.FinalResults
	facit.Scoreboard = RankPlayers(snap.Players)
	c.view.ShowScoreboard(Scoreboard{
		RoomCode: c.roomCode,
		Records:  facit.Records,
		Results:  facit.FinalResults,
		Entries:  facit.Scoreboard,
	})
	c.store(facit)
}

func (c *Controller) store(facit domain.Facit) {
	if c.archive == nil {
		return
	}
	if err := c.archive.Save(c.ctx, facit); err != nil {
		log.Warn().Err(err).Str("facit_id", facit.ID).Msg("archive facit failed")
		return
	}
	log.Debug().Str("facit_id", facit.ID).Msg("facit archived")
}

func runEffects(fx []func()) {
	for _, f := range fx {
		f()
	}
}
