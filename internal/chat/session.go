package chat

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"xai-assistant/internal/history"
	"xai-assistant/internal/responder"
)

// WelcomeTurnID is the id of the greeting every session starts with.
const WelcomeTurnID = "welcome"

const (
	DefaultDelayMin    = 1200 * time.Millisecond
	DefaultDelayJitter = 800 * time.Millisecond
)

var (
	ErrEmptyInput = errors.New("chat: empty input")
	ErrBusy       = errors.New("chat: previous message still awaiting a response")
	ErrClosed     = errors.New("chat: session closed")

	errEmptyRemoteReply = errors.New("chat: remote returned empty reply")
)

type State int

const (
	StateIdle State = iota
	StateAwaitingResponse
)

func (s State) String() string {
	if s == StateAwaitingResponse {
		return "awaiting_response"
	}
	return "idle"
}

// Exchange is reported to listeners once an assistant turn is appended.
type Exchange struct {
	SessionID string
	Channel   string
	User      history.Turn
	Assistant history.Turn
	Rule      string
	Source    Source
}

// Listener is called from the reply goroutine. It must not call Close on
// the session that invoked it.
type Listener func(Exchange)

type SessionOption func(*Session)

// WithDelay sets the simulated thinking time before each reply.
func WithDelay(f func() time.Duration) SessionOption {
	return func(s *Session) { s.delay = f }
}

func WithListener(l Listener) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.listeners = append(s.listeners, l)
		}
	}
}

func WithSessionLogger(l *zap.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithHistory(opts ...history.Option) SessionOption {
	return func(s *Session) { s.historyOpts = append(s.historyOpts, opts...) }
}

// RandomDelay returns a delay function yielding min plus a uniform jitter in [0, jitter).
func RandomDelay(min, jitter time.Duration) func() time.Duration {
	return func() time.Duration {
		if jitter <= 0 {
			return min
		}
		return min + rand.N(jitter)
	}
}

// Session owns one conversation: its turn log and the busy gate that
// allows a single pending reply at a time.
type Session struct {
	id        string
	channel   string
	createdAt time.Time

	replier     *Replier
	log         *history.Log
	historyOpts []history.Option
	delay       func() time.Duration
	listeners   []Listener
	logger      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	state   State
	closed  bool
	idle    chan struct{}
	subs    map[int]Listener
	nextSub int
}

func NewSession(id, channel string, replier *Replier, opts ...SessionOption) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:        id,
		channel:   channel,
		createdAt: time.Now().UTC(),
		replier:   replier,
		delay:     RandomDelay(DefaultDelayMin, DefaultDelayJitter),
		logger:    zap.NewNop(),
		ctx:       ctx,
		cancel:    cancel,
		state:     StateIdle,
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With(zap.String("session_id", id), zap.String("channel", channel))
	s.log = history.NewLog(s.historyOpts...)
	s.log.AppendWithID(WelcomeTurnID, history.RoleAssistant, responder.WelcomeMessage)
	return s
}

func (s *Session) ID() string           { return s.id }
func (s *Session) Channel() string      { return s.channel }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) Turns() []history.Turn {
	return s.log.Turns()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit appends the user turn and schedules the assistant reply. Blank
// input is ignored with ErrEmptyInput; a submit while a reply is pending
// is rejected with ErrBusy. In both cases nothing is appended.
func (s *Session) Submit(input string) (history.Turn, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return history.Turn{}, ErrEmptyInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return history.Turn{}, ErrClosed
	}
	if s.state == StateAwaitingResponse {
		s.logger.Debug("submit rejected, reply pending")
		return history.Turn{}, ErrBusy
	}

	user := s.log.AppendUser(text)
	s.state = StateAwaitingResponse
	done := make(chan struct{})
	s.idle = done

	s.wg.Add(1)
	go s.respond(user, done)

	s.logger.Debug("user turn accepted", zap.String("turn_id", user.ID))
	return user, nil
}

func (s *Session) respond(user history.Turn, done chan struct{}) {
	defer s.wg.Done()
	defer close(done)

	if d := s.delay(); d > 0 {
		timer := time.NewTimer(d)
		select {
		case <-s.ctx.Done():
			timer.Stop()
			s.setIdle()
			return
		case <-timer.C:
		}
	}

	reply := s.replier.Reply(s.ctx, user.Content)

	s.mu.Lock()
	if s.closed {
		s.state = StateIdle
		s.mu.Unlock()
		return
	}
	assistant := s.log.AppendAssistant(reply.Content)
	s.state = StateIdle
	listeners := append([]Listener(nil), s.listeners...)
	for _, l := range s.subs {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	s.logger.Info("reply sent",
		zap.String("rule", reply.Rule),
		zap.String("source", string(reply.Source)))

	ex := Exchange{
		SessionID: s.id,
		Channel:   s.channel,
		User:      user,
		Assistant: assistant,
		Rule:      reply.Rule,
		Source:    reply.Source,
	}
	for _, l := range listeners {
		l(ex)
	}
}

// Subscribe registers l for every later exchange until unsubscribe is
// called. turns is the log at the moment of subscribing: every assistant
// turn is either in turns or delivered to l, never both.
func (s *Session) Subscribe(l Listener) (turns []history.Turn, unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]Listener)
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = l
	return s.log.Turns(), func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) setIdle() {
	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()
}

// Wait blocks until no reply is pending or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.idle
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels a pending reply and waits for it to stop. No turn is
// appended after Close returns.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.logger.Debug("session closed")
}
