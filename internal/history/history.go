package history

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation. Turns are never modified after
// they are appended.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Log is the insertion-ordered turn log of a single session.
type Log struct {
	mu    sync.RWMutex
	turns []Turn
	now   func() time.Time
	newID func() string
}

type Option func(*Log)

func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

func WithIDGenerator(f func() string) Option {
	return func(l *Log) { l.newID = f }
}

func NewLog(opts ...Option) *Log {
	l := &Log{now: time.Now, newID: uuid.NewString}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *Log) AppendUser(content string) Turn {
	return l.Append(RoleUser, content)
}

func (l *Log) AppendAssistant(content string) Turn {
	return l.Append(RoleAssistant, content)
}

func (l *Log) Append(role Role, content string) Turn {
	return l.AppendWithID(l.newID(), role, content)
}

func (l *Log) AppendWithID(id string, role Role, content string) Turn {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := Turn{ID: id, Role: role, Content: content, Timestamp: l.now()}
	l.turns = append(l.turns, t)
	return t
}

// Turns returns a copy of the log.
func (l *Log) Turns() []Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

func (l *Log) Last() (Turn, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.turns) == 0 {
		return Turn{}, false
	}
	return l.turns[len(l.turns)-1], true
}
