package chat

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"xai-assistant/internal/responder"
)

type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

// Remote is an external responder that may replace the local rule table.
type Remote interface {
	Respond(ctx context.Context, message string) (string, error)
}

type Reply struct {
	Content string
	Rule    string
	Source  Source
}

// Replier answers with the remote responder when one is configured and
// falls back to the local rule table on any remote failure.
type Replier struct {
	selector *responder.Selector
	remote   Remote
	timeout  time.Duration
	logger   *zap.Logger
}

type ReplierOption func(*Replier)

func WithRemote(r Remote) ReplierOption {
	return func(rp *Replier) { rp.remote = r }
}

func WithRemoteTimeout(d time.Duration) ReplierOption {
	return func(rp *Replier) { rp.timeout = d }
}

func WithReplierLogger(l *zap.Logger) ReplierOption {
	return func(rp *Replier) {
		if l != nil {
			rp.logger = l
		}
	}
}

func NewReplier(selector *responder.Selector, opts ...ReplierOption) *Replier {
	r := &Replier{selector: selector, logger: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Replier) Selector() *responder.Selector { return r.selector }

func (r *Replier) Reply(ctx context.Context, input string) Reply {
	if r.remote != nil {
		content, err := r.callRemote(ctx, input)
		if err == nil {
			return Reply{Content: content, Source: SourceRemote}
		}
		r.logger.Warn("remote responder failed, using local rules", zap.Error(err))
	}
	m := r.selector.Resolve(input)
	return Reply{Content: m.Response, Rule: m.Rule, Source: SourceLocal}
}

func (r *Replier) callRemote(ctx context.Context, input string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	content, err := r.remote.Respond(ctx, input)
	if err != nil {
		return "", err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errEmptyRemoteReply
	}
	return content, nil
}
