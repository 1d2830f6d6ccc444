package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"xai-assistant/internal/responder"
)

func TestReplier_LocalOnly(t *testing.T) {
	r := NewReplier(responder.Default())
	got := r.Reply(context.Background(), "namaste")
	if got.Source != SourceLocal || got.Rule != responder.RuleGreetingHindi {
		t.Fatalf("unexpected reply: %+v", got)
	}
}

func TestReplier_RemoteSuccess(t *testing.T) {
	r := NewReplier(responder.Default(), WithRemote(&fakeRemote{content: "  remote says hi \n"}))
	got := r.Reply(context.Background(), "hello")
	if got.Source != SourceRemote || got.Content != "remote says hi" || got.Rule != "" {
		t.Fatalf("unexpected reply: %+v", got)
	}
}

func TestReplier_FallsBackSilently(t *testing.T) {
	cases := map[string]Remote{
		"error": &fakeRemote{err: errors.New("boom")},
		"empty": &fakeRemote{content: "   "},
	}
	for name, remote := range cases {
		r := NewReplier(responder.Default(), WithRemote(remote))
		got := r.Reply(context.Background(), "contact")
		if got.Source != SourceLocal || got.Rule != responder.RuleContact {
			t.Fatalf("%s: want local contact reply, got %+v", name, got)
		}
	}
}

func TestReplier_RemoteTimeout(t *testing.T) {
	remote := &fakeRemote{content: "late", gate: make(chan struct{})}
	r := NewReplier(responder.Default(), WithRemote(remote), WithRemoteTimeout(20*time.Millisecond))
	got := r.Reply(context.Background(), "pricing")
	if got.Source != SourceLocal || got.Rule != responder.RulePricing {
		t.Fatalf("want local fallback on timeout, got %+v", got)
	}
}
