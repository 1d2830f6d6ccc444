package responder

import (
	"fmt"
	"strings"
	"unicode"
)

type Rule struct {
	Name     string
	Terms    []string
	Response string
}

// Match is the outcome of a selection.
type Match struct {
	Rule     string
	Response string
	Fallback bool
}

// MatchMode controls how a term is compared with the input.
type MatchMode string

const (
	// MatchSubstring fires when the term appears anywhere in the input,
	// so "1" also matches "call me after 1pm".
	MatchSubstring MatchMode = "substring"
	// MatchWord fires only when the term covers whole tokens.
	MatchWord MatchMode = "word"
)

func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchSubstring:
		return MatchSubstring, nil
	case MatchWord:
		return MatchWord, nil
	default:
		return "", fmt.Errorf("unknown match mode: %q", s)
	}
}

type Option func(*Selector)

func WithMatchMode(m MatchMode) Option {
	return func(s *Selector) { s.mode = m }
}

// Selector picks one canned reply per input from an ordered rule table.
// It holds no mutable state and is safe for concurrent use.
type Selector struct {
	rules    []compiledRule
	fallback Rule
	mode     MatchMode
}

type compiledRule struct {
	Rule
	// padded token form of each term, used by MatchWord
	wordTerms []string
}

func New(rules []Rule, fallback Rule, opts ...Option) *Selector {
	s := &Selector{fallback: fallback, mode: MatchSubstring}
	for _, o := range opts {
		o(s)
	}
	s.rules = make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		terms := make([]string, len(r.Terms))
		wordTerms := make([]string, 0, len(r.Terms))
		for i, t := range r.Terms {
			terms[i] = strings.ToLower(t)
			if w := padTokens(terms[i]); w != "  " {
				wordTerms = append(wordTerms, w)
			}
		}
		r.Terms = terms
		s.rules = append(s.rules, compiledRule{Rule: r, wordTerms: wordTerms})
	}
	return s
}

// Default returns a selector over DefaultRules with DefaultFallback.
func Default(opts ...Option) *Selector {
	return New(DefaultRules(), DefaultFallback(), opts...)
}

// Select returns the reply for input.
func (s *Selector) Select(input string) string {
	return s.Resolve(input).Response
}

// Resolve is Select that also reports which rule fired.
func (s *Selector) Resolve(input string) Match {
	normalized := strings.ToLower(strings.TrimSpace(input))
	var padded string
	if s.mode == MatchWord {
		padded = padTokens(normalized)
	}
	for _, r := range s.rules {
		if s.matches(r, normalized, padded) {
			return Match{Rule: r.Name, Response: r.Response}
		}
	}
	return Match{Rule: s.fallback.Name, Response: s.fallback.Response, Fallback: true}
}

func (s *Selector) matches(r compiledRule, normalized, padded string) bool {
	if s.mode == MatchWord {
		for _, t := range r.wordTerms {
			if strings.Contains(padded, t) {
				return true
			}
		}
		return false
	}
	for _, t := range r.Terms {
		if t != "" && strings.Contains(normalized, t) {
			return true
		}
	}
	return false
}

// Responses lists every reply the selector can produce, fallback last.
func (s *Selector) Responses() []string {
	out := make([]string, 0, len(s.rules)+1)
	for _, r := range s.rules {
		out = append(out, r.Response)
	}
	return append(out, s.fallback.Response)
}

func (s *Selector) Rules() []Rule {
	out := make([]Rule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, Rule{Name: r.Name, Terms: append([]string(nil), r.Terms...), Response: r.Response})
	}
	return out
}

func (s *Selector) Fallback() Rule { return s.fallback }

func (s *Selector) Mode() MatchMode { return s.mode }

// padTokens splits s into letter/digit runs and joins them with single
// spaces, with a space on each side.
func padTokens(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return " " + strings.Join(fields, " ") + " "
}
