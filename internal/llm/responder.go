package llm

import (
	"context"
	"errors"
	"os"
	"strings"

	"xai-assistant/internal/responder"
)

var errEmptyCompletion = errors.New("llm: empty completion")

// Responder answers a single visitor message with an LLM. It satisfies the
// chat remote interface, so any failure here falls back to the rule table.
type Responder struct {
	client       Client
	systemPrompt string
}

func NewResponder(client Client, systemPrompt string) *Responder {
	return &Responder{client: client, systemPrompt: systemPrompt}
}

func (r *Responder) Respond(ctx context.Context, message string) (string, error) {
	var msgs []Message
	if r.systemPrompt != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: r.systemPrompt})
	}
	msgs = append(msgs, Message{Role: RoleUser, Content: message})

	resp, err := r.client.Generate(ctx, msgs)
	if err != nil {
		return "", err
	}
	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", errEmptyCompletion
	}
	return content, nil
}

// LoadSystemPrompt reads the prompt at path, or builds one from the rule
// table when the file is missing or empty.
func LoadSystemPrompt(path string, rules []responder.Rule) string {
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if s := strings.TrimSpace(string(data)); s != "" {
				return s
			}
		}
	}
	return BuildSystemPrompt(rules)
}

// BuildSystemPrompt describes the company's services and contact details
// using the canned answers, so the model stays on the same facts.
func BuildSystemPrompt(rules []responder.Rule) string {
	var b strings.Builder
	b.WriteString("You are the website assistant of Xai-industries, an AI automation and consulting company. ")
	b.WriteString("Answer in a short, professional consulting tone. ")
	b.WriteString("Never quote prices; send pricing and off-topic questions to the management team. ")
	b.WriteString("Reply in Hinglish if the visitor greets in Hindi.\n\nReference answers:\n")
	for _, r := range rules {
		b.WriteString("\n[")
		b.WriteString(r.Name)
		b.WriteString("]\n")
		b.WriteString(r.Response)
		b.WriteString("\n")
	}
	return b.String()
}
