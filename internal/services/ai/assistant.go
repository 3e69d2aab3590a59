package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/benvon/second-brain/internal/models"
)

// ChatContextSize is how many recent notes are given to chat as knowledge
const ChatContextSize = 20

// Assistant implements the note-level AI features on top of a Router
type Assistant struct {
	router *Router
}

// NewAssistant creates a new assistant
func NewAssistant(router *Router) *Assistant {
	return &Assistant{router: router}
}

// Summarize returns a one-sentence summary of text
func (a *Assistant) Summarize(ctx context.Context, preference, text string) (string, error) {
	prompt := "Summarize this note in one sentence:\n\n" + text
	out, err := Generate(ctx, a.router.For(preference), "summarize", prompt)
	if err != nil {
		return "", fmt.Errorf("failed to summarize: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// GenerateTags asks for three short tags for a note
func (a *Assistant) GenerateTags(ctx context.Context, preference, title, content string) ([]string, error) {
	prompt := fmt.Sprintf("Give 3 short tags for this note.\nTitle: %s\nContent: %s\nReturn comma-separated tags only, no numbering.", title, content)
	out, err := Generate(ctx, a.router.For(preference), "generate_tags", prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tags: %w", err)
	}
	return ParseTags(out), nil
}

// Chat answers the conversation using knowledge as grounding context
func (a *Assistant) Chat(ctx context.Context, preference string, messages []ChatMessage, knowledge []*models.Note) (string, error) {
	out, err := a.router.For(preference).Complete(ctx, CompletionRequest{
		Operation: "chat",
		System:    chatSystemPrompt(knowledge),
		Messages:  messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to chat: %w", err)
	}
	return out, nil
}

// ParseTags splits a comma-separated model answer into trimmed, non-empty tags
func ParseTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// MergeTags returns the union of existing and added, keeping first occurrence order
func MergeTags(existing, added []string) []string {
	merged := make([]string, 0, len(existing)+len(added))
	seen := make(map[string]struct{}, len(existing)+len(added))
	for _, list := range [][]string{existing, added} {
		for _, t := range list {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			merged = append(merged, t)
		}
	}
	return merged
}

func chatSystemPrompt(knowledge []*models.Note) string {
	if len(knowledge) == 0 {
		return "You are a helpful assistant."
	}
	blocks := make([]string, 0, len(knowledge))
	for _, k := range knowledge {
		blocks = append(blocks, "### "+k.Title+"\n"+k.Content)
	}
	return "You are a helpful assistant. Use the following knowledge to help answer questions:\n\n" + strings.Join(blocks, "\n\n")
}
