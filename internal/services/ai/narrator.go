package ai

import (
	"context"
	"fmt"
	"strings"

	logpkg "github.com/benvon/second-brain/internal/logger"
	"github.com/benvon/second-brain/internal/models"
	"go.uber.org/zap"
)

// MaxSampleTitles caps how many note titles are shown to the model
const MaxSampleTitles = 5

// NarrationRecorder observes narration outcomes
type NarrationRecorder interface {
	ObserveNarration(fallback bool)
}

// InsightNarrator turns a detected theme into one readable sentence
type InsightNarrator struct {
	provider Provider
	logger   *zap.Logger
	recorder NarrationRecorder
}

// NewInsightNarrator creates a narrator. recorder may be nil.
func NewInsightNarrator(provider Provider, logger *zap.Logger, recorder NarrationRecorder) *InsightNarrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightNarrator{provider: provider, logger: logger, recorder: recorder}
}

// Narrate never fails: any provider error or empty answer yields the
// deterministic sentence from FallbackInsight.
func (n *InsightNarrator) Narrate(ctx context.Context, theme string, count int, titles []string, period models.Period) string {
	if n.provider != nil {
		out, err := Generate(ctx, n.provider, "generate_insight", insightPrompt(theme, count, titles, period))
		out = strings.TrimSpace(out)
		if err == nil && out != "" {
			n.observe(false)
			return out
		}
		if err == nil {
			err = ErrEmptyResponse
		}
		n.logger.Warn("insight_narration_fallback",
			zap.String("theme", logpkg.SanitizeString(theme, 100)),
			zap.String("period", string(period)),
			zap.String("error", logpkg.SanitizeError(err)),
		)
	}
	n.observe(true)
	return FallbackInsight(theme, count, period)
}

func (n *InsightNarrator) observe(fallback bool) {
	if n.recorder != nil {
		n.recorder.ObserveNarration(fallback)
	}
}

// FallbackInsight is the template sentence used when no model answer is available
func FallbackInsight(theme string, count int, period models.Period) string {
	return fmt.Sprintf("You've written %d notes about \"%s\" %s.", count, theme, fallbackPhrase(period))
}

func fallbackPhrase(period models.Period) string {
	switch period {
	case models.PeriodLast7Days:
		return "in the past week"
	case models.PeriodLast30Days:
		return "in the past month"
	default:
		return "across all your notes"
	}
}

func promptPeriodLabel(period models.Period) string {
	switch period {
	case models.PeriodLast7Days:
		return "the past week"
	case models.PeriodLast30Days:
		return "the past month"
	default:
		return "all time"
	}
}

func insightPrompt(theme string, count int, titles []string, period models.Period) string {
	if len(titles) > MaxSampleTitles {
		titles = titles[:MaxSampleTitles]
	}
	lines := make([]string, 0, len(titles))
	for _, t := range titles {
		lines = append(lines, fmt.Sprintf("- \"%s\"", t))
	}

	var b strings.Builder
	b.WriteString("You are analyzing a user's personal knowledge base. Generate a single, concise, insightful observation about this pattern:\n\n")
	fmt.Fprintf(&b, "Theme: \"%s\"\n", theme)
	fmt.Fprintf(&b, "Number of notes: %d\n", count)
	fmt.Fprintf(&b, "Time period: %s\n", promptPeriodLabel(period))
	b.WriteString("Sample note titles:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nWrite ONE sentence that is observational and insightful. Examples:\n")
	b.WriteString("- \"You've written 12 notes about AI agents in the past week, this topic is clearly on your mind.\"\n")
	b.WriteString("- \"Your interest in machine learning has grown steadily over the past month with 8 related notes.\"\n\n")
	b.WriteString("Return ONLY the insight sentence, nothing else.")
	return b.String()
}
