package commands

import "github.com/benvon/second-brain/internal/models"

type sample struct {
	title   string
	content string
	kind    models.NoteType
	tags    []string
	// ageDays spreads the samples across the timeline
	ageDays int
}

var samples = []sample{
	{
		title:   "The PARA Method",
		content: "Organize information by actionability: Projects, Areas, Resources, Archives. Projects have deadlines, areas are ongoing responsibilities, resources are topics of interest and archives hold everything inactive.",
		kind:    models.NoteTypeNote,
		tags:    []string{"productivity", "organization", "system", "second-brain"},
		ageDays: 1,
	},
	{
		title:   "Understanding LLMs and Transformers",
		content: "Large language models predict the next token. The transformer architecture relies on self-attention, which lets every token weigh every other token in the context window.",
		kind:    models.NoteTypeInsight,
		tags:    []string{"AI", "machine-learning", "tech", "future"},
		ageDays: 3,
	},
	{
		title:   "Dieter Rams: Good Design is Less Design",
		content: "Good design is innovative, useful, aesthetic, understandable and unobtrusive. Less, but better: concentrate on the essential aspects so products are not burdened with non-essentials.",
		kind:    models.NoteTypeNote,
		tags:    []string{"design", "minimalism", "principles", "UX"},
		ageDays: 9,
	},
	{
		title:   "Zone 2 Training for Longevity",
		content: "Zone 2 cardio is steady effort where you can still hold a conversation. It builds mitochondrial density and metabolic flexibility; three to four hours a week is a common target.",
		kind:    models.NoteTypeNote,
		tags:    []string{"health", "fitness", "biohacking", "longevity"},
		ageDays: 16,
	},
	{
		title:   "Stoicism: The Dichotomy of Control",
		content: "Some things are within our control and some are not. Peace comes from focusing effort on our own judgments and actions and accepting the rest.",
		kind:    models.NoteTypeInsight,
		tags:    []string{"philosophy", "mindset", "stoicism", "mental-health"},
		ageDays: 40,
	},
}
