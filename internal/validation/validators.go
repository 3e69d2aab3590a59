package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/benvon/second-brain/internal/models"
	"github.com/go-playground/validator/v10"
)

// MaxTags caps how many tags a note may carry
const MaxTags = 50

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("note_type", validateNoteType); err != nil {
		panic(fmt.Sprintf("failed to register note_type validator: %v", err))
	}
}

func validateNoteType(fl validator.FieldLevel) bool {
	return models.NoteType(fl.Field().String()).IsValid()
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// SanitizeTags trims each tag, drops empty ones and removes exact duplicates.
// Case is preserved; themes are normalized at analysis time.
func SanitizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = SanitizeText(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ValidateNoteType validates a NoteType string value
func ValidateNoteType(value string) error {
	if !models.NoteType(value).IsValid() {
		return fmt.Errorf("invalid type: %s (must be 'note', 'link', or 'insight')", value)
	}
	return nil
}

// FormatErrors turns validator errors into one readable message
func FormatErrors(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", lowerFirst(fe.Field())))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", lowerFirst(fe.Field()), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", lowerFirst(fe.Field())))
		}
	}
	return strings.Join(msgs, "; ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
