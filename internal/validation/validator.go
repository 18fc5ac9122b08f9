package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/personal-blog-api/internal/content"
	"github.com/personal-blog-api/internal/models"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	slugRegex  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Validator checks posts and remembers the slugs it has accepted, so a batch
// (such as a seed fixture) can be checked for internal duplicates.
type Validator struct {
	slugCache map[string]bool
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		slugCache: make(map[string]bool),
	}
}

// AddSlug adds a slug to the uniqueness cache
func (v *Validator) AddSlug(slug string) {
	v.slugCache[slug] = true
}

// ValidatePost validates a post record within a batch
func (v *Validator) ValidatePost(post *models.PostInput) []ValidationError {
	errors := ValidatePostInput(post, true)
	if post.Slug != "" && v.slugCache[post.Slug] {
		errors = append(errors, ValidationError{Field: "slug", Message: "duplicate slug", Value: post.Slug})
	}
	return errors
}

// NormalizePostInput trims fields, lowercases the slug and drops empty tags
func NormalizePostInput(post *models.PostInput) {
	post.Title = strings.TrimSpace(post.Title)
	post.Slug = strings.ToLower(strings.TrimSpace(post.Slug))
	post.Summary = strings.TrimSpace(post.Summary)

	tags := make([]string, 0, len(post.Tags))
	for _, tag := range post.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	post.Tags = tags
}

// ValidatePostInput validates a normalized post. When requireSlug is false an
// empty slug is accepted (updates keep the current slug).
func ValidatePostInput(post *models.PostInput, requireSlug bool) []ValidationError {
	var errors []ValidationError

	// Validate title
	if post.Title == "" {
		errors = append(errors, ValidationError{Field: "title", Message: "Title is required"})
	} else if utf8.RuneCountInString(post.Title) > models.MaxTitleLength {
		errors = append(errors, ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("Title cannot exceed %d characters", models.MaxTitleLength),
		})
	}

	// Validate slug
	if post.Slug == "" {
		if requireSlug {
			errors = append(errors, ValidationError{Field: "slug", Message: "Slug is required"})
		}
	} else if !IsValidSlug(post.Slug) {
		errors = append(errors, ValidationError{
			Field:   "slug",
			Message: "Slug can only contain lowercase letters, numbers, and hyphens",
			Value:   post.Slug,
		})
	}

	// Validate summary
	if post.Summary == "" {
		errors = append(errors, ValidationError{Field: "summary", Message: "Summary is required"})
	} else if utf8.RuneCountInString(post.Summary) > models.MaxSummaryLength {
		errors = append(errors, ValidationError{
			Field:   "summary",
			Message: fmt.Sprintf("Summary cannot exceed %d characters", models.MaxSummaryLength),
		})
	}

	// Validate content
	if !content.HasText(post.Content) {
		errors = append(errors, ValidationError{Field: "content", Message: "Content is required"})
	}

	if post.ReadTime < 0 {
		errors = append(errors, ValidationError{Field: "readTime", Message: "readTime cannot be negative", Value: post.ReadTime})
	}

	return errors
}

// FromBindingError converts a gin binding failure into field errors. Errors
// that did not come from struct validation (malformed JSON) yield a single
// body-level error.
func FromBindingError(err error) []ValidationError {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []ValidationError{{Field: "body", Message: "Invalid request body"}}
	}

	out := make([]ValidationError, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		field := jsonName(fe.Field())
		var msg string
		switch fe.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", capitalize(field))
		case "email":
			msg = "Please enter a valid email"
		case "max":
			msg = fmt.Sprintf("%s cannot exceed %s characters", capitalize(field), fe.Param())
		default:
			msg = fmt.Sprintf("%s is invalid", capitalize(field))
		}
		out = append(out, ValidationError{Field: field, Message: msg})
	}
	return out
}

// IsValidSlug reports whether s is lowercase kebab-case
func IsValidSlug(s string) bool {
	return slugRegex.MatchString(s)
}

// IsValidEmail reports whether s looks like an email address
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// IsValidUUID checks if a string is a valid UUID
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func capitalize(field string) string {
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
