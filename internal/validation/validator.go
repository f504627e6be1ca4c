package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/content-lifecycle-console/internal/apperr"
	"github.com/content-lifecycle-console/internal/models"
)

// MinRejectionReasonWords is the minimum number of words a video rejection reason needs
const MinRejectionReasonWords = 10

// MaxTitleLength bounds content titles
const MaxTitleLength = 200

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// WordCount splits on whitespace and ignores empty tokens
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// ValidateRejectionReason checks the reason attached to a video rejection
func ValidateRejectionReason(reason string) []apperr.FieldError {
	var errors []apperr.FieldError

	if strings.TrimSpace(reason) == "" {
		errors = append(errors, apperr.FieldError{Field: "reason", Message: "rejection reason is required"})
		return errors
	}

	if n := WordCount(reason); n < MinRejectionReasonWords {
		errors = append(errors, apperr.FieldError{
			Field:   "reason",
			Message: fmt.Sprintf("rejection reason must contain at least %d words (has %d)", MinRejectionReasonWords, n),
			Value:   reason,
		})
	}

	return errors
}

// ValidateEmail checks an email address format
func ValidateEmail(email string) []apperr.FieldError {
	var errors []apperr.FieldError

	if email == "" {
		errors = append(errors, apperr.FieldError{Field: "email", Message: "email is required"})
	} else if !emailRegex.MatchString(email) {
		errors = append(errors, apperr.FieldError{Field: "email", Message: "invalid email format", Value: email})
	}

	return errors
}

// ValidateSession validates client state before it is persisted
func ValidateSession(session *models.Session) []apperr.FieldError {
	var errors []apperr.FieldError

	if session == nil {
		return append(errors, apperr.FieldError{Field: "session", Message: "session is required"})
	}

	if session.AccessToken == "" {
		errors = append(errors, apperr.FieldError{Field: "access_token", Message: "access_token is required"})
	}

	if session.User == nil {
		errors = append(errors, apperr.FieldError{Field: "user", Message: "user is required"})
		return errors
	}

	if session.User.ID <= 0 {
		errors = append(errors, apperr.FieldError{Field: "user.id", Message: "user id must be positive", Value: session.User.ID})
	}
	if session.User.Email != "" {
		for _, e := range ValidateEmail(session.User.Email) {
			e.Field = "user.email"
			errors = append(errors, e)
		}
	}
	if !models.ValidRoles[session.User.Role] {
		errors = append(errors, apperr.FieldError{
			Field:   "user.role",
			Message: "invalid role, must be one of: Creator, Viewer, Admin",
			Value:   session.User.Role,
		})
	}

	return errors
}

// ValidateContentForm validates a create (creating=true) or update form for the given kind
func ValidateContentForm(kind models.ContentKind, form models.ContentForm, creating bool) []apperr.FieldError {
	var errors []apperr.FieldError

	// Validate title
	if form.Title != nil {
		title := strings.TrimSpace(*form.Title)
		if title == "" {
			errors = append(errors, apperr.FieldError{Field: "title", Message: "title is required"})
		} else if len(title) > MaxTitleLength {
			errors = append(errors, apperr.FieldError{
				Field:   "title",
				Message: fmt.Sprintf("title exceeds maximum of %d characters", MaxTitleLength),
			})
		}
	} else if creating {
		errors = append(errors, apperr.FieldError{Field: "title", Message: "title is required"})
	}

	// Validate body
	if form.Body != nil {
		if strings.TrimSpace(*form.Body) == "" {
			errors = append(errors, apperr.FieldError{Field: bodyField(kind), Message: bodyField(kind) + " is required"})
		}
	} else if creating {
		errors = append(errors, apperr.FieldError{Field: bodyField(kind), Message: bodyField(kind) + " is required"})
	}

	// Creators may only save drafts or submit them
	if form.Status != nil && *form.Status != models.StatusDraft && *form.Status != models.StatusPendingApproval {
		errors = append(errors, apperr.FieldError{
			Field:   "status",
			Message: "status must be one of: draft, pending_approval",
			Value:   *form.Status,
		})
	}

	switch kind {
	case models.KindBlog:
		if form.Video != nil || form.Thumbnail != nil {
			errors = append(errors, apperr.FieldError{Field: "video", Message: "blogs do not accept video uploads"})
		}
		if form.Image != nil && !hasMediaPrefix(form.Image, "image/") {
			errors = append(errors, apperr.FieldError{Field: "image", Message: "image must be an image file", Value: form.Image.ContentType})
		}
	case models.KindVideo:
		if form.Image != nil {
			errors = append(errors, apperr.FieldError{Field: "image", Message: "videos do not accept image uploads, use thumbnail"})
		}
		if creating && form.Video == nil {
			errors = append(errors, apperr.FieldError{Field: "video", Message: "video file is required"})
		}
		if form.Video != nil && !hasMediaPrefix(form.Video, "video/") {
			errors = append(errors, apperr.FieldError{Field: "video", Message: "video must be a video file", Value: form.Video.ContentType})
		}
		if form.Thumbnail != nil && !hasMediaPrefix(form.Thumbnail, "image/") {
			errors = append(errors, apperr.FieldError{Field: "thumbnail", Message: "thumbnail must be an image file", Value: form.Thumbnail.ContentType})
		}
	default:
		errors = append(errors, apperr.FieldError{Field: "kind", Message: "unknown content kind", Value: kind})
	}

	return errors
}

func bodyField(kind models.ContentKind) string {
	if kind == models.KindVideo {
		return "description"
	}
	return "content"
}

func hasMediaPrefix(u *models.Upload, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(u.ContentType), prefix)
}
