package validation

import (
	"strings"
	"testing"

	"github.com/content-lifecycle-console/internal/apperr"
	"github.com/content-lifecycle-console/internal/models"
)

func strPtr(s string) *string { return &s }

func hasField(errors []apperr.FieldError, field string) bool {
	for _, err := range errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

func TestValidateRejectionReason(t *testing.T) {
	tests := []struct {
		name       string
		reason     string
		wantErrors int
	}{
		{name: "empty reason", reason: "", wantErrors: 1},
		{name: "whitespace only", reason: "   \t\n ", wantErrors: 1},
		{name: "single word", reason: "bad", wantErrors: 1},
		{name: "nine words", reason: "one two three four five six seven eight nine", wantErrors: 1},
		{name: "exactly ten words", reason: "one two three four five six seven eight nine ten", wantErrors: 0},
		{
			name:       "ten words with irregular whitespace",
			reason:     "  one  two\tthree\nfour five   six seven eight nine ten  ",
			wantErrors: 0,
		},
		{
			name:       "long reason",
			reason:     "The audio track contains copyrighted music that was not licensed for redistribution on this platform",
			wantErrors: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := ValidateRejectionReason(tt.reason)
			if len(errors) != tt.wantErrors {
				t.Errorf("ValidateRejectionReason() got %d errors, want %d. Errors: %v", len(errors), tt.wantErrors, errors)
			}
			if tt.wantErrors > 0 && !hasField(errors, "reason") {
				t.Errorf("Expected error for field 'reason' but not found")
			}
		})
	}
}

func TestValidateRejectionReason_ReportsWordCount(t *testing.T) {
	errors := ValidateRejectionReason("too short to count")
	if len(errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errors))
	}
	if !strings.Contains(errors[0].Message, "(has 4)") {
		t.Errorf("message should report the word count, got %q", errors[0].Message)
	}
}

func TestWordCount(t *testing.T) {
	tests := map[string]int{
		"":                 0,
		"   ":              0,
		"word":             1,
		"two  words":       2,
		"\ttabs\tand\nnl ": 3,
	}
	for input, want := range tests {
		if got := WordCount(input); got != want {
			t.Errorf("WordCount(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email      string
		wantErrors int
	}{
		{"admin@example.com", 0},
		{"first.last+tag@sub.example.org", 0},
		{"", 1},
		{"not-an-email", 1},
		{"missing@tld", 1},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			errors := ValidateEmail(tt.email)
			if len(errors) != tt.wantErrors {
				t.Errorf("ValidateEmail(%q) got %d errors, want %d", tt.email, len(errors), tt.wantErrors)
			}
		})
	}
}

func TestValidateSession(t *testing.T) {
	tests := []struct {
		name       string
		session    *models.Session
		wantErrors int
		wantFields []string
	}{
		{
			name: "valid admin session",
			session: &models.Session{
				AccessToken:  "token",
				RefreshToken: "refresh",
				User:         &models.User{ID: 1, Username: "admin", Email: "admin@example.com", Role: models.RoleAdmin},
			},
			wantErrors: 0,
		},
		{
			name:       "nil session",
			session:    nil,
			wantErrors: 1,
			wantFields: []string{"session"},
		},
		{
			name:       "missing token and user",
			session:    &models.Session{},
			wantErrors: 2,
			wantFields: []string{"access_token", "user"},
		},
		{
			name: "bad email and role",
			session: &models.Session{
				AccessToken: "token",
				User:        &models.User{ID: 3, Email: "nope", Role: "Owner"},
			},
			wantErrors: 2,
			wantFields: []string{"user.email", "user.role"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := ValidateSession(tt.session)
			if len(errors) != tt.wantErrors {
				t.Errorf("ValidateSession() got %d errors, want %d. Errors: %v", len(errors), tt.wantErrors, errors)
			}
			for _, field := range tt.wantFields {
				if !hasField(errors, field) {
					t.Errorf("Expected error for field '%s' but not found", field)
				}
			}
		})
	}
}

func TestValidateContentForm(t *testing.T) {
	pending := models.StatusPendingApproval
	published := models.StatusPublished

	tests := []struct {
		name       string
		kind       models.ContentKind
		form       models.ContentForm
		creating   bool
		wantErrors int
		wantFields []string
	}{
		{
			name:     "valid blog create",
			kind:     models.KindBlog,
			form:     models.ContentForm{Title: strPtr("Hello"), Body: strPtr("World"), Image: &models.Upload{Filename: "a.png", ContentType: "image/png"}},
			creating: true,
		},
		{
			name:       "blog create missing fields",
			kind:       models.KindBlog,
			form:       models.ContentForm{},
			creating:   true,
			wantErrors: 2,
			wantFields: []string{"title", "content"},
		},
		{
			name:     "blog update with only title",
			kind:     models.KindBlog,
			form:     models.ContentForm{Title: strPtr("New title")},
			creating: false,
		},
		{
			name:       "blog with pdf as image",
			kind:       models.KindBlog,
			form:       models.ContentForm{Image: &models.Upload{Filename: "a.pdf", ContentType: "application/pdf"}},
			wantErrors: 1,
			wantFields: []string{"image"},
		},
		{
			name:       "creator cannot set published",
			kind:       models.KindBlog,
			form:       models.ContentForm{Status: &published},
			wantErrors: 1,
			wantFields: []string{"status"},
		},
		{
			name:     "creator may submit",
			kind:     models.KindBlog,
			form:     models.ContentForm{Status: &pending},
			creating: false,
		},
		{
			name:       "video create requires file",
			kind:       models.KindVideo,
			form:       models.ContentForm{Title: strPtr("Clip"), Body: strPtr("desc")},
			creating:   true,
			wantErrors: 1,
			wantFields: []string{"video"},
		},
		{
			name: "valid video create",
			kind: models.KindVideo,
			form: models.ContentForm{
				Title:     strPtr("Clip"),
				Body:      strPtr("desc"),
				Video:     &models.Upload{Filename: "clip.mp4", ContentType: "video/mp4"},
				Thumbnail: &models.Upload{Filename: "thumb.jpg", ContentType: "image/jpeg"},
			},
			creating: true,
		},
		{
			name:       "video empty description",
			kind:       models.KindVideo,
			form:       models.ContentForm{Body: strPtr("  ")},
			wantErrors: 1,
			wantFields: []string{"description"},
		},
		{
			name:       "title too long",
			kind:       models.KindBlog,
			form:       models.ContentForm{Title: strPtr(strings.Repeat("x", MaxTitleLength+1))},
			wantErrors: 1,
			wantFields: []string{"title"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := ValidateContentForm(tt.kind, tt.form, tt.creating)
			if len(errors) != tt.wantErrors {
				t.Errorf("ValidateContentForm() got %d errors, want %d. Errors: %v", len(errors), tt.wantErrors, errors)
			}
			for _, field := range tt.wantFields {
				if !hasField(errors, field) {
					t.Errorf("Expected error for field '%s' but not found", field)
				}
			}
		})
	}
}
