package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestFromStatus_Classification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		serverMsg   string
		wantKind    Kind
		wantContain string
	}{
		{"not found", http.StatusNotFound, "", KindNotFound, "not found"},
		{"forbidden", http.StatusForbidden, "", KindPermissionDenied, "permission"},
		{"unauthorized", http.StatusUnauthorized, "token expired", KindAuthenticationFailed, "Authentication failed"},
		{"server error with message", http.StatusInternalServerError, "database is down", KindNetworkOrUnknown, "database is down"},
		{"bad request without message", http.StatusBadRequest, "", KindNetworkOrUnknown, "network error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStatus("delete video", tt.status, tt.serverMsg)
			if err.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", err.Kind, tt.wantKind)
			}
			if !strings.Contains(err.Message(), tt.wantContain) {
				t.Errorf("Message() = %q, want it to contain %q", err.Message(), tt.wantContain)
			}
		})
	}
}

func TestGenericMessageIncludesAction(t *testing.T) {
	err := FromStatus("reject blog", http.StatusBadGateway, "upstream timeout")
	want := "Failed to reject blog: upstream timeout"
	if err.Message() != want {
		t.Errorf("Message() = %q, want %q", err.Message(), want)
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	base := Busy("approve blog")
	wrapped := fmt.Errorf("handler: %w", base)

	if KindOf(wrapped) != KindBusy {
		t.Errorf("KindOf(wrapped) = %s, want %s", KindOf(wrapped), KindBusy)
	}
	if KindOf(errors.New("plain")) != KindNetworkOrUnknown {
		t.Error("plain errors should classify as network_or_unknown")
	}
	if MessageOf(wrapped) != msgBusy {
		t.Errorf("MessageOf(wrapped) = %q", MessageOf(wrapped))
	}
}

func TestValidationMessage(t *testing.T) {
	err := Validation(FieldError{Field: "reason", Message: "reason must contain at least 10 words"})
	if err.Message() != "reason must contain at least 10 words" {
		t.Errorf("Message() = %q", err.Message())
	}
	if err.Kind.HTTPStatus() != http.StatusUnprocessableEntity {
		t.Errorf("HTTPStatus() = %d", err.Kind.HTTPStatus())
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Network("load blogs", cause)
	if !errors.Is(err, cause) {
		t.Error("Network error should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() = %q should include the cause", err.Error())
	}
}
