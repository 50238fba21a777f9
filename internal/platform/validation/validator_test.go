package validation

import (
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type sample struct {
	Kind  string  `json:"kind" validate:"required,oneof=alpha beta"`
	Label string  `json:"label" validate:"max=5"`
	Note  *string `json:"note,omitempty" validate:"omitempty,min=2"`
	Skip  string  `json:"-" validate:"required"`
}

func TestValidate_OK(t *testing.T) {
	if err := New().Validate(&sample{Kind: "alpha", Label: "abc", Skip: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Messages(t *testing.T) {
	note := "x"
	err := New().Validate(&sample{Kind: "gamma", Label: "toolong", Note: &note})

	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}

	msg, _ := httpErr.Message.(string)
	for _, want := range []string{
		"kind must be one of [alpha beta], got gamma",
		"label must be at most 5 characters",
		"note failed min validation",
		"Skip is required",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestValidate_Required(t *testing.T) {
	err := New().Validate(&sample{Skip: "x"})
	if err == nil || !strings.Contains(err.(*echo.HTTPError).Message.(string), "kind is required") {
		t.Fatalf("expected required error, got %v", err)
	}
}
