package errors

import (
	"fmt"
	"testing"
)

func TestAppError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeSinkNotConnected, "sink not connected")
	if err.Code != ErrCodeSinkNotConnected {
		t.Errorf("expected code %s, got %s", ErrCodeSinkNotConnected, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeCommandFailed, "command failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	// Test Is function
	if !Is(wrapped, ErrCodeCommandFailed) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeSinkFailed) {
		t.Error("Is should return false for non-matching code")
	}

	// Test WithDetail
	detailed := err.WithDetail("op", "clear").WithDetail("attempt", 2)
	if detailed.Details["op"] != "clear" {
		t.Error("WithDetail should add details")
	}
}

func TestIsFollowsNestedCauses(t *testing.T) {
	inner := CommandFailed("osascript", fmt.Errorf("exit status 1"))
	outer := SourceFailed("safari", inner)
	wrapped := fmt.Errorf("tick: %w", outer)

	if !Is(wrapped, ErrCodeSourceFailed) {
		t.Error("Is should find the outer code through fmt wrapping")
	}
	if !Is(wrapped, ErrCodeCommandFailed) {
		t.Error("Is should find a code nested in the cause chain")
	}
	if GetCode(wrapped) != ErrCodeSourceFailed {
		t.Errorf("GetCode should return the outermost code, got %s", GetCode(wrapped))
	}

	appErr, ok := As(wrapped)
	if !ok || appErr.Details["source"] != "safari" {
		t.Error("As should return the outermost AppError")
	}
}

func TestErrorConstructors(t *testing.T) {
	// Test ConfigNotFound
	err := ConfigNotFound("sites.json")
	if err.Code != ErrCodeConfigNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeConfigNotFound, err.Code)
	}
	if err.Details["path"] != "sites.json" {
		t.Error("ConfigNotFound should include path detail")
	}

	// Test DaemonRunning
	err = DaemonRunning(4242)
	if err.Code != ErrCodeDaemonRunning {
		t.Errorf("expected code %s, got %s", ErrCodeDaemonRunning, err.Code)
	}
	if err.Details["pid"] != 4242 {
		t.Error("DaemonRunning should include pid detail")
	}

	if GetCode(nil) != "" {
		t.Error("GetCode(nil) should be empty")
	}
}
