package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	err := New(CodeCaptureFailed, "screen inaccessible")

	if !strings.Contains(err.Error(), "CAPTURE_FAILED") {
		t.Errorf("Error() = %q, want code name included", err.Error())
	}
	if !strings.Contains(err.Error(), "screen inaccessible") {
		t.Errorf("Error() = %q, want message included", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := Wrap(cause, CodeCaptureFailed, "capture failed")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if !strings.Contains(err.Error(), "permission denied") {
		t.Errorf("Error() = %q, want cause included", err.Error())
	}
}

func TestIsCode(t *testing.T) {
	err := New(CodeNoTargets, "no targets configured")

	if !IsCode(err, CodeNoTargets) {
		t.Error("IsCode should match NO_TARGETS")
	}
	if IsCode(err, CodeOCRFailed) {
		t.Error("IsCode should not match OCR_FAILED")
	}
	if IsCode(nil, CodeNoTargets) {
		t.Error("IsCode(nil) should be false")
	}
}

func TestIsCodeUnwrapsStdWrapping(t *testing.T) {
	inner := New(CodeOCRFailed, "engine failure")
	outer := fmt.Errorf("cycle 7: %w", inner)

	if !IsCode(outer, CodeOCRFailed) {
		t.Error("IsCode should find code behind fmt.Errorf wrapping")
	}
}

func TestWithMetadata(t *testing.T) {
	err := New(CodeConfigInvalid, "bad style").WithMetadata("field", "alpha")

	if err.Metadata["field"] != "alpha" {
		t.Errorf("Metadata[field] = %q, want %q", err.Metadata["field"], "alpha")
	}
	if !strings.Contains(err.Error(), "alpha") {
		t.Errorf("Error() = %q, want metadata included", err.Error())
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(CodeInternal, "x")); got != CodeInternal {
		t.Errorf("CodeOf = %v, want CodeInternal", got)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Errorf("CodeOf(plain) = %v, want CodeUnknown", got)
	}
}
