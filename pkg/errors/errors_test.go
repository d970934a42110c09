package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataForUnknownCode(t *testing.T) {
	meta := MetadataFor(Code("NOT_A_CODE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown code should map to internal metadata, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("row changed")
	err := Wrap(CodeConflict, cause, "saving contract payment")

	if !stdErrors.Is(err, cause) {
		t.Fatal("wrapped cause should satisfy errors.Is")
	}
	if err.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", err.Code())
	}
	if err.Error() != "CONFLICT: saving contract payment" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	inner := New(CodeValidation, "reason is required")
	outer := Wrap(CodeInternal, inner, "reject transition")

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeInternal {
		t.Fatalf("outermost code wins, got %s", typed.Code())
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(New(CodeConflict, "write conflict")) {
		t.Fatal("conflict errors are retryable")
	}
	if IsRetryable(New(CodeValidation, "bad amount")) {
		t.Fatal("validation errors are never retryable")
	}
	if IsRetryable(stdErrors.New("plain")) {
		t.Fatal("untyped errors are never retryable")
	}
}
