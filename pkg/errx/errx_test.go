package errx_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Abraxas-365/praxis/pkg/errx"
)

var testRegistry = errx.NewRegistry("TEST")

var codeGone = testRegistry.Register("GONE", errx.TypeNotFound, 404, "Thing is gone")

func TestRegistryPrefixesCodes(t *testing.T) {
	err := testRegistry.New(codeGone)
	if err.Code != "TEST_GONE" {
		t.Fatalf("expected prefixed code, got %q", err.Code)
	}
	if err.HTTPStatus != 404 {
		t.Fatalf("expected 404, got %d", err.HTTPStatus)
	}
}

func TestWrapPreservesCode(t *testing.T) {
	inner := testRegistry.New(codeGone).WithDetail("id", "42")
	wrapped := errx.Wrap(fmt.Errorf("layer: %w", inner), "outer message", errx.TypeInternal)

	if wrapped.Code != "TEST_GONE" {
		t.Fatalf("wrap lost the registered code: %q", wrapped.Code)
	}
	if wrapped.Details["id"] != "42" {
		t.Fatal("wrap lost details")
	}
	if !errx.IsCode(wrapped, codeGone) {
		t.Fatal("IsCode should match through wrapping")
	}
}

func TestUnwrapChain(t *testing.T) {
	cause := errors.New("boom")
	err := testRegistry.NewWithCause(codeGone, cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the cause")
	}
}
