package coreerr

import (
	"errors"
	"testing"
)

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(IoError, "writing cache", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find the wrapped cause")
	}
	if err.Code() != IoError {
		t.Fatalf("expected code %s, got %s", IoError, err.Code())
	}
	want := "IO_ERROR: writing cache: disk full"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestNewWithoutCause(t *testing.T) {
	err := New(DuplicateSymbolId, "id a0000000000000a already present")
	if err.Unwrap() != nil {
		t.Fatalf("expected no wrapped cause")
	}
}

func TestIsFatal(t *testing.T) {
	fatal := []Code{IoError, YamlSyntaxError, DuplicateSymbolId, WorkerCrashed, IngestTimeout}
	for _, c := range fatal {
		if !IsFatal(c) {
			t.Errorf("expected %s to be fatal", c)
		}
	}
	nonFatal := []Code{PathOutsideProject, UnresolvedContainer, SpanMismatch, CacheCorrupted}
	for _, c := range nonFatal {
		if IsFatal(c) {
			t.Errorf("expected %s to not be fatal", c)
		}
	}
}
