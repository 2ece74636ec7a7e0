package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/example/placement-portal/internal/logging"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestServiceLoggerPrefersContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctxLogger := slog.New(slog.NewTextHandler(&buf, nil))
	base := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := logging.ContextWithLogger(context.Background(), ctxLogger)

	serviceLogger(ctx, base, "ApplicationService", "Apply", "job_id", "job-1").Info("hello")

	out := buf.String()
	for _, want := range []string{"service=ApplicationService", "operation=Apply", "job_id=job-1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: ErrUnauthorized, want: "unauthorized"},
		{err: ErrUnauthenticated, want: "unauthenticated"},
		{err: fmt.Errorf("wrap: %w", ErrNotFound), want: "not_found"},
		{err: ErrInvalidCredentials, want: "invalid_credentials"},
		{err: ErrStoreUnavailable, want: "store_unavailable"},
		{err: newConflict(ConflictBackward, "cannot move backward"), want: "conflict"},
		{err: fieldError("status", "invalid status"), want: "validation"},
		{err: errors.New("boom"), want: "unexpected"},
	}
	for _, tc := range tests {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
