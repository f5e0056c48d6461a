package apierr_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mdforge/mdforge/internal/apierr"
)

func TestFromStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		msg        string
		wantErr    error
	}{
		{
			name:       "429 is a rate limit",
			statusCode: http.StatusTooManyRequests,
			msg:        "Rate limit reached for requests",
			wantErr:    apierr.ErrRateLimit,
		},
		{
			name:       "429 mentioning quota is a billing problem",
			statusCode: http.StatusTooManyRequests,
			msg:        "You exceeded your current quota",
			wantErr:    apierr.ErrQuotaExceeded,
		},
		{
			name:       "429 mentioning billing is a billing problem",
			statusCode: http.StatusTooManyRequests,
			msg:        "billing hard limit reached",
			wantErr:    apierr.ErrQuotaExceeded,
		},
		{
			name:       "401 is an auth failure",
			statusCode: http.StatusUnauthorized,
			msg:        "Incorrect API key provided",
			wantErr:    apierr.ErrAuthFailed,
		},
		{
			name:       "408 is a timeout",
			statusCode: http.StatusRequestTimeout,
			msg:        "Request timed out",
			wantErr:    apierr.ErrTimeout,
		},
		{
			name:       "504 is a timeout",
			statusCode: http.StatusGatewayTimeout,
			msg:        "upstream timed out",
			wantErr:    apierr.ErrTimeout,
		},
		{
			name:       "400 is a bad request",
			statusCode: http.StatusBadRequest,
			msg:        "Unsupported file format",
			wantErr:    apierr.ErrBadRequest,
		},
		{
			name:       "413 is a bad request",
			statusCode: http.StatusRequestEntityTooLarge,
			msg:        "Maximum content size limit exceeded",
			wantErr:    apierr.ErrBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := apierr.FromStatus(tt.statusCode, tt.msg)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("FromStatus(%d, %q) = %v, want %v", tt.statusCode, tt.msg, err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not preserve the backend message %q", err, tt.msg)
			}
		})
	}
}

func TestFromStatus_UnclassifiedStatus(t *testing.T) {
	t.Parallel()

	err := apierr.FromStatus(http.StatusInternalServerError, "server exploded")
	for _, sentinel := range []error{
		apierr.ErrRateLimit, apierr.ErrQuotaExceeded, apierr.ErrTimeout,
		apierr.ErrAuthFailed, apierr.ErrBadRequest,
	} {
		if errors.Is(err, sentinel) {
			t.Errorf("500 should not classify as %v", sentinel)
		}
	}
	if !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "server exploded") {
		t.Errorf("error %q should carry the status and message", err)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	t.Run("nil stays nil", func(t *testing.T) {
		t.Parallel()
		if err := apierr.Classify(nil); err != nil {
			t.Errorf("Classify(nil) = %v, want nil", err)
		}
	})

	t.Run("wrapped API error maps by status", func(t *testing.T) {
		t.Parallel()
		apiErr := &openai.APIError{
			HTTPStatusCode: http.StatusTooManyRequests,
			Message:        "Rate limit reached",
		}
		err := apierr.Classify(fmt.Errorf("transcription failed: %w", apiErr))
		if !errors.Is(err, apierr.ErrRateLimit) {
			t.Errorf("Classify() = %v, want ErrRateLimit", err)
		}
	})

	t.Run("deadline exceeded maps to timeout", func(t *testing.T) {
		t.Parallel()
		err := apierr.Classify(fmt.Errorf("request: %w", context.DeadlineExceeded))
		if !errors.Is(err, apierr.ErrTimeout) {
			t.Errorf("Classify() = %v, want ErrTimeout", err)
		}
	})

	t.Run("unknown errors pass through unchanged", func(t *testing.T) {
		t.Parallel()
		original := errors.New("connection reset by peer")
		if got := apierr.Classify(original); got != original {
			t.Errorf("Classify() = %v, want the original error", got)
		}
	})
}
