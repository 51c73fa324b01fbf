package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labboard/pkg/circuitbreaker"
	"labboard/pkg/trace"
	"labboard/pkg/util"
)

func TestAgentClient_Review(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"review field", `{"review":"Clarify the baseline."}`, "Clarify the baseline."},
		{"content block", `{"content":[{"type":"text","text":"Cite prior work."}]}`, "Cite prior work."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/peer-review", r.URL.Path)
				assert.Equal(t, "trace-1", r.Header.Get(trace.HeaderName))
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewAgentClient(srv.URL, 0, nopLogger)
			got, err := c.Review(trace.WithContext(context.Background(), "trace-1"), "t", "c")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAgentClient_Review_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"other":1}`))
	}))
	defer srv.Close()

	_, err := NewAgentClient(srv.URL, 0, nopLogger).Review(context.Background(), "t", "c")
	assert.ErrorIs(t, err, errEmptyReview)
}

func TestAgentClient_Review_ServerErrorOpensBreaker(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewAgentClient(srv.URL, 0, nopLogger)
	for i := 0; i < 3; i++ {
		_, err := c.Review(context.Background(), "t", "c")
		require.ErrorIs(t, err, util.ErrAgentUnavailable)
	}
	assert.Equal(t, circuitbreaker.StateOpen, c.cb.GetState())

	_, err := c.Review(context.Background(), "t", "c")
	assert.ErrorIs(t, err, util.ErrAgentUnavailable)
	assert.Equal(t, 3, calls)

	retryable, kind := util.IsRetryableError(err)
	assert.True(t, retryable)
	assert.Equal(t, "agent_service_unavailable", kind)
}
