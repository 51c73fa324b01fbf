package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"labboard/pkg/circuitbreaker"
	"labboard/pkg/metrics"
	"labboard/pkg/trace"
	"labboard/pkg/util"
)

const peerReviewEndpoint = "/peer-review"

var errEmptyReview = errors.New("agent response has no review text")

// AgentClient calls the external review agent behind a circuit breaker.
type AgentClient struct {
	baseURL    string
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
	logger     *zap.Logger
}

func NewAgentClient(baseURL string, timeout time.Duration, logger *zap.Logger) *AgentClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cbConfig := circuitbreaker.DefaultConfig()
	cbConfig.FailureThreshold = 3
	cbConfig.HalfOpenMaxRequests = 2
	cbConfig.OnStateChange = func(from, to circuitbreaker.State) {
		logger.Warn("Agent circuit breaker state changed",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}

	return &AgentClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cb:         circuitbreaker.NewCircuitBreaker(cbConfig),
		logger:     logger,
	}
}

type reviewRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Review asks the agent to review a draft and returns its text. Transport
// failures, 5xx answers and an open breaker wrap util.ErrAgentUnavailable.
func (c *AgentClient) Review(ctx context.Context, title, content string) (string, error) {
	var review string

	err := c.cb.Execute(func() error {
		start := time.Now()
		b, err := json.Marshal(reviewRequest{Title: title, Content: content})
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+peerReviewEndpoint, bytes.NewReader(b))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if traceID := trace.FromContext(ctx); traceID != "" {
			req.Header.Set(trace.HeaderName, traceID)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			metrics.RecordAgentCallLatency(peerReviewEndpoint, "error", time.Since(start))
			return fmt.Errorf("%w: %v", util.ErrAgentUnavailable, err)
		}
		defer resp.Body.Close()

		status := "success"
		if resp.StatusCode != http.StatusOK {
			status = strconv.Itoa(resp.StatusCode)
		}
		metrics.RecordAgentCallLatency(peerReviewEndpoint, status, time.Since(start))

		if resp.StatusCode >= 500 {
			return fmt.Errorf("%w: status %d", util.ErrAgentUnavailable, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("agent service error: %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		review, err = reviewText(body)
		return err
	})
	if errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen) {
		return "", fmt.Errorf("%w: %v", util.ErrAgentUnavailable, err)
	}
	return review, err
}

// reviewText accepts either {"review": "..."} or a messages-style body whose
// first content block carries the text.
func reviewText(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("agent response is not valid json")
	}
	for _, path := range []string{"review", "content.0.text"} {
		if r := gjson.GetBytes(body, path); r.Exists() && r.String() != "" {
			return r.String(), nil
		}
	}
	return "", errEmptyReview
}
