package suno

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type stubTransport struct {
	calls     int
	responses []stubResponse
}

type stubResponse struct {
	status int
	body   string
	err    error
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	idx := s.calls
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	s.calls++
	r := s.responses[idx]
	if r.err != nil {
		return nil, r.err
	}
	return &http.Response{
		StatusCode: r.status,
		Body:       io.NopCloser(strings.NewReader(r.body)),
		Header:     make(http.Header),
	}, nil
}

func testClient(t *testing.T, transport http.RoundTripper) (*Client, *[]time.Duration) {
	t.Helper()
	var slept []time.Duration
	client, err := NewClient(Options{
		APIKey:     "test-key",
		BaseURL:    "https://suno.test/api/v1",
		HTTPClient: &http.Client{Transport: transport},
		Retry: RetryPolicy{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			Sleep:       func(d time.Duration) { slept = append(slept, d) },
		},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, &slept
}

func TestSubmitValidatesPromptBeforeNetwork(t *testing.T) {
	transport := &stubTransport{responses: []stubResponse{{status: 200, body: `{}`}}}
	client, _ := testClient(t, transport)

	if _, err := client.Submit(context.Background(), "   ", SubmitOptions{}); err == nil {
		t.Fatalf("expected error for empty prompt")
	}
	long := strings.Repeat("a", MaxPromptLength+1)
	if _, err := client.Submit(context.Background(), long, SubmitOptions{}); err == nil {
		t.Fatalf("expected error for oversized prompt")
	}
	if transport.calls != 0 {
		t.Fatalf("validation errors must not hit the network, got %d calls", transport.calls)
	}
}

func TestSubmitPromptLimitCountsRunesNotBytes(t *testing.T) {
	transport := &stubTransport{responses: []stubResponse{
		{status: 200, body: `{"code":200,"data":{"taskId":"task-123"}}`},
	}}
	client, _ := testClient(t, transport)

	// 3000 three-byte runes: 9000 bytes but exactly at the character limit.
	multibyte := strings.Repeat("音", MaxPromptLength)
	if _, err := client.Submit(context.Background(), multibyte, SubmitOptions{}); err != nil {
		t.Fatalf("submit at rune limit: %v", err)
	}
	if transport.calls != 1 {
		t.Fatalf("prompt at the limit must be submitted, got %d calls", transport.calls)
	}

	overLimit := strings.Repeat("音", MaxPromptLength+1)
	if _, err := client.Submit(context.Background(), overLimit, SubmitOptions{}); err == nil {
		t.Fatal("expected error one rune past the limit")
	}
	if transport.calls != 1 {
		t.Fatalf("oversized prompt must not hit the network, got %d calls", transport.calls)
	}
}

func TestSubmitRetriesNetworkErrors(t *testing.T) {
	transport := &stubTransport{responses: []stubResponse{
		{err: fmt.Errorf("connection refused")},
		{err: fmt.Errorf("connection reset")},
		{status: 200, body: `{"code":200,"data":{"taskId":"task-123"}}`},
	}}
	client, slept := testClient(t, transport)

	taskID, err := client.Submit(context.Background(), "calm ambient rain", SubmitOptions{Instrumental: true})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if taskID != "task-123" {
		t.Fatalf("taskID = %q, want task-123", taskID)
	}
	if transport.calls != 3 {
		t.Fatalf("calls = %d, want 3", transport.calls)
	}
	if len(*slept) != 2 {
		t.Fatalf("sleeps = %d, want 2", len(*slept))
	}
	if (*slept)[0] >= (*slept)[1] {
		t.Fatalf("backoff not increasing: %v", *slept)
	}
}

func TestSubmitDoesNotRetryAuthenticationErrors(t *testing.T) {
	transport := &stubTransport{responses: []stubResponse{
		{status: http.StatusUnauthorized, body: `{"code":401,"msg":"invalid token"}`},
	}}
	client, slept := testClient(t, transport)

	_, err := client.Submit(context.Background(), "lofi piano", SubmitOptions{})
	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want AuthenticationError", err)
	}
	if transport.calls != 1 {
		t.Fatalf("calls = %d, want 1 (no retries)", transport.calls)
	}
	if len(*slept) != 0 {
		t.Fatalf("sleeps = %d, want 0", len(*slept))
	}
}

func TestSubmitExhaustsRetriesOnRateLimit(t *testing.T) {
	transport := &stubTransport{responses: []stubResponse{
		{status: http.StatusTooManyRequests, body: `{"msg":"slow down"}`},
	}}
	client, slept := testClient(t, transport)

	_, err := client.Submit(context.Background(), "drone", SubmitOptions{})
	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("err = %v, want RateLimitError", err)
	}
	if transport.calls != 3 {
		t.Fatalf("calls = %d, want 3", transport.calls)
	}
	if len(*slept) != 2 {
		t.Fatalf("sleeps = %d, want 2", len(*slept))
	}
}

func TestSubmitClassifiesProviderQuotaCode(t *testing.T) {
	transport := &stubTransport{responses: []stubResponse{
		{status: 200, body: `{"code":455,"msg":"insufficient credits"}`},
	}}
	client, _ := testClient(t, transport)

	_, err := client.Submit(context.Background(), "rain on tin roof", SubmitOptions{})
	var quotaErr *QuotaExceededError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("err = %v, want QuotaExceededError", err)
	}
	if transport.calls != 1 {
		t.Fatalf("quota errors must not be retried, got %d calls", transport.calls)
	}
}

func TestPollStatusMapsStates(t *testing.T) {
	cases := []struct {
		raw  string
		want TaskState
	}{
		{raw: "PENDING", want: TaskPending},
		{raw: "TEXT_SUCCESS", want: TaskProcessing},
		{raw: "FIRST_SUCCESS", want: TaskProcessing},
		{raw: "SUCCESS", want: TaskComplete},
		{raw: "SOMETHING_NEW", want: TaskProcessing},
		{raw: "", want: TaskPending},
	}
	for _, tc := range cases {
		transport := &stubTransport{responses: []stubResponse{
			{status: 200, body: fmt.Sprintf(`{"code":200,"data":{"taskId":"t1","status":%q}}`, tc.raw)},
		}}
		client, _ := testClient(t, transport)

		status, err := client.PollStatus(context.Background(), "t1")
		if err != nil {
			t.Fatalf("PollStatus(%q): %v", tc.raw, err)
		}
		if status.State != tc.want {
			t.Errorf("PollStatus(%q) state = %q, want %q", tc.raw, status.State, tc.want)
		}
	}
}

func TestPollStatusFailedTask(t *testing.T) {
	transport := &stubTransport{responses: []stubResponse{
		{status: 200, body: `{"code":200,"data":{"taskId":"t1","status":"GENERATE_AUDIO_FAILED","errorMessage":"model error"}}`},
	}}
	client, _ := testClient(t, transport)

	_, err := client.PollStatus(context.Background(), "t1")
	var taskErr *TaskFailedError
	if !errors.As(err, &taskErr) {
		t.Fatalf("err = %v, want TaskFailedError", err)
	}
	if taskErr.Reason != "model error" {
		t.Fatalf("reason = %q, want %q", taskErr.Reason, "model error")
	}
}

func TestFetchResultSkipsEntriesWithoutAudioURL(t *testing.T) {
	body := `{"code":200,"data":{"taskId":"t1","status":"SUCCESS","response":{"sunoData":[
		{"audioId":"a1","audioUrl":"https://cdn.test/a1.mp3","title":"First","duration":181.2},
		{"audioId":"a2","audioUrl":"","title":"Broken"},
		{"audioId":"a3","audioUrl":"https://cdn.test/a3.mp3","title":"Third","duration":179.5}
	]}}}`
	transport := &stubTransport{responses: []stubResponse{{status: 200, body: body}}}
	client, _ := testClient(t, transport)

	clips, err := client.FetchResult(context.Background(), "t1")
	if err != nil {
		t.Fatalf("FetchResult: %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("clips = %d, want 2 (broken entry skipped)", len(clips))
	}
	if clips[0].AudioID != "a1" || clips[1].AudioID != "a3" {
		t.Fatalf("unexpected clip ids: %q, %q", clips[0].AudioID, clips[1].AudioID)
	}
	if clips[0].DurationSeconds != 181.2 {
		t.Fatalf("duration = %v, want 181.2", clips[0].DurationSeconds)
	}
}

func TestFetchResultEmptyVariants(t *testing.T) {
	transport := &stubTransport{responses: []stubResponse{
		{status: 200, body: `{"code":200,"data":{"taskId":"t1","status":"SUCCESS","response":{"sunoData":[]}}}`},
	}}
	client, _ := testClient(t, transport)

	clips, err := client.FetchResult(context.Background(), "t1")
	if err != nil {
		t.Fatalf("FetchResult: %v", err)
	}
	if len(clips) != 0 {
		t.Fatalf("clips = %d, want 0", len(clips))
	}
}

func TestPollStatusNotFound(t *testing.T) {
	transport := &stubTransport{responses: []stubResponse{
		{status: http.StatusNotFound, body: `{"msg":"task not found"}`},
	}}
	client, _ := testClient(t, transport)

	_, err := client.PollStatus(context.Background(), "missing")
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}
