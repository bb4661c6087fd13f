// Package suno wraps the remote generative-music HTTP API behind three
// operations: submit a generation task, poll its status and fetch the
// resulting clip metadata. Failures are classified into a fixed error
// taxonomy; a subset of kinds is retried with increasing delay.
package suno

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"soundscape/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("suno: api key is required")

// MaxPromptLength is the provider-imposed prompt size limit, validated
// locally before any network call.
const MaxPromptLength = 3000

// Options configures the client.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
	Retry      RetryPolicy
}

// Client performs HTTP calls to the generation API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
	retry      RetryPolicy
}

// SubmitOptions carries the optional generation parameters.
type SubmitOptions struct {
	Style        string
	Instrumental bool
	CustomMode   bool
	CallbackURL  string
}

// TaskState is the normalized remote task state.
type TaskState string

const (
	TaskPending    TaskState = "pending"
	TaskProcessing TaskState = "processing"
	TaskComplete   TaskState = "complete"
)

// TaskStatus is the normalized result of a status poll.
type TaskStatus struct {
	TaskID string
	State  TaskState
}

// ClipMetadata is one generated clip variant as reported by the provider.
type ClipMetadata struct {
	AudioID         string
	AudioURL        string
	Title           string
	Tags            string
	ModelName       string
	Prompt          string
	DurationSeconds float64
}

type submitPayload struct {
	Prompt       string `json:"prompt"`
	Model        string `json:"model"`
	Style        string `json:"style,omitempty"`
	CustomMode   bool   `json:"customMode"`
	Instrumental bool   `json:"instrumental"`
	CallbackURL  string `json:"callBackUrl,omitempty"`
}

type clipEntry struct {
	AudioID   string  `json:"audioId"`
	AudioURL  string  `json:"audioUrl"`
	Title     string  `json:"title"`
	Tags      string  `json:"tags"`
	ModelName string  `json:"modelName"`
	Prompt    string  `json:"prompt"`
	Duration  float64 `json:"duration"`
}

type envelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		TaskID       string `json:"taskId"`
		Status       string `json:"status"`
		ErrorMessage string `json:"errorMessage"`
		Response     struct {
			SunoData []clipEntry `json:"sunoData"`
		} `json:"response"`
	} `json:"data"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.sunoapi.org/api/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "V4_5"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     logger,
		retry:      opts.Retry.normalized(),
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Submit sends a generation request and returns the remote task id. The
// prompt is validated locally before any network call.
func (c *Client) Submit(ctx context.Context, prompt string, opts SubmitOptions) (string, error) {
	if c.apiKey == "" {
		return "", &AuthenticationError{Message: ErrMissingAPIKey.Error()}
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("suno: prompt is required")
	}
	if utf8.RuneCountInString(prompt) > MaxPromptLength {
		return "", fmt.Errorf("suno: prompt exceeds %d characters", MaxPromptLength)
	}

	payload := submitPayload{
		Prompt:       prompt,
		Model:        c.model,
		Style:        strings.TrimSpace(opts.Style),
		CustomMode:   opts.CustomMode,
		Instrumental: opts.Instrumental,
		CallbackURL:  opts.CallbackURL,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("suno: encode request: %w", err)
	}

	var env envelope
	err = c.retry.run(func() error {
		return c.doJSON(ctx, http.MethodPost, c.baseURL+"/generate", body, &env)
	})
	if err != nil {
		return "", err
	}
	taskID := strings.TrimSpace(env.Data.TaskID)
	if taskID == "" {
		return "", &APIError{StatusCode: http.StatusOK, Message: "response missing taskId"}
	}
	c.logger.Debug().Str("task_id", taskID).Str("model", c.model).Msg("suno: task submitted")
	return taskID, nil
}

// PollStatus fetches the remote task state. An explicit failed status in the
// payload becomes a TaskFailedError; unrecognized statuses and missing
// fields are logged rather than raised, since they indicate upstream API
// drift rather than a fatal local condition.
func (c *Client) PollStatus(ctx context.Context, taskID string) (TaskStatus, error) {
	if taskID == "" {
		return TaskStatus{}, errors.New("suno: task id is required")
	}
	env, err := c.fetchTask(ctx, taskID)
	if err != nil {
		return TaskStatus{}, err
	}

	status := TaskStatus{TaskID: taskID}
	raw := strings.ToUpper(strings.TrimSpace(env.Data.Status))
	switch raw {
	case "":
		c.logger.Warn().Str("task_id", taskID).Msg("suno: status field missing from payload")
		status.State = TaskPending
	case "PENDING":
		status.State = TaskPending
	case "TEXT_SUCCESS", "FIRST_SUCCESS":
		status.State = TaskProcessing
	case "SUCCESS":
		status.State = TaskComplete
	case "CREATE_TASK_FAILED", "GENERATE_AUDIO_FAILED", "CALLBACK_EXCEPTION", "SENSITIVE_WORD_ERROR":
		reason := env.Data.ErrorMessage
		if reason == "" {
			reason = raw
		}
		return TaskStatus{}, &TaskFailedError{TaskID: taskID, Reason: reason}
	default:
		c.logger.Warn().Str("task_id", taskID).Str("status", raw).Msg("suno: unrecognized task status")
		status.State = TaskProcessing
	}
	return status, nil
}

// FetchResult returns the clip variants of a finished task. The response may
// carry zero, one or many entries; an entry lacking a usable audio URL is
// skipped rather than failing the whole call.
func (c *Client) FetchResult(ctx context.Context, taskID string) ([]ClipMetadata, error) {
	if taskID == "" {
		return nil, errors.New("suno: task id is required")
	}
	env, err := c.fetchTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	clips := make([]ClipMetadata, 0, len(env.Data.Response.SunoData))
	for _, entry := range env.Data.Response.SunoData {
		audioURL := strings.TrimSpace(entry.AudioURL)
		if audioURL == "" {
			c.logger.Warn().Str("task_id", taskID).Str("audio_id", entry.AudioID).Msg("suno: clip entry missing audio url, skipping")
			continue
		}
		clips = append(clips, ClipMetadata{
			AudioID:         entry.AudioID,
			AudioURL:        audioURL,
			Title:           entry.Title,
			Tags:            entry.Tags,
			ModelName:       entry.ModelName,
			Prompt:          entry.Prompt,
			DurationSeconds: entry.Duration,
		})
	}
	return clips, nil
}

// DownloadAudio fetches the generated audio bytes from the provider CDN.
func (c *Client) DownloadAudio(ctx context.Context, audioURL string) ([]byte, error) {
	parsed, err := url.Parse(strings.TrimSpace(audioURL))
	if err != nil || parsed.Scheme == "" {
		return nil, fmt.Errorf("suno: invalid audio url: %s", audioURL)
	}
	var data []byte
	err = c.retry.run(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
		if err != nil {
			return fmt.Errorf("suno: build download request: %w", err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &NetworkError{Err: err}
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			return classifyStatus(resp.StatusCode, "", "audio download")
		}
		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return &NetworkError{Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) fetchTask(ctx context.Context, taskID string) (*envelope, error) {
	if c.apiKey == "" {
		return nil, &AuthenticationError{Message: ErrMissingAPIKey.Error()}
	}
	endpoint := c.baseURL + "/status?taskId=" + url.QueryEscape(taskID)
	var env envelope
	err := c.retry.run(func() error {
		return c.doJSON(ctx, http.MethodGet, endpoint, nil, &env)
	})
	if err != nil {
		return nil, err
	}
	return &env, nil
}

// doJSON performs a single HTTP exchange and classifies the outcome. The
// caller wraps it in the retry policy.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, body []byte, out *envelope) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("suno: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode >= 300 {
		return classifyStatus(resp.StatusCode, string(raw), providerMessage(raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw), Message: "malformed payload"}
	}
	if out.Code != 0 && out.Code != 200 {
		return classifyStatus(out.Code, string(raw), out.Msg)
	}
	return nil
}

// classifyStatus maps an HTTP or provider status code onto the taxonomy.
func classifyStatus(code int, body, message string) error {
	switch code {
	case http.StatusUnauthorized:
		return &AuthenticationError{Message: orStatus(message, code)}
	case http.StatusTooManyRequests:
		return &RateLimitError{Message: orStatus(message, code)}
	case http.StatusPaymentRequired, 455:
		// 455 is the provider-specific insufficient-credits signal.
		return &QuotaExceededError{Message: orStatus(message, code)}
	case http.StatusNotFound:
		return &NotFoundError{Resource: orStatus(message, code)}
	default:
		return &APIError{StatusCode: code, Body: body, Message: message}
	}
}

func providerMessage(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	return env.Msg
}

func orStatus(message string, code int) string {
	if message != "" {
		return message
	}
	return fmt.Sprintf("status %d", code)
}
