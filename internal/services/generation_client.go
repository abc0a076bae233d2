package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/showtrail/agjournal-backend/internal/logger"
)

// GenerationRequest is the structured context payload sent to the external
// AI entry-generation service.
type GenerationRequest struct {
	Category        string            `json:"category"`
	AgeGroup        string            `json:"age_group"`
	CompetencyLevel string            `json:"competency_level"`
	SafeContentOnly bool              `json:"safe_content_only"`
	Complexity      string            `json:"complexity"`
	Animal          *AnimalContext    `json:"animal,omitempty"`
	Weather         string            `json:"weather,omitempty"`
	Location        string            `json:"location,omitempty"`
	Customization   map[string]string `json:"customization,omitempty"`

	// Educational context derived from the user's recent journal entries.
	RecentCategories   []string `json:"recent_categories,omitempty"`
	RecentFFAStandards []string `json:"recent_ffa_standards,omitempty"`
}

type GenerationResult struct {
	Title          string  `json:"title"`
	Content        string  `json:"content"`
	QualityScore   float64 `json:"quality_score"`
	Model          string  `json:"model"`
	ResponseTimeMs int64   `json:"response_time_ms"`
}

// GenerationClient talks to the external AI generation service. Every call
// resolves within the configured timeout to either a value or an error.
type GenerationClient interface {
	GenerateEntry(ctx context.Context, req *GenerationRequest) (*GenerationResult, error)
}

type generationClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client

	maxRetries int
}

func NewGenerationClient(log *logger.Logger) (GenerationClient, error) {
	apiKey := os.Getenv("GENERATION_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing GENERATION_API_KEY")
	}

	baseURL := os.Getenv("GENERATION_API_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("missing GENERATION_API_URL")
	}

	model := os.Getenv("GENERATION_MODEL")
	if model == "" {
		model = "journal-coach-1"
	}

	// Hard ceiling on the user-facing path; the fallback generator covers
	// anything slower.
	timeoutSec := 30
	if v := os.Getenv("GENERATION_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	maxRetries := 1
	if v := os.Getenv("GENERATION_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}

	return &generationClient{
		log:        log.With("service", "GenerationClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
	}, nil
}

type generationHTTPError struct {
	StatusCode int
	Body       string
}

func (e *generationHTTPError) Error() string {
	return fmt.Sprintf("generation http %d: %s", e.StatusCode, e.Body)
}

func isRetryableHTTP(code int) bool {
	if code == 408 || code == 429 {
		return true
	}
	if code >= 500 && code <= 599 {
		return true
	}
	return false
}

func isRetryableErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return true
		}
	}
	var httpErr *generationHTTPError
	if errors.As(err, &httpErr) {
		return isRetryableHTTP(httpErr.StatusCode)
	}
	return false
}

func jitterSleep(base time.Duration) time.Duration {
	// +/- 20%
	if base <= 0 {
		return 0
	}
	j := 0.2
	delta := base.Seconds() * j
	low := base.Seconds() - delta
	high := base.Seconds() + delta
	if low < 0 {
		low = 0
	}
	v := low + rand.Float64()*(high-low)
	return time.Duration(v * float64(time.Second))
}

func (c *generationClient) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &generationHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *generationClient) do(ctx context.Context, method, path string, body any, out any) error {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("generation decode error: %w; raw=%s", uErr, string(raw))
			}
			return nil
		}

		if !isRetryableErr(err) {
			return err
		}
		if attempt == c.maxRetries {
			return err
		}

		sleepFor := backoff
		if resp != nil {
			ra := strings.TrimSpace(resp.Header.Get("Retry-After"))
			if ra != "" {
				if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 {
					sleepFor = time.Duration(secs) * time.Second
				}
			}
		}
		if sleepFor > 5*time.Second {
			sleepFor = 5 * time.Second
		}
		sleepFor = jitterSleep(sleepFor)

		c.log.Warn("generation request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

type generateEntryResponse struct {
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	QualityScore float64 `json:"quality_score"`
	Model        string  `json:"model"`
}

func (c *generationClient) GenerateEntry(ctx context.Context, req *GenerationRequest) (*GenerationResult, error) {
	if req == nil {
		return nil, errors.New("generation request required")
	}

	started := time.Now()
	payload := map[string]any{
		"model":   c.model,
		"request": req,
	}

	var resp generateEntryResponse
	if err := c.do(ctx, "POST", "/v1/journal/generate", payload, &resp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamError, err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return nil, fmt.Errorf("%w: empty content in response", ErrUpstreamError)
	}

	return &GenerationResult{
		Title:          resp.Title,
		Content:        resp.Content,
		QualityScore:   resp.QualityScore,
		Model:          resp.Model,
		ResponseTimeMs: time.Since(started).Milliseconds(),
	}, nil
}
