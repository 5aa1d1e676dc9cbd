// Package apiclient is the HTTP client for a remote processing service.
// The CLI uses it to run queries on a shared daemon instead of calling
// the oracle directly.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Client communicates with the processing service HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SubmitOptions are per-job run overrides. Fields are sent as given:
// the zero value asks the server for no overlap and no filtering, so
// callers normally fill every field from their own defaults.
type SubmitOptions struct {
	ChunkSize int
	Overlap   int
	Filter    bool
	Fast      bool
	Strategy  string
}

// SubmitResponse is the acknowledgement for a queued job.
type SubmitResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	PollURL string `json:"poll_url"`
}

// Progress mirrors the server's per-job progress counters.
type Progress struct {
	TotalChunks     int      `json:"total_chunks"`
	SelectedChunks  int      `json:"selected_chunks"`
	ChunksProcessed int      `json:"chunks_processed"`
	RelevantChunks  int      `json:"relevant_chunks"`
	Errors          []string `json:"errors"`
}

// JobStatus is one poll of a job's state.
type JobStatus struct {
	JobID       string   `json:"job_id"`
	Query       string   `json:"query"`
	Filename    string   `json:"filename"`
	Status      string   `json:"status"`
	Phase       string   `json:"phase"`
	ContentHash string   `json:"content_hash"`
	Progress    Progress `json:"progress"`
	ResultURL   string   `json:"result_url"`
}

// Result is the server's terminal pipeline result.
type Result struct {
	Answer        string `json:"answer"`
	Strategy      string `json:"strategy"`
	ChunkCount    int    `json:"chunk_count"`
	SelectedCount int    `json:"selected_count"`
	Extracted     int    `json:"extracted"`
	NoInfo        int    `json:"no_info"`
	Failed        int    `json:"failed"`
	ElapsedMs     int64  `json:"elapsed_ms"`
}

// JobResult is the full terminal state of a job.
type JobResult struct {
	JobID    string   `json:"job_id"`
	Query    string   `json:"query"`
	Filename string   `json:"filename"`
	Status   string   `json:"status"`
	Result   *Result  `json:"result"`
	Errors   []string `json:"errors"`
}

func terminalStatus(s string) bool {
	switch s {
	case "completed", "failed", "partial":
		return true
	}
	return false
}

// Submit uploads the file at path with a query and returns the queued
// job's acknowledgement.
func (c *Client) Submit(ctx context.Context, path, query string, opts SubmitOptions) (*SubmitResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("query", query); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if err := writeOptionFields(mw, opts); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}

	return c.submit(ctx, &buf, mw.FormDataContentType())
}

// SubmitText sends inline text instead of a file upload. filename is
// optional and only informs converter selection on the server.
func (c *Client) SubmitText(ctx context.Context, content, filename, query string, opts SubmitOptions) (*SubmitResponse, error) {
	payload := map[string]any{
		"query":   query,
		"content": content,
		"overlap": opts.Overlap,
		"filter":  opts.Filter,
	}
	if filename != "" {
		payload["filename"] = filename
	}
	if opts.ChunkSize > 0 {
		payload["chunk_size"] = opts.ChunkSize
	}
	if opts.Fast {
		payload["fast"] = true
	}
	if opts.Strategy != "" {
		payload["strategy"] = opts.Strategy
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal submission: %w", err)
	}
	return c.submit(ctx, bytes.NewReader(body), "application/json")
}

func (c *Client) submit(ctx context.Context, body io.Reader, contentType string) (*SubmitResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/process", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("submit: status %d: %s", resp.StatusCode, string(respBody))
	}

	var out SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode submit response: %w", err)
	}
	return &out, nil
}

func writeOptionFields(mw *multipart.Writer, opts SubmitOptions) error {
	fields := map[string]string{
		"overlap": strconv.Itoa(opts.Overlap),
		"filter":  strconv.FormatBool(opts.Filter),
	}
	if opts.ChunkSize > 0 {
		fields["chunk_size"] = strconv.Itoa(opts.ChunkSize)
	}
	if opts.Fast {
		fields["fast"] = "true"
	}
	if opts.Strategy != "" {
		fields["strategy"] = opts.Strategy
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Status fetches the current state of a job.
func (c *Client) Status(ctx context.Context, jobID string) (*JobStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/process/"+jobID+"/status", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("job status: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("job status %s: status %d: %s", jobID, resp.StatusCode, string(respBody))
	}

	var st JobStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &st, nil
}

// Result fetches the terminal result of a job. The server answers 409
// while the job is still running.
func (c *Client) Result(ctx context.Context, jobID string) (*JobResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/process/"+jobID+"/result", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("job result: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("job result %s: status %d: %s", jobID, resp.StatusCode, string(respBody))
	}

	var res JobResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &res, nil
}

// Wait polls a job until it reaches a terminal status, then fetches the
// result. onStatus, when non-nil, observes every poll. pollInterval <= 0
// defaults to 2 seconds.
func (c *Client) Wait(ctx context.Context, jobID string, pollInterval time.Duration, onStatus func(JobStatus)) (*JobResult, error) {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	for {
		st, err := c.Status(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if onStatus != nil {
			onStatus(*st)
		}
		if terminalStatus(st.Status) {
			return c.Result(ctx, jobID)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// Health checks that the service is reachable.
func (c *Client) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health: status %d", resp.StatusCode)
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
