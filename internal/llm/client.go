// Package llm is a minimal REST client for a loopback Ollama-compatible
// runtime: model discovery via /api/tags and generation via /api/generate.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultGenerateTimeout     = 120 * time.Second
	defaultAvailabilityTimeout = 5 * time.Second
)

// SystemPrompt is the fixed policy text sent with every generation request.
// It instructs the model to emit a JSON array and never request or
// reference file contents.
const SystemPrompt = `You are a Windows storage management assistant. You analyze file metadata
and classify files into categories. You NEVER see file contents. You only see:
name, extension, size, path, last_accessed, last_modified.

Classify each file as one of: KEEP, MOVE_APP, MOVE_DATA, DELETE_JUNK,
DELETE_UNUSED, ARCHIVE. Include a confidence score (0.0-1.0) and a brief reason.

RULES:
- Documents (.doc, .pdf, .txt, etc.) are NEVER classified as DELETE
- Photos and videos are NEVER classified as DELETE
- Source code is NEVER classified as DELETE
- Installer packages (.msi, .exe in Downloads) CAN be DELETE_JUNK
- Temp files, caches, logs older than 30 days CAN be DELETE_JUNK
- Apps not accessed in 6+ months CAN be DELETE_UNUSED
- When uncertain, prefer KEEP over DELETE

Respond ONLY with a JSON array — no markdown fences, no extra text:
[{"path": "...", "action": "...", "confidence": 0.0, "reason": "...", "category": "..."}]
`

// TransportError wraps any failure to reach the LLM runtime or a non-2xx
// response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("llm transport (%s): %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// Client is a minimal REST client targeting a single loopback endpoint.
// Config validation (internal/config) guarantees Endpoint is loopback;
// Client itself does not re-check.
type Client struct {
	endpoint        string // e.g. "http://127.0.0.1:11434"
	model           string
	http            *http.Client
	generateTimeout time.Duration
	probeTimeout    time.Duration
}

func New(endpoint, model string) *Client {
	return &Client{
		endpoint:        endpoint,
		model:           model,
		http:            &http.Client{},
		generateTimeout: defaultGenerateTimeout,
		probeTimeout:    defaultAvailabilityTimeout,
	}
}

// WithTimeouts overrides the generation and availability-probe timeouts.
// Non-positive values keep the defaults.
func (c *Client) WithTimeouts(generate, probe time.Duration) *Client {
	if generate > 0 {
		c.generateTimeout = generate
	}
	if probe > 0 {
		c.probeTimeout = probe
	}
	return c
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// IsAvailable reports whether the runtime answers /api/tags within the
// availability-probe timeout.
func (c *Client) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// HasModel reports whether the target model (or its name sans the ":tag"
// suffix) appears in the runtime's model list.
func (c *Client) HasModel(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false
	}
	target := baseName(c.model)
	for _, m := range tags.Models {
		if m.Name == c.model || baseName(m.Name) == target {
			return true
		}
	}
	return false
}

func baseName(model string) string {
	for i := 0; i < len(model); i++ {
		if model[i] == ':' {
			return model[:i]
		}
	}
	return model
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends one batch prompt and returns the raw response text, which
// the orchestrator must still run through the tolerant parser.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.generateTimeout)
	defer cancel()

	body := &bytes.Buffer{}
	if err := json.NewEncoder(body).Encode(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		System: SystemPrompt,
		Stream: false,
		Options: generateOptions{
			Temperature: 0.1,
			NumPredict:  4096,
		},
	}); err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/generate", body)
	if err != nil {
		return "", &TransportError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &TransportError{Op: "generate", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &TransportError{Op: "generate", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", &TransportError{Op: "decode response", Err: err}
	}
	return gr.Response, nil
}
