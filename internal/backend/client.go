// Package backend talks to the screening inference service over HTTP/JSON.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/rbright/neuroscan/internal/screening"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultHealthPath = "/health"
	maxErrorBody      = 4096
)

// ErrUnauthorized marks a 401 from the backend (bad credentials).
var ErrUnauthorized = errors.New("invalid credentials")

// APIError is a non-2xx backend reply.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned HTTP %d: %s", e.StatusCode, e.Message)
}

// Unwrap exposes ErrNetwork, plus ErrUnauthorized for 401 replies.
func (e *APIError) Unwrap() []error {
	if e.StatusCode == http.StatusUnauthorized {
		return []error{screening.ErrNetwork, ErrUnauthorized}
	}
	return []error{screening.ErrNetwork}
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	HealthPath string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is the inference/persistence/auth backend.
type Client struct {
	http       *http.Client
	baseURL    string
	healthPath string
}

// New validates opts and builds a Client.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("backend url is empty")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q must use http or https", base)
	}

	healthPath := strings.TrimSpace(opts.HealthPath)
	if healthPath == "" {
		healthPath = defaultHealthPath
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{http: httpClient, baseURL: base, healthPath: healthPath}, nil
}

// BaseURL returns the normalized backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// postJSON sends body as JSON and decodes a 2xx reply into result when non-nil.
func (c *Client) postJSON(ctx context.Context, path string, body any, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(data), result)
}

// upload posts input as multipart field "file" plus extra form fields.
func (c *Client) upload(ctx context.Context, path string, input screening.CaptureInput, fields map[string]string, result any) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	name := input.Name
	if name == "" {
		name = "upload"
	}
	contentType := input.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(input.Data); err != nil {
		return fmt.Errorf("write form file: %w", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("write field %s: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, writer.FormDataContentType(), &body, result)
}

// do performs one request; transport failures and non-2xx replies wrap ErrNetwork.
func (c *Client) do(ctx context.Context, method string, path string, contentType string, body io.Reader, result any) error {
	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", screening.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if result == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", screening.ErrNetwork, path, err)
	}
	return nil
}

// decodeError reads the {"error": "..."} envelope when present.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		apiErr.Message = strings.TrimSpace(envelope.Error)
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(envelope.Message)
		}
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}
