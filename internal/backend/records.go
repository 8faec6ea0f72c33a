package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// SaveRequest is one persisted screening result.
type SaveRequest struct {
	PatientID  string  `json:"patient_id"`
	Type       string  `json:"type"`
	Result     string  `json:"result"`
	Confidence float64 `json:"confidence"`
}

// SaveResult posts req to /save-result; the reply body is ignored.
func (c *Client) SaveResult(ctx context.Context, req SaveRequest) error {
	return c.postJSON(ctx, "/save-result", req, nil)
}

// LoginRequest authenticates a patient or doctor.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginResponse carries the identity returned by /login.
type LoginResponse struct {
	Message string      `json:"message"`
	ID      json.Number `json:"id"`
	Name    string      `json:"name"`
}

// Login posts credentials; a 401 reply wraps ErrUnauthorized.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	var reply LoginResponse
	if err := c.postJSON(ctx, "/login", req, &reply); err != nil {
		return LoginResponse{}, err
	}
	if strings.TrimSpace(reply.ID.String()) == "" {
		return LoginResponse{}, fmt.Errorf("login reply has no id")
	}
	return reply, nil
}

// RegisterRequest creates a patient account.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Age      *int   `json:"age,omitempty"`
	Contact  string `json:"contact,omitempty"`
}

// Register creates a patient and returns the backend confirmation message.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var reply struct {
		Message string `json:"message"`
	}
	if err := c.postJSON(ctx, "/register", req, &reply); err != nil {
		return "", err
	}
	return reply.Message, nil
}

// Record is one stored screening result as listed by /results.
type Record struct {
	ID             int64   `json:"id"`
	PatientID      int64   `json:"patient_id"`
	PatientName    string  `json:"patient_name"`
	PatientAge     *int    `json:"patient_age"`
	PatientContact string  `json:"patient_contact"`
	Type           string  `json:"type"`
	Result         string  `json:"result"`
	Confidence     float64 `json:"confidence"`
	Timestamp      string  `json:"timestamp"`
}

// Results lists recent screening results, newest first.
func (c *Client) Results(ctx context.Context) ([]Record, error) {
	var records []Record
	if err := c.do(ctx, http.MethodGet, "/results", "", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Health is the /health reply.
type Health struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Timestamp   string `json:"timestamp"`
}

// Healthy reports whether the backend has a model loaded.
func (h Health) Healthy() bool {
	return strings.EqualFold(h.Status, "healthy") && h.ModelLoaded
}

// Health probes the configured health path.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var reply Health
	if err := c.do(ctx, http.MethodGet, c.healthPath, "", nil, &reply); err != nil {
		return Health{}, err
	}
	return reply, nil
}
