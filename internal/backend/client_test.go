package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/neuroscan/internal/screening"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Options{BaseURL: server.URL + "/"})
	require.NoError(t, err)
	return client
}

func TestNewRejectsInvalidURL(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)

	_, err = New(Options{BaseURL: "ftp://example.com"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "http or https")

	client, err := New(Options{BaseURL: " http://localhost:5000/ "})
	require.NoError(t, err)
	require.Equal(t, "http://localhost:5000", client.BaseURL())
}

func TestPredictUploadsMultipartFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/predict", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, []byte("png-bytes"), data)
		require.Equal(t, "spiral.png", header.Filename)
		require.Equal(t, "image/png", header.Header.Get("Content-Type"))
		require.Empty(t, r.FormValue("previous_result"))

		_, _ = w.Write([]byte(`{"result":"Positive","confidence":0.8734}`))
	})

	got, err := client.Predict(context.Background(), screening.NewCaptureInput("spiral.png", "image/png", []byte("png-bytes")))
	require.NoError(t, err)
	require.Equal(t, "Positive", got.Label)
	require.InDelta(t, 0.8734, got.Confidence, 1e-9)
	require.Equal(t, "87.34", got.Percent())
}

func TestPredictDefaultsMissingConfidence(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"Healthy"}`))
	})

	got, err := client.Predict(context.Background(), screening.NewCaptureInput("a.png", "image/png", []byte{1}))
	require.NoError(t, err)
	require.Equal(t, screening.DefaultImageConfidence, got.Confidence)
}

func TestPredictClampsConfidence(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"Healthy","confidence":1.7}`))
	})

	got, err := client.Predict(context.Background(), screening.NewCaptureInput("a.png", "image/png", []byte{1}))
	require.NoError(t, err)
	require.Equal(t, 1.0, got.Confidence)
}

func TestPredictSurfacesErrorEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model not loaded"}`))
	})

	_, err := client.Predict(context.Background(), screening.NewCaptureInput("a.png", "image/png", []byte{1}))
	require.Error(t, err)
	require.ErrorIs(t, err, screening.ErrNetwork)
	require.Contains(t, err.Error(), "Model not loaded")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestPredictTransportFailureWrapsNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	client, err := New(Options{BaseURL: server.URL})
	require.NoError(t, err)
	server.Close()

	_, err = client.Predict(context.Background(), screening.NewCaptureInput("a.png", "image/png", []byte{1}))
	require.ErrorIs(t, err, screening.ErrNetwork)
}

func TestPredictRejectsMalformedReply(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := client.Predict(context.Background(), screening.NewCaptureInput("a.png", "image/png", []byte{1}))
	require.ErrorIs(t, err, screening.ErrNetwork)
}

func TestPredictVoiceSendsPreviousResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict-voice", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "Parkinson", r.FormValue("previous_result"))
		_, _ = w.Write([]byte(`{"result":"Parkinson","confidence":0.91}`))
	})

	got, err := client.PredictVoice(context.Background(), screening.NewCaptureInput("r.wav", "audio/wav", []byte{1}), "Parkinson")
	require.NoError(t, err)
	require.Equal(t, "Parkinson", got.Label)
	require.Equal(t, screening.PolarityPositive, got.Polarity(screening.ModalityVoice))
}

func TestPredictVoiceOmitsEmptyHint(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, present := r.MultipartForm.Value["previous_result"]
		require.False(t, present)
		_, _ = w.Write([]byte(`{"result":"Healthy","confidence":0.6}`))
	})

	_, err := client.PredictVoice(context.Background(), screening.NewCaptureInput("r.wav", "audio/wav", []byte{1}), "  ")
	require.NoError(t, err)
}

func TestPredictVoiceRequiresConfidence(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"Healthy"}`))
	})

	_, err := client.PredictVoice(context.Background(), screening.NewCaptureInput("r.wav", "audio/wav", []byte{1}), "")
	require.ErrorIs(t, err, screening.ErrNetwork)
	require.Contains(t, err.Error(), "no confidence")
}

func TestClassifyRoutesByModality(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`{"result":"Healthy","confidence":0.5}`))
	})

	input := screening.NewCaptureInput("x", "application/octet-stream", []byte{1})
	_, err := client.Classify(context.Background(), screening.ModalityHandwriting, input, "")
	require.NoError(t, err)
	_, err = client.Classify(context.Background(), screening.ModalityVoice, input, "")
	require.NoError(t, err)
	_, err = client.Classify(context.Background(), screening.Modality("gait"), input, "")
	require.ErrorIs(t, err, screening.ErrValidation)

	require.Equal(t, []string{"/predict", "/predict-voice"}, paths)
}

func TestSaveResultPostsJSON(t *testing.T) {
	var got SaveRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/save-result", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":"Saved"}`))
	})

	err := client.SaveResult(context.Background(), SaveRequest{PatientID: "7", Type: "spiral", Result: "Healthy", Confidence: 0.8734})
	require.NoError(t, err)
	require.Equal(t, SaveRequest{PatientID: "7", Type: "spiral", Result: "Healthy", Confidence: 0.8734}, got)
}

func TestLoginReturnsIdentity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, LoginRequest{Username: "ana", Password: "pw", Role: "patient"}, req)
		_, _ = w.Write([]byte(`{"message":"Login successful","id":12,"name":"Ana"}`))
	})

	reply, err := client.Login(context.Background(), LoginRequest{Username: "ana", Password: "pw", Role: "patient"})
	require.NoError(t, err)
	require.Equal(t, "12", reply.ID.String())
	require.Equal(t, "Ana", reply.Name)
}

func TestLoginUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
	})

	_, err := client.Login(context.Background(), LoginRequest{Username: "ana", Password: "bad"})
	require.ErrorIs(t, err, ErrUnauthorized)
	require.ErrorIs(t, err, screening.ErrNetwork)
}

func TestRegisterOmitsOptionalFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		require.NotContains(t, raw, "age")
		require.NotContains(t, raw, "contact")
		require.Equal(t, "Ana", raw["name"])
		_, _ = w.Write([]byte(`{"message":"Registration successful"}`))
	})

	msg, err := client.Register(context.Background(), RegisterRequest{Username: "ana", Password: "pw", Name: "Ana"})
	require.NoError(t, err)
	require.Equal(t, "Registration successful", msg)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Username already exists"}`))
	})

	_, err := client.Register(context.Background(), RegisterRequest{Username: "ana", Password: "pw", Name: "Ana"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Username already exists")
}

func TestResultsDecodesList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`[{"id":3,"patient_id":12,"patient_name":"Ana","patient_age":null,"patient_contact":"x","type":"voice","result":"Healthy","confidence":0.62,"timestamp":"2026-01-02T03:04:05"}]`))
	})

	records, err := client.Results(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Ana", records[0].PatientName)
	require.Nil(t, records[0].PatientAge)
	require.Equal(t, "voice", records[0].Type)
}

func TestHealthUsesConfiguredPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/status", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"healthy","model_loaded":true,"timestamp":"now"}`))
	}))
	t.Cleanup(server.Close)

	client, err := New(Options{BaseURL: server.URL, HealthPath: "/status"})
	require.NoError(t, err)

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	require.True(t, health.Healthy())
	require.False(t, Health{Status: "unhealthy"}.Healthy())
}
