package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/rbright/neuroscan/internal/screening"
)

type predictResponse struct {
	Result     string   `json:"result"`
	Confidence *float64 `json:"confidence"`
}

// Predict classifies a handwriting spiral image via /predict.
//
// A reply without confidence uses screening.DefaultImageConfidence.
func (c *Client) Predict(ctx context.Context, input screening.CaptureInput) (screening.Classification, error) {
	var reply predictResponse
	if err := c.upload(ctx, "/predict", input, nil, &reply); err != nil {
		return screening.Classification{}, err
	}
	if strings.TrimSpace(reply.Result) == "" {
		return screening.Classification{}, fmt.Errorf("%w: /predict reply has no result", screening.ErrNetwork)
	}

	confidence := screening.DefaultImageConfidence
	if reply.Confidence != nil {
		confidence = *reply.Confidence
	}
	return screening.Classification{
		Label:      reply.Result,
		Confidence: screening.ClampConfidence(confidence),
	}, nil
}

// PredictVoice classifies a voice sample via /predict-voice.
//
// previous is sent as previous_result when non-empty. A reply without
// confidence is malformed.
func (c *Client) PredictVoice(ctx context.Context, input screening.CaptureInput, previous string) (screening.Classification, error) {
	var fields map[string]string
	if previous = strings.TrimSpace(previous); previous != "" {
		fields = map[string]string{"previous_result": previous}
	}

	var reply predictResponse
	if err := c.upload(ctx, "/predict-voice", input, fields, &reply); err != nil {
		return screening.Classification{}, err
	}
	if strings.TrimSpace(reply.Result) == "" {
		return screening.Classification{}, fmt.Errorf("%w: /predict-voice reply has no result", screening.ErrNetwork)
	}
	if reply.Confidence == nil {
		return screening.Classification{}, fmt.Errorf("%w: /predict-voice reply has no confidence", screening.ErrNetwork)
	}
	return screening.Classification{
		Label:      reply.Result,
		Confidence: screening.ClampConfidence(*reply.Confidence),
	}, nil
}

// Classify routes input to the endpoint for modality.
func (c *Client) Classify(ctx context.Context, modality screening.Modality, input screening.CaptureInput, hint string) (screening.Classification, error) {
	switch modality {
	case screening.ModalityHandwriting:
		return c.Predict(ctx, input)
	case screening.ModalityVoice:
		return c.PredictVoice(ctx, input, hint)
	default:
		return screening.Classification{}, fmt.Errorf("%w: unsupported modality %q", screening.ErrValidation, modality)
	}
}
