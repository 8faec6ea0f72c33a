// Package screening defines the shared types of a two-modality screening session.
package screening

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Modality is one independent screening channel.
type Modality string

const (
	ModalityHandwriting Modality = "handwriting"
	ModalityVoice       Modality = "voice"
)

// ResultType maps a modality to the type tag stored by the backend.
func (m Modality) ResultType() string {
	switch m {
	case ModalityHandwriting:
		return "spiral"
	case ModalityVoice:
		return "voice"
	default:
		return string(m)
	}
}

// ParseModality accepts the modality name or its backend type tag.
func ParseModality(raw string) (Modality, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "handwriting", "spiral", "image":
		return ModalityHandwriting, nil
	case "voice":
		return ModalityVoice, nil
	default:
		return "", fmt.Errorf("unknown modality %q", raw)
	}
}

// Polarity is the derived reading of a free-text classification label.
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

// DefaultImageConfidence is substituted when /predict omits confidence.
const DefaultImageConfidence = 0.5

// Classification is the backend label plus confidence for one modality input.
type Classification struct {
	Label      string
	Confidence float64
}

// ClampConfidence bounds c to [0,1]; NaN maps to 0.
func ClampConfidence(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// FormatConfidence renders a fraction as a percentage with two fixed decimals.
func FormatConfidence(c float64) string {
	return strconv.FormatFloat(ClampConfidence(c)*100, 'f', 2, 64)
}

// Percent returns the displayed percentage string for this classification.
func (c Classification) Percent() string {
	return FormatConfidence(c.Confidence)
}

// PersistedConfidence converts the displayed percentage back to a 0-1 fraction.
func (c Classification) PersistedConfidence() float64 {
	pct, err := strconv.ParseFloat(c.Percent(), 64)
	if err != nil {
		return ClampConfidence(c.Confidence)
	}
	return pct / 100
}

// Polarity reads the label by case-insensitive substring match.
//
// Backend labels are free text, so there is no closed set to switch on.
func (c Classification) Polarity(m Modality) Polarity {
	if IsPositive(m, c.Label) {
		return PolarityPositive
	}
	return PolarityNegative
}

// IsPositive reports whether label reads as a positive finding for modality m.
func IsPositive(m Modality, label string) bool {
	lower := strings.ToLower(label)
	if strings.Contains(lower, "positive") {
		return true
	}
	return m == ModalityVoice && strings.Contains(lower, "parkinson")
}
