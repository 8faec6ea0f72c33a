package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rbright/neuroscan/internal/advice"
	"github.com/rbright/neuroscan/internal/pipeline"
	"github.com/rbright/neuroscan/internal/screening"
)

const barWidth = 20

// sectionTitles pairs advice keys with their display headings, in display order.
var sectionTitles = []struct {
	key   string
	title string
}{
	{advice.KeySummary, "Summary"},
	{advice.KeyLifestyle, "Lifestyle Tips"},
	{advice.KeyHealthcare, "Healthcare Steps"},
	{advice.KeyPrevention, "Prevention"},
}

// Outcome renders one modality's prediction, advice, and errors.
func Outcome(o pipeline.Outcome) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(predictionTitle(o.Modality)))
	b.WriteString("\n")

	if o.HasResult {
		style := negativeStyle
		if o.Polarity == screening.PolarityPositive {
			style = positiveStyle
		}
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("result:    "), style.Render(o.Result.Label))
		fmt.Fprintf(&b, "%s %s%% %s\n", labelStyle.Render("confidence:"), o.Percent, style.Render(Bar(o.Result.Confidence, barWidth)))
	}
	if o.Error != "" {
		b.WriteString(errorStyle.Render("error: " + o.Error))
		b.WriteString("\n")
	}

	if o.HasAdvice {
		b.WriteString(Advice(o.Advice))
	}
	if o.AdviceError != "" {
		b.WriteString(errorStyle.Render("advice: " + o.AdviceError))
		b.WriteString("\n")
	}

	return b.String()
}

// NextStep renders the prompt to continue a screening with the voice step.
func NextStep(binary, label string) string {
	cmd := binary + " voice"
	if label = strings.TrimSpace(label); label != "" {
		cmd += " --hint " + strconv.Quote(label)
	}
	return dimStyle.Render("next: "+cmd) + "\n"
}

// Advice renders the non-empty advice sections with one bullet per line.
func Advice(s advice.Sections) string {
	var b strings.Builder
	for _, entry := range sectionTitles {
		content := s.Get(entry.key)
		if content == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(headerStyle.Render(entry.title))
		b.WriteString("\n")
		if entry.key == advice.KeySummary {
			b.WriteString(content)
			b.WriteString("\n")
			continue
		}
		for _, line := range advice.Bullets(content) {
			b.WriteString("  • ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Bar draws a fixed-width confidence gauge for a value in [0, 1].
func Bar(confidence float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(screening.ClampConfidence(confidence)*float64(width) + 0.5)
	return strings.Repeat("█", filled) + dimStyle.Render(strings.Repeat("░", width-filled))
}

// Elapsed formats recording seconds as MM:SS.
func Elapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return pad2(seconds/60) + ":" + pad2(seconds%60)
}

func pad2(v int) string {
	s := strconv.Itoa(v)
	if len(s) < 2 {
		return "0" + s
	}
	return s
}

func predictionTitle(m screening.Modality) string {
	switch m {
	case screening.ModalityVoice:
		return "Voice Prediction"
	case screening.ModalityHandwriting:
		return "Spiral Prediction"
	default:
		return strings.TrimSpace(string(m)) + " prediction"
	}
}

// padRight pads s with spaces to width display cells.
func padRight(s string, width int) string {
	return s + strings.Repeat(" ", max(0, width-lipgloss.Width(s)))
}
