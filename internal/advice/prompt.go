package advice

import (
	"strings"
)

const promptTemplate = `
You are an expert neurological health advisor. Respond clearly, with empathy, and in a supportive tone.

Patient's AI scan result: "{{label}}" (Confidence: {{confidence}}%)

Structure the advice with these exact section markers:

[SUMMARY]
One short sentence giving an overview and the immediate recommended action.

[LIFESTYLE]
Give EXACTLY 4 concise, actionable tips, one line each:
• Diet (name specific foods, e.g. a Mediterranean diet)
• Exercise (type and duration, e.g. 30 minutes of aerobic exercise daily)
• Mental activity (e.g. daily brain training such as learning a language)
• Sleep (e.g. a consistent 7-9 hour sleep schedule)

[HEALTHCARE]
Give EXACTLY 3 brief action items, one line each:
• When to see a doctor (e.g. book a neurologist appointment within 2 weeks)
• What to discuss (e.g. motor and non-motor symptoms such as tremor and sleep changes)
• Recommended tests (e.g. whether a DaTscan or specific blood markers are needed)

[PREVENTION]
Give 3-4 key preventive measures, one line each, based on the result:
- Positive or high risk: urgent neurologist consultation, medication management, start physical therapy, build a support network.
- Negative or low risk: daily high-intensity aerobic exercise, steady cognitive challenge (puzzles, reading), a yearly neurological checkup, a balanced anti-inflammatory diet.

Keep every bullet to ONE line. Be specific and actionable rather than generic. Start each tip with a bullet (•).
`

// BuildPrompt renders the advice request for one classification.
func BuildPrompt(label string, confidencePercent string) string {
	r := strings.NewReplacer(
		"{{label}}", strings.TrimSpace(label),
		"{{confidence}}", strings.TrimSpace(confidencePercent),
	)
	return r.Replace(promptTemplate)
}
