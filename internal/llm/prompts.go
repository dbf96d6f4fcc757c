package llm

import (
	_ "embed"
	"strings"
)

//go:embed prompts/analysis.txt
var analysisTemplate string

const systemInstruction = "You are a strict but helpful ATS analyzer. Be critical about missing keywords and metrics. Always respond with valid JSON only, no markdown or explanations."

// Prompt is a system instruction plus the user message sent to the model.
type Prompt struct {
	System string
	User   string
}

// BuildAnalysisPrompt fills the analysis template with the role and resume text.
// Values are inserted verbatim in a single pass.
func BuildAnalysisPrompt(role, resumeText string) Prompt {
	replacer := strings.NewReplacer(
		"{{ROLE}}", role,
		"{{RESUME_TEXT}}", resumeText,
	)
	return Prompt{
		System: systemInstruction,
		User:   replacer.Replace(analysisTemplate),
	}
}
