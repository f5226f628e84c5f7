package reasoning

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/summarize.md
var summarizePromptRaw string

//go:embed prompts/judge.md
var judgePromptRaw string

// Parsed once at package init; reused on every call.
var (
	summarizeTemplate = template.Must(template.New("summarize").Parse(summarizePromptRaw))
	judgeTemplate     = template.Must(template.New("judge").Parse(judgePromptRaw))
)
