// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate produces grounded answers and research hypotheses
// from retrieved context using the Gemini generateContent API.
package generate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/kosmos/synesis/pkg/types"
)

const (
	defaultGenerationModel = "models/gemini-1.5-pro-latest"
	generateMethod         = "generateContent"

	// Fallback texts returned to the user when the API call fails. The
	// underlying cause goes to the log writer, never to the answer.
	answerFallback     = "An error occurred while contacting the Gemini API."
	hypothesisFallback = "An error occurred while generating the hypothesis."
)

var answerPrompt = template.Must(template.New("answer").Parse(
	`Based on the following excerpts from scientific papers, answer the question.
If the answer is not in the excerpts, state that the information was not found.
Always cite the sources (metadata) of the excerpts you use.

Context:
---
{{.Context}}
---

Question: {{.Query}}

Answer:
`))

var hypothesisPrompt = template.Must(template.New("hypothesis").Parse(
	`You are a creative research assistant. Based on the following excerpts
from papers about '{{.Query}}', generate a new and interesting research
hypothesis that connects or extends the ideas presented.

Context:
---
{{.Context}}
---

New Research Hypothesis:
`))

// Generator resolves a usable Gemini model once at construction and
// renders prompts against it. Failed generations degrade to fallback
// text instead of aborting an interactive session.
type Generator struct {
	client *geminiClient
	model  string
	logw   io.Writer
}

// NewGenerator validates the credential, resolves the generation model
// against the live model listing, and returns the generator. A missing
// API key is a configuration error reported before any network call.
//
// Model resolution: the configured model (or the default) is used when
// the listing shows it supports content generation; otherwise the first
// listed gemini model that does. No such model is a hard error.
func NewGenerator(ctx context.Context, cfg types.GenerationConfig, client *http.Client, logw io.Writer) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key missing: set GEMINI_API_KEY or .secrets/gemini-api-key")
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logw == nil {
		logw = io.Discard
	}
	gc := &geminiClient{apiKey: cfg.APIKey, maxRetries: cfg.MaxRetries, client: client}

	preferred := cfg.Model
	if preferred == "" {
		preferred = defaultGenerationModel
	}
	if !strings.HasPrefix(preferred, "models/") {
		preferred = "models/" + preferred
	}

	model, err := resolveModel(ctx, gc, preferred)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(logw, "using model: %s\n", model)

	return &Generator{client: gc, model: model, logw: logw}, nil
}

// Model returns the resolved model name.
func (g *Generator) Model() string { return g.model }

func resolveModel(ctx context.Context, gc *geminiClient, preferred string) (string, error) {
	models, err := gc.ListModels(ctx)
	if err != nil {
		return "", fmt.Errorf("resolving generation model: %w", err)
	}

	for _, m := range models {
		if m.Name == preferred && m.Supports(generateMethod) {
			return preferred, nil
		}
	}
	for _, m := range models {
		if strings.Contains(m.Name, "gemini") && m.Supports(generateMethod) {
			return m.Name, nil
		}
	}
	return "", fmt.Errorf("no gemini model supporting %s is available to this API key", generateMethod)
}

type promptData struct {
	Query   string
	Context string
}

// GenerateResponse answers the query grounded in the context documents.
// An API failure returns fallback text with the cause written to the log
// writer; the caller always gets something printable.
func (g *Generator) GenerateResponse(ctx context.Context, query string, contextDocs []string) string {
	return g.run(ctx, answerPrompt, query, contextDocs, answerFallback)
}

// GenerateHypothesis proposes a research hypothesis about the topic
// grounded in the context documents. Degrades like GenerateResponse.
func (g *Generator) GenerateHypothesis(ctx context.Context, topic string, contextDocs []string) string {
	return g.run(ctx, hypothesisPrompt, topic, contextDocs, hypothesisFallback)
}

func (g *Generator) run(ctx context.Context, tmpl *template.Template, query string, contextDocs []string, fallback string) string {
	var prompt strings.Builder
	data := promptData{Query: query, Context: strings.Join(contextDocs, "\n\n")}
	if err := tmpl.Execute(&prompt, data); err != nil {
		fmt.Fprintf(g.logw, "error rendering prompt: %v\n", err)
		return fallback
	}

	text, err := g.client.GenerateContent(ctx, g.model, prompt.String())
	if err != nil {
		fmt.Fprintf(g.logw, "error calling Gemini API: %v\n", err)
		return fallback
	}
	return text
}
