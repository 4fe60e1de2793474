package bodies

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"github.com/testsmith-io/testsmith/core/config"
	"github.com/testsmith-io/testsmith/core/logger"
	"github.com/testsmith-io/testsmith/core/models"
)

const systemInstruction = "You are a strict code generation assistant. You only output valid Python code in code blocks."

var (
	pythonBlock  = regexp.MustCompile("(?s)```python\n(.*?)\n```")
	genericBlock = regexp.MustCompile("(?s)```\n(.*?)\n```")
)

// Generator produces test bodies for public members by prompting a model
// with the module source. It satisfies generator.BodySource.
type Generator struct {
	client *genai.Client
	cfg    config.LLM
}

// NewGenerator builds a body generator from the LLM config. The API key is
// read from the configured environment variable.
func NewGenerator(ctx context.Context, cfg config.LLM) (*Generator, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("body generation is disabled in config")
	}

	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable %s", cfg.APIKeyEnv)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Generator{client: client, cfg: cfg}, nil
}

// GenerateBodies prompts the model once per public member. A member whose
// generation fails is skipped with a warning; the caller falls back to stub
// bodies for anything missing from the returned map.
func (g *Generator) GenerateBodies(ctx context.Context, analysis *models.AnalysisResult, fixtures []string) (map[string][]string, error) {
	source, err := os.ReadFile(analysis.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read source for prompting: %w", err)
	}

	logger.Info("Generating test bodies using %s...", g.cfg.Model)

	bodies := map[string][]string{}
	for _, member := range analysis.PublicAPI {
		prompt := buildPrompt(member, string(source), fixtures)

		response, err := g.generate(ctx, prompt)
		if err != nil {
			logger.Warn("Body generation failed for %s: %v", member.Name, err)
			continue
		}

		lines := extractCode(response)
		if len(lines) == 0 {
			logger.Warn("No code found in model response for %s", member.Name)
			continue
		}
		bodies[member.Name] = lines
	}
	return bodies, nil
}

func (g *Generator) generate(ctx context.Context, prompt string) (string, error) {
	maxTokens := int32(g.cfg.MaxTokens)
	temperature := float32(0)

	result, err := g.client.Models.GenerateContent(ctx, g.cfg.Model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			MaxOutputTokens:   maxTokens,
			Temperature:       &temperature,
		},
	)
	if err != nil {
		return "", fmt.Errorf("genai call failed: %w", err)
	}
	return result.Text(), nil
}

func buildPrompt(member models.PublicMember, source string, fixtures []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert Python testing assistant. Your task is to write a comprehensive test body for a specific %s named `%s`.\n\n", member.Kind, member.Name)
	fmt.Fprintf(&b, "Here is the source code of the module:\n```python\n%s\n```\n\n", source)
	b.WriteString("The test file already has necessary imports and fixtures.\n")
	fmt.Fprintf(&b, "Available fixtures: %s\n\n", strings.Join(fixtures, ", "))
	fmt.Fprintf(&b, "Please write the Python code for the test function(s) or method(s) to test `%s`.\n", member.Name)
	b.WriteString("- Include a happy path test.\n")
	b.WriteString("- Include edge case tests if applicable.\n")
	b.WriteString("- Use `pytest`.\n")
	b.WriteString("- Do NOT wrap the code in a class if it's a function test, just write the `def test_...` functions.\n")
	b.WriteString("- If it's a class method, write the test methods (e.g. `def test_method_name(self, ...)`).\n")
	b.WriteString("- Use `assert` statements.\n")
	b.WriteString("- Do NOT include imports or `if __name__ == \"__main__\":`.\n")
	b.WriteString("- Output ONLY the python code for the tests, wrapped in a markdown code block.\n")
	return b.String()
}

// extractCode pulls the first fenced code block out of a model response.
// Responses without a code block yield nothing rather than garbage.
func extractCode(response string) []string {
	match := pythonBlock.FindStringSubmatch(response)
	if match == nil {
		match = genericBlock.FindStringSubmatch(response)
	}
	if match == nil {
		return nil
	}
	return strings.Split(match[1], "\n")
}
