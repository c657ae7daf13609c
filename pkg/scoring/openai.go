package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/scentaustralia/leadgen/pkg/domain"
	"github.com/scentaustralia/leadgen/pkg/logger"
	"github.com/scentaustralia/leadgen/pkg/models"
)

// OpenAIConfig configures the OpenAI-backed assessor.
type OpenAIConfig struct {
	APIKey      string
	Model       string  // default: gpt-4-turbo-preview
	Temperature float32 // default: 0.3
	MaxTokens   int     // default: 1000
}

// OpenAIAssessor implements Assessor and Composer on top of the OpenAI
// chat completion API. All failures are reported as ANALYSIS_UNAVAILABLE
// so the scoring engine can fall back.
type OpenAIAssessor struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      logger.Logger
}

// NewOpenAIAssessor creates a new OpenAI assessor
func NewOpenAIAssessor(cfg OpenAIConfig, log logger.Logger) *OpenAIAssessor {
	if cfg.Model == "" {
		cfg.Model = "gpt-4-turbo-preview"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1000
	}

	return &OpenAIAssessor{
		client:      openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      log,
	}
}

// jsonBlock grabs the outermost JSON object in a completion, tolerating
// prose the model wraps around it.
var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

// Assess sends the lead and target profile to the model and parses the
// structured assessment out of the response.
func (a *OpenAIAssessor) Assess(ctx context.Context, lead models.Lead, profile TargetProfile) (*models.Assessment, error) {
	prompt := buildAssessPrompt(lead, profile)

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a B2B sales lead analyst specializing in fragrance industry opportunities.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	})
	if err != nil {
		a.logger.Warn("openai assessment failed", "company", lead.CompanyName,
			"duration", time.Since(start).String(), "error", err)
		return nil, domain.NewAnalysisUnavailableError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, domain.NewAnalysisUnavailableError(fmt.Errorf("empty completion"))
	}

	content := resp.Choices[0].Message.Content
	match := jsonBlock.FindString(content)
	if match == "" {
		match = content
	}

	var assessment models.Assessment
	if err := json.Unmarshal([]byte(match), &assessment); err != nil {
		return nil, domain.NewAnalysisUnavailableError(fmt.Errorf("malformed assessment: %w", err))
	}

	a.logger.Debug("openai assessment completed", "company", lead.CompanyName,
		"score", assessment.Score, "tokens", resp.Usage.TotalTokens,
		"duration", time.Since(start).String())
	return &assessment, nil
}

// Compose writes a personalized outreach email for the lead.
func (a *OpenAIAssessor) Compose(ctx context.Context, lead models.Lead) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a professional B2B sales copywriter.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildOutreachPrompt(lead),
			},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return "", domain.NewAnalysisUnavailableError(err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewAnalysisUnavailableError(fmt.Errorf("empty completion"))
	}
	return resp.Choices[0].Message.Content, nil
}

func buildAssessPrompt(lead models.Lead, profile TargetProfile) string {
	orDefault := func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	}

	var b strings.Builder
	b.WriteString("You are a lead scoring and analysis expert for Scent Australia, a company specializing in premium fragrance solutions for businesses.\n\n")
	b.WriteString("Analyze the following lead and provide a comprehensive assessment:\n\n")
	fmt.Fprintf(&b, "Company Name: %s\n", lead.CompanyName)
	fmt.Fprintf(&b, "Industry: %s\n", orDefault(lead.Industry, "Unknown"))
	fmt.Fprintf(&b, "Location: %s\n", orDefault(lead.Location, "Unknown"))
	fmt.Fprintf(&b, "Website: %s\n", orDefault(lead.Website, "Not provided"))
	fmt.Fprintf(&b, "Contact: %s\n", orDefault(lead.ContactName, "Unknown"))
	fmt.Fprintf(&b, "Email: %s\n", orDefault(lead.Email, "Not provided"))
	fmt.Fprintf(&b, "Phone: %s\n\n", orDefault(lead.Phone, "Not provided"))

	b.WriteString("Target industries:\n")
	for _, ind := range profile.Industries {
		fmt.Fprintf(&b, "- %s\n", ind)
	}
	b.WriteString("\nTarget locations:\n")
	for _, loc := range profile.Locations {
		fmt.Fprintf(&b, "- %s\n", loc)
	}
	b.WriteString("\nProduct catalog:\n")
	for _, p := range profile.Products {
		fmt.Fprintf(&b, "- %s\n", p)
	}

	b.WriteString(`
Respond with your analysis in the following JSON format only:
{
    "score": <0-100 integer>,
    "priority": "<high/medium/low>",
    "fit_assessment": "<excellent/good/moderate/poor>",
    "reasoning": "<brief explanation of the score>",
    "industry_relevance": <0-100 integer>,
    "recommended_products": ["<product1>", "<product2>"],
    "talking_points": ["<point1>", "<point2>", "<point3>"],
    "next_steps": ["<action1>", "<action2>"],
    "risk_factors": ["<risk1>", "<risk2>"]
}

Focus on:
1. How well the company fits the target market
2. Potential for fragrance/scent marketing solutions
3. Estimated business value
4. Any red flags or concerns
`)
	return b.String()
}

func buildOutreachPrompt(lead models.Lead) string {
	orDefault := func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	}

	return fmt.Sprintf(`Generate a professional B2B sales outreach email for Scent Australia.

Lead Details:
- Company: %s
- Contact: %s
- Industry: %s
- Location: %s

Scent Australia offers:
- Custom fragrance solutions
- Ambient scenting systems
- Brand signature scents
- Scent marketing consultation

Write a personalized, professional email that:
1. Opens with relevance to their industry
2. Highlights benefits specific to their business type
3. Includes a clear call to action
4. Maintains a warm but professional tone

Keep it under 200 words.`,
		lead.CompanyName,
		orDefault(lead.ContactName, "Business Owner"),
		orDefault(lead.Industry, "Business"),
		orDefault(lead.Location, "Australia"))
}
