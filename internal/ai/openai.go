package ai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/detachd/portal/internal/errors"
	"github.com/detachd/portal/internal/models"
	"github.com/sashabaranov/go-openai"
)

const maxTokens = 1024

const analysisSystemPrompt = `You are a fraud analyst for an insurance company.
Assess the claim the user describes. Write a short plain-text assessment, then
finish with a single line containing only a JSON object of the form
{"riskScore": <0-100 integer>, "recommendation": "<one sentence>"}.`

// OpenAIAnalyzer assesses claims with a chat completion model.
type OpenAIAnalyzer struct {
	client *openai.Client
	logger *slog.Logger
}

func NewOpenAIAnalyzer(apiKey string, logger *slog.Logger) *OpenAIAnalyzer {
	return &OpenAIAnalyzer{
		client: openai.NewClient(apiKey),
		logger: logger.With("source", "OpenAIAnalyzer"),
	}
}

func (a *OpenAIAnalyzer) AnalyzeClaim(
	ctx context.Context,
	claim models.ClaimRecord,
	chunks chan<- string,
) (*Assessment, error) {
	prompt, err := claimPrompt(claim)
	if err != nil {
		return nil, errors.Wrap(err, "build claim prompt")
	}

	stream, err := a.client.CreateChatCompletionStream(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     openai.GPT3Dot5Turbo1106,
			MaxTokens: maxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: analysisSystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "create chat completion stream")
	}
	defer stream.Close()

	var full strings.Builder
	for {
		response, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return nil, errors.Wrap(recvErr, "receive completion chunk")
		}
		if len(response.Choices) == 0 {
			continue
		}
		delta := response.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if chunks != nil {
			select {
			case chunks <- delta:
			case <-ctx.Done():
				return nil, errors.Wrap(ctx.Err(), "context cancelled")
			}
		}
	}

	assessment, err := parseAssessment(full.String())
	if err != nil {
		return nil, errors.Wrap(err, "parse assessment")
	}
	return assessment, nil
}

func claimPrompt(claim models.ClaimRecord) (string, error) {
	var prompt strings.Builder
	encoder := json.NewEncoder(&prompt)
	prompt.WriteString("Claim to assess:\n")
	if err := encoder.Encode(struct {
		ClaimNumber      string  `json:"claimNumber"`
		PolicyholderName string  `json:"policyholderName"`
		ClaimType        string  `json:"claimType"`
		AmountClaimed    float64 `json:"amountClaimed"`
		Description      string  `json:"description"`
	}{
		ClaimNumber:      claim.ClaimNumber,
		PolicyholderName: claim.PolicyholderName,
		ClaimType:        claim.ClaimType,
		AmountClaimed:    claim.AmountClaimed,
		Description:      claim.Description,
	}); err != nil {
		return "", errors.Wrap(err, "encode claim")
	}
	return prompt.String(), nil
}

// parseAssessment extracts the trailing JSON object from the model output and
// uses the preceding text as the summary.
func parseAssessment(output string) (*Assessment, error) {
	start := strings.LastIndex(output, "{")
	end := strings.LastIndex(output, "}")
	if start == -1 || end == -1 || end < start {
		return nil, errors.New("no JSON object in model output")
	}

	var parsed struct {
		RiskScore      int    `json:"riskScore"`
		Recommendation string `json:"recommendation"`
	}
	if err := json.Unmarshal([]byte(output[start:end+1]), &parsed); err != nil {
		return nil, errors.Wrap(err, "unmarshal model JSON")
	}

	return &Assessment{
		RiskScore:      clampScore(parsed.RiskScore),
		Summary:        strings.TrimSpace(output[:start]),
		Recommendation: parsed.Recommendation,
	}, nil
}
