package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/openai/openai-go"
	"github.com/rs/zerolog"

	"github.com/burnout909/ai-cpx-app-sub001/checklist"
	"github.com/burnout909/ai-cpx-app-sub001/logger"
	"github.com/burnout909/ai-cpx-app-sub001/utils"
)

type Config struct {
	Model string `envconfig:"CPX_EXTRACTION_MODEL" default:"gpt-4o"`
}

const extractionSystemPrompt = `You review a clinical encounter transcript against a checklist.
For every checklist item, collect the verbatim transcript quotations that satisfy the item's criteria.
Quote the transcript exactly; never paraphrase and never invent text that is not in the transcript.
An item with no supporting dialogue gets an empty evidence list.
Respond with JSON: {"items": [{"id": "<item id>", "evidence": ["<quotation>", ...]}, ...]} covering every item exactly once.`

// OpenAIExtractor implements Extractor on the OpenAI chat completions API
// with a JSON-object response format.
type OpenAIExtractor struct {
	client    openai.Client
	model     string
	cpxLogger zerolog.Logger
}

func NewOpenAIExtractor(client openai.Client) (*OpenAIExtractor, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, err
	}
	return &OpenAIExtractor{
		client:    client,
		model:     config.Model,
		cpxLogger: logger.NewLogger("OpenAIExtractor"),
	}, nil
}

type extractionResponse struct {
	Items []Record `json:"items"`
}

func (e *OpenAIExtractor) Extract(ctx context.Context, transcriptText string, items []checklist.Item) ([]Record, error) {
	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(extractionSystemPrompt),
			openai.UserMessage(buildExtractionPrompt(transcriptText, items)),
		},
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("extraction call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("extraction call returned no choices")
	}

	var parsed extractionResponse
	content := utils.ExtractJSON(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		e.cpxLogger.Err(err).Msg("Failed to decode extraction response")
		return nil, fmt.Errorf("decode extraction response: %w", err)
	}

	// The contract promises verbatim quotations only; anything the model
	// paraphrased or invented is dropped, not scored.
	records := make([]Record, 0, len(parsed.Items))
	for _, record := range parsed.Items {
		kept := make([]string, 0, len(record.Evidence))
		for _, quote := range record.Evidence {
			if strings.Contains(transcriptText, quote) {
				kept = append(kept, quote)
				continue
			}
			e.cpxLogger.Warn().
				Str("item_id", record.ID).
				Msg("Dropping evidence quotation not present in transcript")
		}
		record.Evidence = kept
		records = append(records, record)
	}
	return records, nil
}

func buildExtractionPrompt(transcriptText string, items []checklist.Item) string {
	var b strings.Builder
	b.WriteString("Checklist items:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- id: %s\n  title: %s\n  criteria: %s\n", item.ID, item.Title, item.Criteria)
	}
	b.WriteString("\nTranscript:\n")
	b.WriteString(transcriptText)
	return b.String()
}
