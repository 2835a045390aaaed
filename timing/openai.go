package timing

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
	Model string `envconfig:"CPX_TIMING_MODEL" default:"gpt-4o-mini"`
}

const classificationSystemPrompt = `You segment a clinical encounter into four phases:
history, physical_exam, education, ppi (patient-provider interaction).
Given the transcript and the timing signal, assign each phase the elapsed-time range it occupied.
Omit a phase that did not occur. Respond with JSON:
{"history": {"start_sec": 0, "end_sec": 0}, ...} using only the four phase names as keys.`

// OpenAIClassifier implements Classifier on the OpenAI chat completions API.
type OpenAIClassifier struct {
	client    openai.Client
	model     string
	cpxLogger zerolog.Logger
}

func NewOpenAIClassifier(client openai.Client) (*OpenAIClassifier, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, err
	}
	return &OpenAIClassifier{
		client:    client,
		model:     config.Model,
		cpxLogger: logger.NewLogger("OpenAIClassifier"),
	}, nil
}

func (c *OpenAIClassifier) Classify(ctx context.Context, in Input) (Map, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(classificationSystemPrompt),
			openai.UserMessage(buildClassificationPrompt(in)),
		},
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("classification call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("classification call returned no choices")
	}

	var raw map[checklist.Section]Range
	content := utils.ExtractJSON(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("decode classification response: %w", err)
	}

	m := make(Map)
	for _, section := range checklist.Sections() {
		if r, ok := raw[section]; ok {
			m[section] = r
		}
	}
	return m, nil
}

func buildClassificationPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total session duration: %.1f seconds\n\n", in.TotalDurationSec())
	switch {
	case in.Turns != nil && len(in.Turns.Turns) > 0:
		b.WriteString("Dialogue turns with elapsed seconds:\n")
		for _, turn := range in.Turns.Turns {
			fmt.Fprintf(&b, "[%.1f] %s\n", turn.ElapsedSec, turn.Text)
		}
	case len(in.Segments) > 0:
		b.WriteString("Transcript segments with start/end seconds:\n")
		for _, segment := range in.Segments {
			fmt.Fprintf(&b, "[%.1f-%.1f] %s\n", segment.Start, segment.End, segment.Text)
		}
	default:
		b.WriteString("Transcript (no timing signal, estimate against the stated duration):\n")
		b.WriteString(in.Transcript)
	}
	return b.String()
}
