package extraction

import (
	"context"

	"github.com/burnout909/ai-cpx-app-sub001/checklist"
)

// Record is the evidence found for one checklist item: zero or more verbatim
// transcript quotations satisfying the item's criteria. The extractor
// contract forbids invented quotations; consumers may assume every evidence
// string is a substring of the transcript.
type Record struct {
	ID       string   `json:"id"`
	Evidence []string `json:"evidence"`
}

// Extractor is the evidence-extraction collaborator, called once per
// checklist section with the full transcript and that section's items.
type Extractor interface {
	Extract(ctx context.Context, transcriptText string, items []checklist.Item) ([]Record, error)
}
