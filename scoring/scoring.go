package scoring

import (
	"github.com/burnout909/ai-cpx-app-sub001/checklist"
	"github.com/burnout909/ai-cpx-app-sub001/extraction"
)

// GradeItem is the scored output unit for one checklist item. Created once
// per pipeline run and never mutated after assembly.
type GradeItem struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Criteria         string   `json:"criteria"`
	Evidence         []string `json:"evidence"`
	Point            int      `json:"point"`
	MaxEvidenceCount int      `json:"max_evidence_count"`
}

// A single quotation is all the binary rule credits; additional evidence is
// carried for human review but does not change the point.
const maxEvidenceCount = 1

// Assemble merges per-section evidence with the checklist definition. Pure
// and deterministic: every checklist item yields exactly one GradeItem in
// checklist order, a missing evidence record counts as no evidence, and
// point is 1 iff at least one quotation was found.
func Assemble(cl checklist.Checklist, evidence map[checklist.Section][]extraction.Record) map[checklist.Section][]GradeItem {
	grades := make(map[checklist.Section][]GradeItem, len(cl))
	for _, section := range checklist.Sections() {
		items := cl[section]
		byID := make(map[string][]string, len(evidence[section]))
		for _, record := range evidence[section] {
			byID[record.ID] = record.Evidence
		}
		sectionGrades := make([]GradeItem, 0, len(items))
		for _, item := range items {
			quotes := byID[item.ID]
			if quotes == nil {
				quotes = []string{}
			}
			point := 0
			if len(quotes) > 0 {
				point = 1
			}
			sectionGrades = append(sectionGrades, GradeItem{
				ID:               item.ID,
				Title:            item.Title,
				Criteria:         item.Criteria,
				Evidence:         quotes,
				Point:            point,
				MaxEvidenceCount: maxEvidenceCount,
			})
		}
		grades[section] = sectionGrades
	}
	return grades
}
