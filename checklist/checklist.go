package checklist

// Section is one of the four fixed clinical-skill categories that structure
// both the rubric and the scoring output.
type Section string

const (
	SectionHistory      Section = "history"
	SectionPhysicalExam Section = "physical_exam"
	SectionEducation    Section = "education"
	SectionPPI          Section = "ppi"
)

// Sections returns the canonical section order used everywhere a checklist or
// grade report is rendered. Output ordering never depends on completion order
// of concurrent work, only on this list.
func Sections() []Section {
	return []Section{SectionHistory, SectionPhysicalExam, SectionEducation, SectionPPI}
}

// Item is a single evidence checklist entry. Immutable once resolved for a
// pipeline run.
type Item struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Criteria string `json:"criteria" yaml:"criteria"`
}

// Checklist maps each section to its ordered item list. Item order is
// display-relevant and must be preserved through scoring.
type Checklist map[Section][]Item

// Clone returns a deep copy, guarding resolved checklists against mutation by
// callers.
func (c Checklist) Clone() Checklist {
	out := make(Checklist, len(c))
	for section, items := range c {
		copied := make([]Item, len(items))
		copy(copied, items)
		out[section] = copied
	}
	return out
}

// ItemCount returns the total number of items across all sections.
func (c Checklist) ItemCount() int {
	n := 0
	for _, items := range c {
		n += len(items)
	}
	return n
}
