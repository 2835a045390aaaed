package scoring

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/burnout909/ai-cpx-app-sub001/checklist"
	"github.com/burnout909/ai-cpx-app-sub001/extraction"
)

func testChecklist() checklist.Checklist {
	return checklist.Checklist{
		checklist.SectionHistory: {
			{ID: "HX-01", Title: "Onset", Criteria: "Asked when the pain started"},
			{ID: "HX-02", Title: "Location", Criteria: "Asked where the pain is"},
		},
		checklist.SectionPhysicalExam: {
			{ID: "PE-01", Title: "Auscultation", Criteria: "Listened to heart sounds"},
		},
		checklist.SectionEducation: {
			{ID: "ED-01", Title: "Diagnosis", Criteria: "Explained the likely diagnosis"},
		},
		checklist.SectionPPI: {
			{ID: "PPI-01", Title: "Empathy", Criteria: "Responded to patient concerns"},
		},
	}
}

func TestAssembleCoversEveryItemInOrder(t *testing.T) {
	cl := testChecklist()
	grades := Assemble(cl, map[checklist.Section][]extraction.Record{})

	require.Len(t, grades, len(checklist.Sections()))
	for _, section := range checklist.Sections() {
		require.Len(t, grades[section], len(cl[section]))
		for i, item := range cl[section] {
			require.Equal(t, item.ID, grades[section][i].ID)
			require.Equal(t, item.Title, grades[section][i].Title)
			require.Equal(t, item.Criteria, grades[section][i].Criteria)
		}
	}
}

func TestAssembleBinaryPoints(t *testing.T) {
	cl := testChecklist()
	evidence := map[checklist.Section][]extraction.Record{
		checklist.SectionHistory: {
			{ID: "HX-01", Evidence: []string{"When did the pain start?", "Was it sudden?"}},
		},
		checklist.SectionPPI: {
			{ID: "PPI-01", Evidence: []string{"I understand that must be scary."}},
		},
	}

	grades := Assemble(cl, evidence)

	history := grades[checklist.SectionHistory]
	require.Equal(t, 1, history[0].Point)
	require.Equal(t, []string{"When did the pain start?", "Was it sudden?"}, history[0].Evidence)
	require.Equal(t, 1, history[0].MaxEvidenceCount)

	// No evidence for HX-02, item still present with zero point.
	require.Equal(t, "HX-02", history[1].ID)
	require.Equal(t, 0, history[1].Point)
	require.Equal(t, []string{}, history[1].Evidence)

	require.Equal(t, 1, grades[checklist.SectionPPI][0].Point)
	require.Equal(t, 0, grades[checklist.SectionPhysicalExam][0].Point)
}

func TestAssembleEmptyEvidenceListScoresZero(t *testing.T) {
	cl := testChecklist()
	evidence := map[checklist.Section][]extraction.Record{
		checklist.SectionEducation: {
			{ID: "ED-01", Evidence: []string{}},
		},
	}
	grades := Assemble(cl, evidence)
	require.Equal(t, 0, grades[checklist.SectionEducation][0].Point)
	require.Equal(t, []string{}, grades[checklist.SectionEducation][0].Evidence)
}

func TestAssembleIgnoresUnknownRecordIDs(t *testing.T) {
	cl := testChecklist()
	evidence := map[checklist.Section][]extraction.Record{
		checklist.SectionHistory: {
			{ID: "HX-99", Evidence: []string{"hallucinated item"}},
		},
	}
	grades := Assemble(cl, evidence)
	for _, grade := range grades[checklist.SectionHistory] {
		require.Equal(t, 0, grade.Point)
	}
}

func TestAssembleDeterministic(t *testing.T) {
	cl := testChecklist()
	evidence := map[checklist.Section][]extraction.Record{
		checklist.SectionHistory: {
			{ID: "HX-02", Evidence: []string{"Where does it hurt?"}},
		},
	}
	first := Assemble(cl, evidence)
	second := Assemble(cl, evidence)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Repeated assembly produced different grades:\n%s", diff)
	}
}
