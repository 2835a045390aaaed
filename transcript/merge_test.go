package transcript

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestMergePartsOffsetsAndRenumbers(t *testing.T) {
	parts := [][]Segment{
		{
			{ID: 1, Start: 0, End: 10, Text: "first"},
			{ID: 2, Start: 10, End: 25, Text: "second"},
		},
		{
			{ID: 1, Start: 0, End: 15, Text: "third"},
		},
	}

	merged := MergeParts(parts)

	expected := []Segment{
		{ID: 1, Start: 0, End: 10, Text: "first"},
		{ID: 2, Start: 10, End: 25, Text: "second"},
		{ID: 3, Start: 25, End: 40, Text: "third"},
	}
	if diff := cmp.Diff(expected, merged); diff != "" {
		t.Errorf("Unexpected merged segments:\n%s", diff)
	}
}

func TestMergePartsEmptyPartKeepsOffset(t *testing.T) {
	parts := [][]Segment{
		{{ID: 1, Start: 0, End: 5, Text: "a"}},
		{},
		{{ID: 1, Start: 0, End: 3, Text: "b"}},
	}

	merged := MergeParts(parts)

	require.Len(t, merged, 2)
	require.Equal(t, 5.0, merged[1].Start)
	require.Equal(t, 8.0, merged[1].End)
	require.Equal(t, 2, merged[1].ID)
}

func TestMergePartsMonotonicTimes(t *testing.T) {
	parts := [][]Segment{
		{{Start: 0, End: 4}, {Start: 4, End: 9}},
		{{Start: 0, End: 2}},
		{{Start: 0, End: 7}, {Start: 7, End: 11}},
	}

	merged := MergeParts(parts)

	for i := 1; i < len(merged); i++ {
		require.GreaterOrEqual(t, merged[i].Start, merged[i-1].Start)
		require.Equal(t, i+1, merged[i].ID)
	}
}

func TestMergePartsNoParts(t *testing.T) {
	require.Empty(t, MergeParts(nil))
}

func TestJoinTexts(t *testing.T) {
	require.Equal(t, "one\ntwo", JoinTexts([]string{"one", "two"}))
	require.Equal(t, "solo", JoinTexts([]string{"solo"}))
}
