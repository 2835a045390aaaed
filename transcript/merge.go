package transcript

import "strings"

// MergeParts concatenates per-part segment lists into one chronological
// sequence. Ids are renumbered from 1 and each part's times are shifted by a
// running offset equal to the end time of the previous part's last segment,
// so the merged sequence is globally time-ordered by construction. A part
// with no segments leaves the offset unchanged.
func MergeParts(parts [][]Segment) []Segment {
	var merged []Segment
	offset := 0.0
	id := 1
	for _, part := range parts {
		for _, segment := range part {
			merged = append(merged, Segment{
				ID:    id,
				Start: segment.Start + offset,
				End:   segment.End + offset,
				Text:  segment.Text,
			})
			id++
		}
		if len(part) > 0 {
			offset += part[len(part)-1].End
		}
	}
	return merged
}

// JoinTexts concatenates part texts with newline separators, preserving part
// order.
func JoinTexts(texts []string) string {
	return strings.Join(texts, "\n")
}
