package vision

// LabelCount is a distinct detected label with its occurrence count across
// all detections in one image
type LabelCount struct {
	Label string
	Count int
}

// Aggregate converts raw detections into a frequency-ranked list of distinct
// labels. Order is first-seen, not count order: every distinct label is
// resolved independently downstream and the count is informational only.
// A plain map would randomize iteration between runs.
func Aggregate(detections []Detection) []LabelCount {
	index := make(map[string]int)
	counts := []LabelCount{}

	for _, detection := range detections {
		if detection.Label == "" {
			continue
		}
		if i, ok := index[detection.Label]; ok {
			counts[i].Count++
			continue
		}
		index[detection.Label] = len(counts)
		counts = append(counts, LabelCount{Label: detection.Label, Count: 1})
	}
	return counts
}
