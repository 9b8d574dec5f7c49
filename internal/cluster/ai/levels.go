package ai

import "strings"

// SelectLevels reduces a '/'-delimited hierarchical value to the
// configured path segments. Indices may be negative to count from the
// end; out-of-range indices are silently dropped. Selected segments are
// joined with spaces. Nil levels keeps every segment (space-joined); an
// empty result means the position carries no signal for this value.
func SelectLevels(value string, levels []int) string {
	segments := strings.Split(value, "/")
	if levels == nil {
		return strings.Join(segments, " ")
	}

	var selected []string
	for _, idx := range levels {
		i := idx
		if i < 0 {
			i += len(segments)
		}
		if i < 0 || i >= len(segments) {
			continue
		}
		selected = append(selected, segments[i])
	}
	return strings.Join(selected, " ")
}
