package broadcast

import "strings"

// PackMentions greedily partitions items into the fewest strings whose
// rendered form "prefix + item item ... + suffix" stays within maxLen,
// preserving item order. A single item that cannot fit even alone is
// emitted as its own oversized chunk rather than dropped or truncated.
func PackMentions(items []string, prefix, suffix string, maxLen int) []string {
	overhead := len(prefix) + len(suffix)

	var chunks []string
	var current []string
	currentLen := overhead

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, prefix+strings.Join(current, " ")+suffix)
		current = nil
		currentLen = overhead
	}

	for _, item := range items {
		added := len(item)
		if len(current) > 0 {
			added++ // separator space
		}
		if currentLen+added > maxLen && len(current) > 0 {
			flush()
			added = len(item)
		}
		current = append(current, item)
		currentLen += added
	}
	flush()

	return chunks
}
