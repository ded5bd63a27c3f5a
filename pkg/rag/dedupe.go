package rag

// dedupeKey identifies a snippet by its exact text and originating document.
// The same sentence indexed from two different files is two distinct entries.
type dedupeKey struct {
	text   string
	source string
}

// Dedupe collapses nodes that carry identical text from the same source,
// keeping the highest-scored occurrence of each. Output order follows the
// first appearance of each distinct snippet; on a score tie the earlier node
// wins. The input slice is not modified.
func Dedupe(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	index := make(map[dedupeKey]int, len(nodes))

	for _, n := range nodes {
		key := dedupeKey{text: n.Text, source: n.Meta.SourcePath}
		if at, seen := index[key]; seen {
			if n.Score > out[at].Score {
				out[at] = n
			}
			continue
		}
		index[key] = len(out)
		out = append(out, n)
	}
	return out
}
