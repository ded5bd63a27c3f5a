package rag

import "log"

// FilterBySources removes nodes whose source document is already present in
// the prompt, identified by canonicalized path membership in exclude.
//
// Nodes without a source path always survive: there is no document to clash
// with. Nodes whose path cannot be canonicalized survive too, losing a
// snippet over a filesystem hiccup is worse than a rare duplicate. A nil or
// empty set filters nothing. The input slice is not modified.
func FilterBySources(nodes []Node, exclude *SourceSet, logger *log.Logger) []Node {
	out := make([]Node, 0, len(nodes))
	if exclude == nil || exclude.Len() == 0 {
		return append(out, nodes...)
	}

	dropped := 0
	for _, n := range nodes {
		if n.Meta.SourcePath == "" {
			out = append(out, n)
			continue
		}
		member, err := exclude.Contains(n.Meta.SourcePath)
		if err != nil {
			if logger != nil {
				logger.Printf("[FILTER] Keeping node %s, canonicalize %q failed: %v", n.ID, n.Meta.SourcePath, err)
			}
			out = append(out, n)
			continue
		}
		if member {
			dropped++
			continue
		}
		out = append(out, n)
	}

	if dropped > 0 && logger != nil {
		logger.Printf("[FILTER] Dropped %d/%d snippets already covered by direct context", dropped, len(nodes))
	}
	return out
}
