package domain

// CompletionFromChildren returns floor(100 * done / total) for the given
// children. The second result is false when there are no children, in which
// case the parent keeps its current percentage.
func CompletionFromChildren(children []*Task) (int, bool) {
	if len(children) == 0 {
		return 0, false
	}

	done := 0
	for _, child := range children {
		if child.IsDone() {
			done++
		}
	}

	return (100 * done) / len(children), true
}
