package sweep

import "iter"

// PassSequence yields pass indices 0, 1, 2, ... and stops before limit.
// A nil limit never stops; the consumer breaks out on cancellation.
func PassSequence(limit *int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for pass := 0; limit == nil || pass < *limit; pass++ {
			if !yield(pass) {
				return
			}
		}
	}
}
