package sdust

// perfectInterval is a candidate region. score is a pair count over length
// triplets; finish is exclusive.
type perfectInterval struct {
	start  int
	finish int
	score  int
	length int
}

// findPerfect scans the part of the window in front of the tracked suffix,
// from right to left, and records candidates whose density beats the
// threshold. The tracker deque is ordered by start, largest first.
func (s *scanner) findPerfect(windowStart int) {
	w := &s.win
	c := w.cv
	r := w.rv
	n := w.len()

	var maxScore, maxLen int
	for i := n - w.l - 1; i >= 0; i-- {
		t := w.triplets.At(i)
		r += c[t]
		c[t]++

		score, length := r, n-i-1
		if score*10 <= s.threshold*length {
			continue
		}

		start := i + windowStart
		pos := 0
		for j := 0; j < s.perfect.Len(); j++ {
			p := s.perfect.At(j)
			if p.start < start {
				break
			}
			pos = j + 1
			if maxScore == 0 || p.score*maxLen > maxScore*p.length {
				maxScore, maxLen = p.score, p.length
			}
		}

		// skip candidates that are less dense than something already
		// tracked to their right
		if maxScore == 0 || score*maxLen >= maxScore*length {
			maxScore, maxLen = score, length
			s.perfect.Insert(pos, perfectInterval{
				start:  start,
				finish: n + 2 + windowStart, // last triplet covers two more bases
				score:  score,
				length: length,
			})
		}
	}
}
