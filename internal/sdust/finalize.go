package sdust

// flush emits the oldest tracked interval if it starts before windowStart,
// merging it into the previous result when they touch, and then discards
// every other tracked interval that starts before windowStart.
func (s *scanner) flush(windowStart int) {
	if s.perfect.Len() == 0 {
		return
	}
	oldest := s.perfect.Back()
	if oldest.start >= windowStart {
		return
	}

	if n := len(s.results); n > 0 && oldest.start <= s.results[n-1].End {
		s.results[n-1].End = max(s.results[n-1].End, oldest.finish)
	} else {
		s.results = append(s.results, Interval{Start: oldest.start, End: oldest.finish})
	}

	for s.perfect.Len() > 0 && s.perfect.Back().start < windowStart {
		s.perfect.PopBack()
	}
}
