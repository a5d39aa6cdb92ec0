package sdust

import "github.com/gammazero/deque"

// maxBaseCap bounds the up-front allocation for very large windows.
const maxBaseCap = 4096

// window holds the most recent triplets of the current run together with
// the counters used to score it.
//
// cw and rw describe the whole window. cv and rv describe only its last l
// triplets, the suffix with the best score seen so far.
type window struct {
	triplets  deque.Deque[uint8]
	capacity  int
	threshold int

	cw, cv [64]int
	rw, rv int
	l      int
}

func newWindow(windowSize, threshold int) window {
	w := window{capacity: windowSize - 2, threshold: threshold}
	w.triplets.SetBaseCap(min(w.capacity, maxBaseCap))
	return w
}

// add pushes triplet t, evicting the oldest triplet when the window is full.
func (w *window) add(t uint8) {
	if w.triplets.Len() >= w.capacity {
		s := w.triplets.PopFront()
		w.cw[s]--
		w.rw -= w.cw[s]
		if w.l > w.triplets.Len() {
			w.l--
			w.cv[s]--
			w.rv -= w.cv[s]
		}
	}

	w.triplets.PushBack(t)
	w.l++

	// add the count before incrementing: r stays the sum of c*(c-1)/2
	w.rw += w.cw[t]
	w.cw[t]++
	w.rv += w.cv[t]
	w.cv[t]++

	if w.cv[t]*10 > 2*w.threshold {
		w.trim(t)
	}
}

// trim shrinks the tracked suffix from its front up to and including the
// first occurrence of t.
func (w *window) trim(t uint8) {
	for {
		s := w.triplets.At(w.triplets.Len() - w.l)
		w.l--
		w.cv[s]--
		w.rv -= w.cv[s]
		if s == t {
			return
		}
	}
}

// dense reports whether the window may contain a perfect interval.
func (w *window) dense() bool {
	return w.rw*10 > w.l*w.threshold
}

// reset empties the window while keeping its parameters.
func (w *window) reset() {
	w.triplets.Clear()
	w.cw, w.cv = [64]int{}, [64]int{}
	w.rw, w.rv, w.l = 0, 0, 0
}

func (w *window) len() int { return w.triplets.Len() }
