package memory

import "sort"

// scoredIndex pairs a similarity score with its position in a collection's
// entry slice.
type scoredIndex struct {
	score float64
	index int
}

// scoreHeap is a min-heap on score, used to keep only the top `limit`
// candidates while scanning a collection in a single O(n log k) pass.
type scoreHeap []scoredIndex

func (h scoreHeap) Len() int            { return len(h) }
func (h scoreHeap) Less(i, j int) bool  { return h[i].score < h[j].score }
func (h scoreHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *scoreHeap) Push(x interface{}) { *h = append(*h, x.(scoredIndex)) }
func (h *scoreHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// sortDescending orders items by score, highest first. Ties are broken by
// index ascending, so two equal-score entries come out in the order they
// were inserted rather than whatever order the heap happened to pop them.
func sortDescending(items []scoredIndex) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			return items[i].score > items[j].score
		}
		return items[i].index < items[j].index
	})
}
