package node

import "github.com/pricofy/langbly-node/internal/domain"

// ItemResult is the outcome of executing one input item. Exactly one of
// JSON and Err is set.
type ItemResult struct {
	Index int
	JSON  domain.JSON
	Err   error
}

// Batch collects item results in input order.
type Batch struct {
	results []ItemResult
}

// Success records a successful item
func Success(index int, json domain.JSON) ItemResult {
	return ItemResult{Index: index, JSON: json}
}

// Failure records a failed item
func Failure(index int, err error) ItemResult {
	return ItemResult{Index: index, Err: err}
}

// Failed reports whether the item failed
func (r ItemResult) Failed() bool {
	return r.Err != nil
}

// Item renders the result as an output item paired with its input. Failures
// become items carrying only an error message.
func (r ItemResult) Item() domain.Item {
	if r.Err != nil {
		return domain.NewItem(domain.JSON{"error": r.Err.Error()}, r.Index)
	}
	return domain.NewItem(r.JSON, r.Index)
}

// NewBatch creates a batch sized for n items
func NewBatch(n int) *Batch {
	return &Batch{results: make([]ItemResult, 0, n)}
}

// Add appends an item result
func (b *Batch) Add(r ItemResult) {
	b.results = append(b.results, r)
}

// Failures counts the failed items
func (b *Batch) Failures() int {
	n := 0
	for _, r := range b.results {
		if r.Failed() {
			n++
		}
	}
	return n
}

// Items renders every result as an output item
func (b *Batch) Items() []domain.Item {
	res := make([]domain.Item, 0, len(b.results))
	for _, r := range b.results {
		res = append(res, r.Item())
	}
	return res
}
