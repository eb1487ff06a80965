// Package selector picks the single document to serve for a channel.
//
// The store keeps at most one document flagged per channel, but two concurrent
// activations can leave more than one flagged until the last writer settles.
// Selection stays deterministic through that window.
package selector

import (
	"github.com/xiaot623/ledcontent/internal/domain"
)

// SelectLive returns the active document with the latest creation time.
// Equal timestamps fall back to the lowest document ID.
func SelectLive(docs []domain.DocumentSummary) (domain.DocumentSummary, bool) {
	var (
		best  domain.DocumentSummary
		found bool
	)
	for _, d := range docs {
		if !d.IsActive {
			continue
		}
		if !found || d.CreatedAt.After(best.CreatedAt) ||
			(d.CreatedAt.Equal(best.CreatedAt) && d.DocumentID < best.DocumentID) {
			best, found = d, true
		}
	}
	return best, found
}

// SelectTest returns the test document with the lowest document ID.
func SelectTest(docs []domain.DocumentSummary) (domain.DocumentSummary, bool) {
	var (
		best  domain.DocumentSummary
		found bool
	)
	for _, d := range docs {
		if !d.IsTest {
			continue
		}
		if !found || d.DocumentID < best.DocumentID {
			best, found = d, true
		}
	}
	return best, found
}

// Select dispatches on channel.
func Select(ch domain.Channel, docs []domain.DocumentSummary) (domain.DocumentSummary, bool) {
	if ch == domain.ChannelTest {
		return SelectTest(docs)
	}
	return SelectLive(docs)
}
