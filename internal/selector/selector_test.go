package selector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xiaot623/ledcontent/internal/domain"
)

func TestSelectLivePicksLatest(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	docs := []domain.DocumentSummary{
		{DocumentID: "a", IsActive: true, CreatedAt: now.Add(-2 * time.Hour)},
		{DocumentID: "b", IsActive: true, CreatedAt: now.Add(-time.Hour)},
		{DocumentID: "c", IsActive: false, CreatedAt: now.Add(-time.Minute)},
	}

	got, ok := SelectLive(docs)
	assert.True(t, ok)
	assert.Equal(t, "b", got.DocumentID)
}

func TestSelectLiveTieBreaksOnID(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	created := now.Add(-time.Hour)
	docs := []domain.DocumentSummary{
		{DocumentID: "z", IsActive: true, CreatedAt: created},
		{DocumentID: "m", IsActive: true, CreatedAt: created},
	}

	got, ok := SelectLive(docs)
	assert.True(t, ok)
	assert.Equal(t, "m", got.DocumentID)
}

func TestSelectLiveKeepsFutureStampedDocuments(t *testing.T) {
	now := time.Now()
	docs := []domain.DocumentSummary{
		{DocumentID: "old", IsActive: false, CreatedAt: now.Add(-time.Hour)},
		{DocumentID: "ahead", IsActive: true, CreatedAt: now.Add(2 * time.Minute)},
	}

	got, ok := SelectLive(docs)
	assert.True(t, ok)
	assert.Equal(t, "ahead", got.DocumentID)
}

func TestSelectLiveEmpty(t *testing.T) {
	_, ok := SelectLive(nil)
	assert.False(t, ok)
}

func TestSelectTest(t *testing.T) {
	docs := []domain.DocumentSummary{
		{DocumentID: "b", IsTest: true},
		{DocumentID: "a", IsTest: true},
		{DocumentID: "0", IsTest: false},
	}

	got, ok := SelectTest(docs)
	assert.True(t, ok)
	assert.Equal(t, "a", got.DocumentID)

	_, ok = SelectTest(docs[2:])
	assert.False(t, ok)
}

func TestSelectDispatch(t *testing.T) {
	now := time.Now()
	docs := []domain.DocumentSummary{
		{DocumentID: "live", IsActive: true, CreatedAt: now.Add(-time.Second)},
		{DocumentID: "test", IsTest: true},
	}

	got, _ := Select(domain.ChannelLive, docs)
	assert.Equal(t, "live", got.DocumentID)
	got, _ = Select(domain.ChannelTest, docs)
	assert.Equal(t, "test", got.DocumentID)
}
