package app

import (
	"sync"

	"challenge-quiz-service/internal/domain"
)

// RankingFeed fans ranking snapshots out to live subscribers.
type RankingFeed struct {
	mu          sync.Mutex
	subscribers map[chan domain.Ranking]domain.RankingField
}

func NewRankingFeed() *RankingFeed {
	return &RankingFeed{subscribers: make(map[chan domain.Ranking]domain.RankingField)}
}

// Subscribe registers a channel for rankings sorted by field and delivers initial first.
// The caller must invoke the returned cancel function to avoid leaks.
func (f *RankingFeed) Subscribe(field domain.RankingField, initial domain.Ranking) (<-chan domain.Ranking, func()) {
	ch := make(chan domain.Ranking, 8)
	ch <- initial

	f.mu.Lock()
	f.subscribers[ch] = field
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Fields lists the distinct sort fields that currently have subscribers.
func (f *RankingFeed) Fields() []domain.RankingField {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[domain.RankingField]struct{})
	fields := make([]domain.RankingField, 0, 1)
	for _, field := range f.subscribers {
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		fields = append(fields, field)
	}
	return fields
}

// Publish delivers ranking to subscribers of its sort field without blocking.
func (f *RankingFeed) Publish(ranking domain.Ranking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch, field := range f.subscribers {
		if field != ranking.SortedBy {
			continue
		}
		select {
		case ch <- ranking:
		default:
			// slow subscriber: replace the oldest pending snapshot
			select {
			case <-ch:
			default:
			}
			ch <- ranking
		}
	}
}
