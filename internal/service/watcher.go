package service

import (
	"context"
	"time"

	"github.com/xiaot623/ledcontent/internal/domain"
)

var watchedChannels = []domain.Channel{domain.ChannelLive, domain.ChannelTest}

// RunContentWatcher polls the store and pushes the compiled definition of each
// channel whenever it changes. Writes may come from another process, so the
// store is the only source of truth.
func (s *Service) RunContentWatcher(ctx context.Context) {
	interval := time.Second
	if s.config != nil && s.config.WatchInterval > 0 {
		interval = s.config.WatchInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.pollContent(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollContent(ctx)
		}
	}
}

func (s *Service) pollContent(ctx context.Context) {
	pollCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	for _, ch := range watchedChannels {
		text, err := s.Definition(pollCtx, ch)
		if err != nil {
			s.logger.Warn("content poll failed", "channel", ch, "error", err)
			continue
		}

		s.mu.Lock()
		prev, seen := s.lastSent[ch]
		s.lastSent[ch] = text
		s.mu.Unlock()
		if seen && prev == text {
			continue
		}

		s.logger.Info("content changed", "channel", ch, "bytes", len(text))
		if s.notifier != nil {
			s.notifier.Broadcast(ch, []byte(text))
		}
	}
}
