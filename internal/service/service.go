package service

import (
	"log/slog"
	"sync"

	"github.com/xiaot623/ledcontent/internal/config"
	"github.com/xiaot623/ledcontent/internal/domain"
	"github.com/xiaot623/ledcontent/internal/store"
	"github.com/xiaot623/ledcontent/policy"
)

// Notifier fans compiled content out to display subscribers.
type Notifier interface {
	Broadcast(ch domain.Channel, data []byte)
}

type Service struct {
	store        store.Store
	policyEngine *policy.Engine
	config       *config.Config
	logger       *slog.Logger
	notifier     Notifier

	mu       sync.Mutex
	lastSent map[domain.Channel]string
}

// New wires the service. notifier may be nil when nothing subscribes to pushes.
func New(store store.Store, policyEngine *policy.Engine, cfg *config.Config, logger *slog.Logger, notifier Notifier) *Service {
	return &Service{
		store:        store,
		policyEngine: policyEngine,
		config:       cfg,
		logger:       logger,
		notifier:     notifier,
		lastSent:     make(map[domain.Channel]string),
	}
}
