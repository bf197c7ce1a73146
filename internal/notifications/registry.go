package notifications

import (
	"context"
	"sync"

	"github.com/groupcal/reminder-service/internal/model"
	"go.uber.org/zap"
)

// Provider delivers one reminder over a single channel. Implementations
// must treat expected conditions (user has no address for the channel) as a
// logged no-op, not an error.
type Provider interface {
	Send(ctx context.Context, occurrence *model.EventOccurrence, calendarDisplayName string, user *model.User) error
}

// Registry maps channel identifiers to providers. Registration is dynamic
// so apps can override built-in channels; the last registration for a type
// wins.
type Registry struct {
	mu        sync.RWMutex
	logger    *zap.SugaredLogger
	providers map[model.NotificationType]Provider
}

func NewRegistry(logger *zap.SugaredLogger) *Registry {
	return &Registry{
		logger:    logger,
		providers: map[model.NotificationType]Provider{},
	}
}

func (r *Registry) RegisterProvider(t model.NotificationType, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[t]; ok {
		r.logger.Infow("overriding notification provider", "type", t)
	}
	r.providers[t] = p
}

func (r *Registry) HasProvider(t model.NotificationType) bool {
	if !t.Valid() {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.providers[t]
	return ok
}

// GetProvider distinguishes two failures: an unrecognized type is a data
// integrity error (model.ErrNotificationTypeDoesNotExist), while a valid
// type with nothing registered is a deployment gap the caller should treat
// as skippable (model.ErrProviderNotAvailable).
func (r *Registry) GetProvider(t model.NotificationType) (Provider, error) {
	if !t.Valid() {
		return nil, model.ErrNotificationTypeDoesNotExist
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[t]
	if !ok {
		return nil, model.ErrProviderNotAvailable
	}

	return p, nil
}
