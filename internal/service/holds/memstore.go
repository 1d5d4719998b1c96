package holds

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// MemoryStore in-memory хранилище холдов (бэкенд по умолчанию).
// Холды короткоживущие, поэтому потеря при рестарте процесса допустима:
// клиент просто захватит слот заново.
type MemoryStore struct {
	mu    sync.RWMutex
	holds map[string]*domain.SlotHold
}

// NewMemoryStore создает пустое in-memory хранилище
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{holds: make(map[string]*domain.SlotHold)}
}

// Create сохраняет новый холд
func (s *MemoryStore) Create(_ context.Context, hold *domain.SlotHold) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *hold
	s.holds[hold.ID] = &copied
	return nil
}

// GetByID возвращает холд по идентификатору
func (s *MemoryStore) GetByID(_ context.Context, id string) (*domain.SlotHold, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hold, ok := s.holds[id]
	if !ok {
		return nil, ErrHoldNotFound
	}
	copied := *hold
	return &copied, nil
}

// ListByProviderDate возвращает активные холды провайдера на дату
func (s *MemoryStore) ListByProviderDate(_ context.Context, providerID int64, date time.Time) ([]*domain.SlotHold, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.SlotHold, 0)
	for _, hold := range s.holds {
		if hold.ProviderID != providerID || hold.State != domain.HoldStateActive {
			continue
		}
		if !domain.SameDate(hold.Date, date) {
			continue
		}
		copied := *hold
		result = append(result, &copied)
	}
	return result, nil
}

// ListActive возвращает все активные холды
func (s *MemoryStore) ListActive(_ context.Context) ([]*domain.SlotHold, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.SlotHold, 0)
	for _, hold := range s.holds {
		if hold.State != domain.HoldStateActive {
			continue
		}
		copied := *hold
		result = append(result, &copied)
	}
	return result, nil
}

// UpdateState переводит холд из from в to (compare-and-swap по состоянию)
func (s *MemoryStore) UpdateState(_ context.Context, id string, from, to domain.HoldState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hold, ok := s.holds[id]
	if !ok {
		return ErrHoldNotFound
	}
	if hold.State != from {
		return ErrHoldNotActive
	}
	hold.State = to
	return nil
}
