package holds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

const (
	redisKeyPrefix    = "schedhold"
	redisActiveSetKey = redisKeyPrefix + ":active"

	// redisHoldGrace сколько терминальный холд остается читаемым после истечения,
	// чтобы Consume/Release могли вернуть осмысленную ошибку вместо not found
	redisHoldGrace = time.Hour
)

// RedisStore хранилище холдов в Redis для развертываний из нескольких
// инстансов: все инстансы видят одни и те же холды.
// Сериализация захвата остается на стороне арбитра (замок провайдера),
// поэтому инстансы должны шардировать провайдеров либо работать в режиме
// одного активного писателя; CAS по состоянию выполняется через WATCH.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore создает хранилище холдов поверх клиента Redis
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func holdKey(id string) string {
	return fmt.Sprintf("%s:hold:%s", redisKeyPrefix, id)
}

func providerDateKey(providerID int64, date time.Time) string {
	return fmt.Sprintf("%s:provider:%d:%s", redisKeyPrefix, providerID, date.Format(domain.DateFormat))
}

// Create сохраняет новый холд
func (s *RedisStore) Create(ctx context.Context, hold *domain.SlotHold) error {
	payload, err := json.Marshal(hold)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal hold: %v", ErrInternal, err)
	}

	ttl := time.Until(hold.ExpiresAt) + redisHoldGrace

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, holdKey(hold.ID), payload, ttl)
	pipe.SAdd(ctx, providerDateKey(hold.ProviderID, hold.Date), hold.ID)
	pipe.Expire(ctx, providerDateKey(hold.ProviderID, hold.Date), 48*time.Hour)
	pipe.SAdd(ctx, redisActiveSetKey, hold.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: failed to store hold: %v", ErrInternal, err)
	}
	return nil
}

// GetByID возвращает холд по идентификатору
func (s *RedisStore) GetByID(ctx context.Context, id string) (*domain.SlotHold, error) {
	payload, err := s.client.Get(ctx, holdKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrHoldNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get hold: %v", ErrInternal, err)
	}

	var hold domain.SlotHold
	if err := json.Unmarshal(payload, &hold); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal hold: %v", ErrInternal, err)
	}
	return &hold, nil
}

// ListByProviderDate возвращает активные холды провайдера на дату
func (s *RedisStore) ListByProviderDate(ctx context.Context, providerID int64, date time.Time) ([]*domain.SlotHold, error) {
	setKey := providerDateKey(providerID, date)

	ids, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list provider holds: %v", ErrInternal, err)
	}

	result := make([]*domain.SlotHold, 0, len(ids))
	for _, id := range ids {
		hold, err := s.GetByID(ctx, id)
		if errors.Is(err, ErrHoldNotFound) {
			// Ключ холда истек по TTL - чистим индекс
			s.client.SRem(ctx, setKey, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		if hold.State == domain.HoldStateActive {
			result = append(result, hold)
		}
	}
	return result, nil
}

// ListActive возвращает все активные холды
func (s *RedisStore) ListActive(ctx context.Context) ([]*domain.SlotHold, error) {
	ids, err := s.client.SMembers(ctx, redisActiveSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list active holds: %v", ErrInternal, err)
	}

	result := make([]*domain.SlotHold, 0, len(ids))
	for _, id := range ids {
		hold, err := s.GetByID(ctx, id)
		if errors.Is(err, ErrHoldNotFound) {
			s.client.SRem(ctx, redisActiveSetKey, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		if hold.State == domain.HoldStateActive {
			result = append(result, hold)
		} else {
			s.client.SRem(ctx, redisActiveSetKey, id)
		}
	}
	return result, nil
}

// UpdateState переводит холд из from в to через WATCH (optimistic CAS)
func (s *RedisStore) UpdateState(ctx context.Context, id string, from, to domain.HoldState) error {
	key := holdKey(id)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		payload, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrHoldNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: failed to get hold: %v", ErrInternal, err)
		}

		var hold domain.SlotHold
		if err := json.Unmarshal(payload, &hold); err != nil {
			return fmt.Errorf("%w: failed to unmarshal hold: %v", ErrInternal, err)
		}
		if hold.State != from {
			return ErrHoldNotActive
		}

		hold.State = to
		updated, err := json.Marshal(&hold)
		if err != nil {
			return fmt.Errorf("%w: failed to marshal hold: %v", ErrInternal, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, redis.KeepTTL)
			if to == domain.HoldStateActive {
				// Возврат в active (Reinstate) должен вернуть холд в индекс sweeper'а
				pipe.SAdd(ctx, redisActiveSetKey, id)
			} else {
				pipe.SRem(ctx, redisActiveSetKey, id)
			}
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		// Состояние изменили параллельно - для вызывающего это CAS-конфликт
		return ErrHoldNotActive
	}
	return err
}
