package acquire_hold

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/holds"
)

// HoldArbiter сервис захвата холдов на слоты
type HoldArbiter interface {
	TryAcquire(ctx context.Context, req *holds.AcquireRequest) (*domain.SlotHold, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
