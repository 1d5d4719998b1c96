package release_hold

import "context"

// HoldArbiter сервис управления холдами
type HoldArbiter interface {
	Release(ctx context.Context, holdID string, holderID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
