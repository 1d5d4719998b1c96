package availability

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// ProjectRequest запрос проекции доступности на дату
type ProjectRequest struct {
	ProviderID int64
	ServiceID  int64
	StaffID    *int64 // nil = слот доступен, если свободен хотя бы один сотрудник
	Date       time.Time
}

// CheckRequest точечный запрос доступности конкретного времени начала
type CheckRequest struct {
	ProviderID int64
	ServiceID  int64
	StaffID    *int64
	Date       time.Time
	StartTime  types.TimeString
}

// CheckResult результат точечной проверки
type CheckResult struct {
	StartTime   types.TimeString
	IsAvailable bool
	// Reason причина недоступности дня (например "Holiday: ..."), если день закрыт
	Reason string
}

// DatesRequest запрос доступности по диапазону дат
type DatesRequest struct {
	ProviderID int64
	ServiceID  int64
	StaffID    *int64
	FromDate   time.Time
	ToDate     time.Time
}
