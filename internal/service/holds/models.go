package holds

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// AcquireRequest запрос на захват холда на слот
type AcquireRequest struct {
	ProviderID      int64
	StaffID         *int64 // nil = холд на любого сотрудника (блокирует всех)
	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
	HolderID        int64 // пользователь, начавший оформление
}
