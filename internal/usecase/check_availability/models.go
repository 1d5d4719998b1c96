package check_availability

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Request модель запроса точечной проверки доступности
type Request struct {
	ProviderID int64            // ID провайдера
	ServiceID  int64            // ID услуги
	StaffID    *int64           // ID сотрудника (nil = хотя бы один свободный)
	Date       time.Time        // Дата (без времени)
	StartTime  types.TimeString // Проверяемое время начала
}

// Response модель ответа точечной проверки
type Response struct {
	StartTime   types.TimeString // Проверенное время начала
	IsAvailable bool             // Свободен ли слот
	Reason      string           // Причина закрытия дня, если день закрыт
}
