package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	ProviderID int64     // ID провайдера
	ServiceID  int64     // ID услуги
	StaffID    *int64    // ID сотрудника (nil = хотя бы один свободный)
	Date       time.Time // Дата для получения слотов (без времени)
}

// Response модель ответа со списком слотов
type Response struct {
	Date       time.Time // Дата, на которую запрашивались слоты
	ProviderID int64     // ID провайдера
	ServiceID  int64     // ID услуги
	StaffID    *int64    // ID сотрудника из запроса
	Slots      []Slot    // Упорядоченная сетка слотов
}

// Slot модель временного слота
type Slot struct {
	StartTime       types.TimeString // Время начала слота (например, "10:00")
	DurationMinutes int              // Длительность слота в минутах
	IsAvailable     bool             // Свободен ли слот
}
