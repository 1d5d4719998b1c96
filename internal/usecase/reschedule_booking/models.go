package reschedule_booking

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/service/lifecycle/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Request модель запроса на перенос бронирования
type Request struct {
	UserID       int64            // ID пользователя (клиент или менеджер провайдера)
	BookingID    int64            // ID переносимого бронирования
	NewDate      time.Time        // Новая дата
	NewStartTime types.TimeString // Новое время начала
	NewStaffID   *int64           // Новый сотрудник (nil = сохранить текущего)
}

// Response модель ответа с новым бронированием
type Response = models.BookingResponse
