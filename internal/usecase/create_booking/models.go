package create_booking

import "github.com/m04kA/SMC-SchedulingService/internal/service/lifecycle/models"

// Request модель запроса на создание бронирования из холда
type Request struct {
	UserID    int64  // ID клиента (из заголовка аутентификации)
	HoldID    string // Идентификатор захваченного холда
	ServiceID int64  // ID услуги
}

// Response модель ответа с созданным бронированием
type Response = models.BookingResponse
