package providerservice

// Provider компания-провайдер услуг (каталог ведет платформа, не движок)
type Provider struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Timezone           string  `json:"timezone"`
	GranularityMinutes int     `json:"granularityMinutes"` // шаг сетки слотов
	Staff              []Staff `json:"staff"`
	ManagerIDs         []int64 `json:"managerIds"`
}

// Staff сотрудник провайдера
type Staff struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// HasStaff проверяет, что сотрудник существует и активен
func (p *Provider) HasStaff(staffID int64) bool {
	for _, s := range p.Staff {
		if s.ID == staffID && s.Active {
			return true
		}
	}
	return false
}

// ActiveStaffIDs возвращает ID активных сотрудников
func (p *Provider) ActiveStaffIDs() []int64 {
	ids := make([]int64, 0, len(p.Staff))
	for _, s := range p.Staff {
		if s.Active {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// IsManager проверяет, что пользователь - менеджер провайдера
func (p *Provider) IsManager(userID int64) bool {
	for _, id := range p.ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Service услуга провайдера с политикой бронирования
type Service struct {
	ID              int64          `json:"id"`
	ProviderID      int64          `json:"providerId"`
	Name            string         `json:"name"`
	DurationMinutes int            `json:"durationMinutes"`
	Price           *float64       `json:"price,omitempty"`
	Policy          *BookingPolicy `json:"bookingPolicy,omitempty"`
}

// BookingPolicy политика бронирования услуги в ответе каталога.
// Снимается на бронирование целиком в момент создания.
type BookingPolicy struct {
	MinAdvanceBookingHours    int     `json:"minAdvanceBookingHours"`
	MaxAdvanceBookingDays     int     `json:"maxAdvanceBookingDays"`
	CancellationWindowHours   int     `json:"cancellationWindowHours"`
	CancellationFeePercentage float64 `json:"cancellationFeePercentage"`
	AllowRescheduling         bool    `json:"allowRescheduling"`
	RescheduleWindowHours     int     `json:"rescheduleWindowHours"`
	DepositRequired           bool    `json:"depositRequired"`
	DepositPercentage         float64 `json:"depositPercentage"`
}
