package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

func tsp(s string) *types.TimeString {
	v := types.TimeString(s)
	return &v
}

var testDate = time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

// farPast - момент достаточно ранний, чтобы MinAdvanceBookingHours ничего не отсекал
var farPast = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func openDay(open, close string, breaks ...domain.BreakPeriod) domain.EffectiveDay {
	return domain.EffectiveDay{
		Date:      testDate,
		IsOpen:    true,
		OpenTime:  tsp(open),
		CloseTime: tsp(close),
		Breaks:    breaks,
	}
}

func asStrings(slots []types.TimeString) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.String())
	}
	return out
}

func TestGenerator_Generate_BasicGrid(t *testing.T) {
	gen := NewGenerator()

	slots, err := gen.Generate(openDay("09:00", "12:00"), 60, 60, farPast, domain.BookingPolicy{})
	require.NoError(t, err)

	// Последний кандидат 11:00: 11:00+60 = 12:00 <= close, 12:00+60 уже нет
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, asStrings(slots))
}

func TestGenerator_Generate_GranularityFinerThanDuration(t *testing.T) {
	gen := NewGenerator()

	slots, err := gen.Generate(openDay("09:00", "11:00"), 90, 30, farPast, domain.BookingPolicy{})
	require.NoError(t, err)

	// Кандидаты с шагом 30 минут, услуга 90 минут должна уложиться до закрытия
	assert.Equal(t, []string{"09:00", "09:30"}, asStrings(slots))
}

func TestGenerator_Generate_BreaksDropWholeCandidates(t *testing.T) {
	gen := NewGenerator()

	lunch := domain.BreakPeriod{Start: "13:00", End: "14:00", Label: "lunch"}
	slots, err := gen.Generate(openDay("12:00", "16:00", lunch), 60, 30, farPast, domain.BookingPolicy{})
	require.NoError(t, err)

	// 12:00 заканчивается ровно в 13:00 - полуоткрытые интервалы не пересекаются.
	// 12:30, 13:00, 13:30 задевают перерыв и отбрасываются целиком.
	// 14:00 начинается ровно на конце перерыва.
	assert.Equal(t, []string{"12:00", "14:00", "14:30", "15:00"}, asStrings(slots))
}

func TestGenerator_Generate_MinAdvanceCutsEarlySlots(t *testing.T) {
	gen := NewGenerator()

	// now = 08:00 того же дня, минимальное опережение 2 часа: слоты раньше 10:00 отпадают
	now := time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC)
	policy := domain.BookingPolicy{MinAdvanceBookingHours: 2}

	slots, err := gen.Generate(openDay("09:00", "13:00"), 60, 60, now, policy)
	require.NoError(t, err)

	assert.Equal(t, []string{"10:00", "11:00", "12:00"}, asStrings(slots))
}

func TestGenerator_Generate_MaxAdvanceExcludesFarDates(t *testing.T) {
	gen := NewGenerator()

	// Дата на 10 дней дальше, чем разрешает политика
	now := testDate.AddDate(0, 0, -40)
	policy := domain.BookingPolicy{MaxAdvanceBookingDays: 30}

	slots, err := gen.Generate(openDay("09:00", "18:00"), 60, 60, now, policy)
	require.NoError(t, err)
	assert.Empty(t, slots)

	// Ровно на границе окна дата еще доступна
	slots, err = gen.Generate(openDay("09:00", "18:00"), 60, 60, testDate.AddDate(0, 0, -30), policy)
	require.NoError(t, err)
	assert.NotEmpty(t, slots)
}

func TestGenerator_Generate_ClosedDay(t *testing.T) {
	gen := NewGenerator()

	closed := domain.EffectiveDay{Date: testDate, IsOpen: false, ClosureReason: "Holiday: New Year"}
	slots, err := gen.Generate(closed, 60, 60, farPast, domain.BookingPolicy{})
	require.NoError(t, err)

	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestGenerator_Generate_InvalidInput(t *testing.T) {
	gen := NewGenerator()

	_, err := gen.Generate(openDay("09:00", "18:00"), 0, 30, farPast, domain.BookingPolicy{})
	assert.Error(t, err)

	_, err = gen.Generate(openDay("09:00", "18:00"), 60, -15, farPast, domain.BookingPolicy{})
	assert.Error(t, err)
}

func TestGenerator_Generate_FullWorkingDay(t *testing.T) {
	gen := NewGenerator()

	// Услуга 60 минут с шагом 30: последний кандидат 16:00, 16:30 уже не влезает
	slots, err := gen.Generate(openDay("09:00", "17:00"), 60, 30, farPast, domain.BookingPolicy{})
	require.NoError(t, err)

	got := asStrings(slots)
	assert.Len(t, got, 15)
	assert.Equal(t, "09:00", got[0])
	assert.Equal(t, "16:00", got[len(got)-1])
	assert.NotContains(t, got, "16:30")
}

func TestGenerator_Generate_ServiceLongerThanDay(t *testing.T) {
	gen := NewGenerator()

	slots, err := gen.Generate(openDay("09:00", "10:00"), 120, 30, farPast, domain.BookingPolicy{})
	require.NoError(t, err)
	assert.Empty(t, slots)
}
