package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

func ts(s string) types.TimeString {
	return types.TimeString(s)
}

func tsp(s string) *types.TimeString {
	v := types.TimeString(s)
	return &v
}

// 2026-03-16 - понедельник
var monday = time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

func weeklyOpenMonday() domain.ProviderSchedule {
	return domain.ProviderSchedule{
		ProviderID: 1,
		Weekly: []domain.DaySchedule{
			{
				Weekday:   time.Monday,
				IsOpen:    true,
				OpenTime:  tsp("09:00"),
				CloseTime: tsp("18:00"),
				Breaks: []domain.BreakPeriod{
					{Start: ts("13:00"), End: ts("14:00"), Label: "lunch"},
				},
			},
		},
	}
}

func TestService_Resolve_WeeklyOnly(t *testing.T) {
	svc := NewService()

	day := svc.Resolve(weeklyOpenMonday(), monday)

	assert.True(t, day.IsOpen)
	require.NotNil(t, day.OpenTime)
	require.NotNil(t, day.CloseTime)
	assert.Equal(t, "09:00", day.OpenTime.String())
	assert.Equal(t, "18:00", day.CloseTime.String())
	require.Len(t, day.Breaks, 1)
	assert.Equal(t, "lunch", day.Breaks[0].Label)
	assert.Equal(t, monday, day.Date)
}

func TestService_Resolve_NoWeeklyEntryMeansClosed(t *testing.T) {
	svc := NewService()

	// Недельная сетка задана только на понедельник - вторник закрыт
	tuesday := monday.AddDate(0, 0, 1)
	day := svc.Resolve(weeklyOpenMonday(), tuesday)

	assert.False(t, day.IsOpen)
	assert.Nil(t, day.OpenTime)
	assert.Empty(t, day.ClosureReason)
}

func TestService_Resolve_HolidayClosesOpenDay(t *testing.T) {
	svc := NewService()

	schedule := weeklyOpenMonday()
	schedule.Holidays = []domain.Holiday{
		{Date: monday, Recurrence: domain.RecurrenceNone, Reason: "Maintenance Day"},
	}

	day := svc.Resolve(schedule, monday)

	assert.False(t, day.IsOpen)
	assert.Equal(t, "Holiday: Maintenance Day", day.ClosureReason)
	// Праздник не несет часов работы
	assert.Nil(t, day.OpenTime)
	assert.Nil(t, day.CloseTime)
	assert.Empty(t, day.Breaks)
}

func TestService_Resolve_YearlyHolidayMatchesAnyYear(t *testing.T) {
	svc := NewService()

	schedule := weeklyOpenMonday()
	schedule.Holidays = []domain.Holiday{
		{Date: time.Date(2020, 3, 16, 0, 0, 0, 0, time.UTC), Recurrence: domain.RecurrenceYearly, Reason: "Founding Day"},
	}

	day := svc.Resolve(schedule, monday)

	assert.False(t, day.IsOpen)
	assert.Equal(t, "Holiday: Founding Day", day.ClosureReason)
}

func TestService_Resolve_ExceptionOverridesHoliday(t *testing.T) {
	svc := NewService()

	schedule := weeklyOpenMonday()
	schedule.Holidays = []domain.Holiday{
		{Date: monday, Recurrence: domain.RecurrenceNone, Reason: "Holiday"},
	}
	schedule.Exceptions = []domain.ScheduleException{
		{
			Date:      monday,
			OpenTime:  tsp("12:00"),
			CloseTime: tsp("16:00"),
			Reason:    "special opening",
		},
	}

	day := svc.Resolve(schedule, monday)

	// Исключение перекрывает и праздник, и недельную сетку целиком
	assert.True(t, day.IsOpen)
	require.NotNil(t, day.OpenTime)
	assert.Equal(t, "12:00", day.OpenTime.String())
	assert.Equal(t, "16:00", day.CloseTime.String())
	// Перерывы недельной сетки не наследуются
	assert.Empty(t, day.Breaks)
	assert.NotNil(t, day.Breaks)
}

func TestService_Resolve_ClosureException(t *testing.T) {
	svc := NewService()

	schedule := weeklyOpenMonday()
	schedule.Exceptions = []domain.ScheduleException{
		{Date: monday, Reason: "renovation"},
	}

	day := svc.Resolve(schedule, monday)

	assert.False(t, day.IsOpen)
	assert.Equal(t, "renovation", day.ClosureReason)
}

func TestValidateDaySchedule(t *testing.T) {
	tests := []struct {
		name    string
		day     domain.DaySchedule
		wantErr bool
	}{
		{
			name: "closed day needs nothing",
			day:  domain.DaySchedule{Weekday: time.Sunday, IsOpen: false},
		},
		{
			name: "valid open day",
			day: domain.DaySchedule{
				Weekday: time.Monday, IsOpen: true,
				OpenTime: tsp("09:00"), CloseTime: tsp("18:00"),
			},
		},
		{
			name: "open day without times",
			day: domain.DaySchedule{
				Weekday: time.Monday, IsOpen: true,
			},
			wantErr: true,
		},
		{
			name: "open after close",
			day: domain.DaySchedule{
				Weekday: time.Monday, IsOpen: true,
				OpenTime: tsp("18:00"), CloseTime: tsp("09:00"),
			},
			wantErr: true,
		},
		{
			name: "break outside working hours",
			day: domain.DaySchedule{
				Weekday: time.Monday, IsOpen: true,
				OpenTime: tsp("09:00"), CloseTime: tsp("18:00"),
				Breaks: []domain.BreakPeriod{
					{Start: ts("08:00"), End: ts("09:30"), Label: "early"},
				},
			},
			wantErr: true,
		},
		{
			name: "overlapping breaks",
			day: domain.DaySchedule{
				Weekday: time.Monday, IsOpen: true,
				OpenTime: tsp("09:00"), CloseTime: tsp("18:00"),
				Breaks: []domain.BreakPeriod{
					{Start: ts("12:00"), End: ts("13:00")},
					{Start: ts("12:30"), End: ts("14:00")},
				},
			},
			wantErr: true,
		},
		{
			name: "back to back breaks are fine",
			day: domain.DaySchedule{
				Weekday: time.Monday, IsOpen: true,
				OpenTime: tsp("09:00"), CloseTime: tsp("18:00"),
				Breaks: []domain.BreakPeriod{
					{Start: ts("12:00"), End: ts("13:00")},
					{Start: ts("13:00"), End: ts("13:30")},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDaySchedule(tt.day)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrScheduleInconsistency)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateException(t *testing.T) {
	tests := []struct {
		name    string
		exc     domain.ScheduleException
		wantErr bool
	}{
		{
			name: "full closure",
			exc:  domain.ScheduleException{Date: monday, Reason: "closed"},
		},
		{
			name: "valid opening",
			exc: domain.ScheduleException{
				Date: monday, OpenTime: tsp("10:00"), CloseTime: tsp("15:00"),
			},
		},
		{
			name: "only one time set",
			exc: domain.ScheduleException{
				Date: monday, OpenTime: tsp("10:00"),
			},
			wantErr: true,
		},
		{
			name: "closure with breaks",
			exc: domain.ScheduleException{
				Date: monday,
				Breaks: []domain.BreakPeriod{
					{Start: ts("12:00"), End: ts("13:00")},
				},
			},
			wantErr: true,
		},
		{
			name: "open after close",
			exc: domain.ScheduleException{
				Date: monday, OpenTime: tsp("15:00"), CloseTime: tsp("10:00"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateException(tt.exc)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrScheduleInconsistency)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateHoliday(t *testing.T) {
	valid := domain.Holiday{Date: monday, Recurrence: domain.RecurrenceYearly, Reason: "x"}
	assert.NoError(t, ValidateHoliday(valid))

	unknown := domain.Holiday{Date: monday, Recurrence: "weekly"}
	assert.ErrorIs(t, ValidateHoliday(unknown), ErrScheduleInconsistency)

	noDate := domain.Holiday{Recurrence: domain.RecurrenceNone}
	assert.ErrorIs(t, ValidateHoliday(noDate), ErrScheduleInconsistency)
}
