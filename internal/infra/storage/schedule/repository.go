package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Repository репозиторий расписаний провайдеров.
// Расписание хранится в трех плоских таблицах: недельная сетка,
// праздники и точечные исключения. Перерывы сериализуются в JSONB.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetProviderSchedule загружает полное расписание провайдера.
// Провайдер без единой строки расписания получает пустое расписание
// (все дни закрыты), а не ошибку: календарь сам трактует отсутствие
// недельной записи как закрытый день.
func (r *Repository) GetProviderSchedule(ctx context.Context, providerID int64) (*domain.ProviderSchedule, error) {
	schedule := &domain.ProviderSchedule{ProviderID: providerID}

	weekly, err := r.getWeekly(ctx, providerID)
	if err != nil {
		return nil, err
	}
	schedule.Weekly = weekly

	holidays, err := r.getHolidays(ctx, providerID)
	if err != nil {
		return nil, err
	}
	schedule.Holidays = holidays

	exceptions, err := r.getExceptions(ctx, providerID)
	if err != nil {
		return nil, err
	}
	schedule.Exceptions = exceptions

	return schedule, nil
}

// ReplaceSchedule полностью заменяет расписание провайдера.
// PUT-семантика: старые строки удаляются и записываются новые.
// Вызывается внутри транзакции, чтобы читатели не видели полупустое расписание.
func (r *Repository) ReplaceSchedule(ctx context.Context, schedule *domain.ProviderSchedule) error {
	if err := r.deleteAll(ctx, schedule.ProviderID); err != nil {
		return err
	}

	for _, day := range schedule.Weekly {
		if err := r.insertWeeklyDay(ctx, schedule.ProviderID, day); err != nil {
			return err
		}
	}
	for _, holiday := range schedule.Holidays {
		if err := r.insertHoliday(ctx, schedule.ProviderID, holiday); err != nil {
			return err
		}
	}
	for _, exception := range schedule.Exceptions {
		if err := r.insertException(ctx, schedule.ProviderID, exception); err != nil {
			return err
		}
	}

	return nil
}

// getWeekly загружает недельную сетку
func (r *Repository) getWeekly(ctx context.Context, providerID int64) ([]domain.DaySchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"weekday",
		"is_open",
		"open_time",
		"close_time",
		"breaks",
	).
		From("provider_weekly_schedule").
		Where(squirrel.Eq{"provider_id": providerID}).
		OrderBy("weekday ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getWeekly - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getWeekly - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	days := make([]domain.DaySchedule, 0, 7)
	for rows.Next() {
		var day domain.DaySchedule
		var weekday int
		var breaksRaw []byte

		if err := rows.Scan(&weekday, &day.IsOpen, &day.OpenTime, &day.CloseTime, &breaksRaw); err != nil {
			return nil, fmt.Errorf("%w: getWeekly - scan row: %v", ErrScanRow, err)
		}

		day.Weekday = time.Weekday(weekday)
		day.Breaks, err = unmarshalBreaks(breaksRaw)
		if err != nil {
			return nil, fmt.Errorf("%w: getWeekly - decode breaks: %v", ErrScanRow, err)
		}

		days = append(days, day)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getWeekly - rows error: %v", ErrScanRow, err)
	}

	return days, nil
}

// getHolidays загружает праздники провайдера
func (r *Repository) getHolidays(ctx context.Context, providerID int64) ([]domain.Holiday, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"provider_id",
		"holiday_date",
		"recurrence",
		"reason",
	).
		From("provider_holidays").
		Where(squirrel.Eq{"provider_id": providerID}).
		OrderBy("holiday_date ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getHolidays - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getHolidays - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	holidays := make([]domain.Holiday, 0)
	for rows.Next() {
		var holiday domain.Holiday

		if err := rows.Scan(&holiday.ID, &holiday.ProviderID, &holiday.Date, &holiday.Recurrence, &holiday.Reason); err != nil {
			return nil, fmt.Errorf("%w: getHolidays - scan row: %v", ErrScanRow, err)
		}

		holidays = append(holidays, holiday)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getHolidays - rows error: %v", ErrScanRow, err)
	}

	return holidays, nil
}

// getExceptions загружает точечные исключения провайдера
func (r *Repository) getExceptions(ctx context.Context, providerID int64) ([]domain.ScheduleException, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"provider_id",
		"exception_date",
		"open_time",
		"close_time",
		"breaks",
		"reason",
	).
		From("provider_schedule_exceptions").
		Where(squirrel.Eq{"provider_id": providerID}).
		OrderBy("exception_date ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getExceptions - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getExceptions - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	exceptions := make([]domain.ScheduleException, 0)
	for rows.Next() {
		var exception domain.ScheduleException
		var breaksRaw []byte

		err := rows.Scan(
			&exception.ID,
			&exception.ProviderID,
			&exception.Date,
			&exception.OpenTime,
			&exception.CloseTime,
			&breaksRaw,
			&exception.Reason,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: getExceptions - scan row: %v", ErrScanRow, err)
		}

		exception.Breaks, err = unmarshalBreaks(breaksRaw)
		if err != nil {
			return nil, fmt.Errorf("%w: getExceptions - decode breaks: %v", ErrScanRow, err)
		}

		exceptions = append(exceptions, exception)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getExceptions - rows error: %v", ErrScanRow, err)
	}

	return exceptions, nil
}

// deleteAll удаляет все строки расписания провайдера
func (r *Repository) deleteAll(ctx context.Context, providerID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	for _, table := range []string{"provider_weekly_schedule", "provider_holidays", "provider_schedule_exceptions"} {
		query, args, err := psqlbuilder.Delete(table).
			Where(squirrel.Eq{"provider_id": providerID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: deleteAll - build delete query: %v", ErrBuildQuery, err)
		}
		if _, err := executor.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: deleteAll - execute delete from %s: %v", ErrExecQuery, table, err)
		}
	}

	return nil
}

// insertWeeklyDay записывает день недельной сетки
func (r *Repository) insertWeeklyDay(ctx context.Context, providerID int64, day domain.DaySchedule) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	breaksRaw, err := marshalBreaks(day.Breaks)
	if err != nil {
		return fmt.Errorf("%w: insertWeeklyDay - encode breaks: %v", ErrExecQuery, err)
	}

	query, args, err := psqlbuilder.Insert("provider_weekly_schedule").
		Columns("provider_id", "weekday", "is_open", "open_time", "close_time", "breaks").
		Values(providerID, int(day.Weekday), day.IsOpen, day.OpenTime, day.CloseTime, breaksRaw).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertWeeklyDay - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insertWeeklyDay - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// insertHoliday записывает праздник
func (r *Repository) insertHoliday(ctx context.Context, providerID int64, holiday domain.Holiday) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("provider_holidays").
		Columns("provider_id", "holiday_date", "recurrence", "reason").
		Values(providerID, holiday.Date, holiday.Recurrence, holiday.Reason).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertHoliday - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insertHoliday - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// insertException записывает точечное исключение
func (r *Repository) insertException(ctx context.Context, providerID int64, exception domain.ScheduleException) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	breaksRaw, err := marshalBreaks(exception.Breaks)
	if err != nil {
		return fmt.Errorf("%w: insertException - encode breaks: %v", ErrExecQuery, err)
	}

	query, args, err := psqlbuilder.Insert("provider_schedule_exceptions").
		Columns("provider_id", "exception_date", "open_time", "close_time", "breaks", "reason").
		Values(providerID, exception.Date, exception.OpenTime, exception.CloseTime, breaksRaw, exception.Reason).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertException - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insertException - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// breakRecord JSONB-представление перерыва
type breakRecord struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label,omitempty"`
}

func marshalBreaks(breaks []domain.BreakPeriod) ([]byte, error) {
	records := make([]breakRecord, 0, len(breaks))
	for _, b := range breaks {
		records = append(records, breakRecord{
			Start: b.Start.String(),
			End:   b.End.String(),
			Label: b.Label,
		})
	}
	return json.Marshal(records)
}

func unmarshalBreaks(raw []byte) ([]domain.BreakPeriod, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var records []breakRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}

	breaks := make([]domain.BreakPeriod, 0, len(records))
	for _, rec := range records {
		breaks = append(breaks, domain.BreakPeriod{
			Start: types.TimeString(rec.Start),
			End:   types.TimeString(rec.End),
			Label: rec.Label,
		})
	}
	return breaks, nil
}
