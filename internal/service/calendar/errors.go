package calendar

import "errors"

var (
	// ErrScheduleInconsistency возвращается при нарушении инвариантов расписания
	// на этапе записи: пересекающиеся перерывы, open >= close, исключение
	// с одним из двух времен. Read path (Resolve) эту ошибку не порождает.
	ErrScheduleInconsistency = errors.New("calendar: schedule inconsistency")
)
