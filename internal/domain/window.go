package domain

import (
	"fmt"
	"time"
)

// Window — окно упреждения относительно текущего времени.
//
// Окно вычисляется заново на каждом тике:
//
//	[now + Offset - Tolerance, now + Offset)
//
// Например, {Offset: 40m, Tolerance: 1m} — рейсы, вылетающие
// примерно через 40 минут.
type Window struct {
	// Name — имя окна для логов и метрик ("near", "far").
	Name string `json:"name" yaml:"name"`

	// Offset — горизонт упреждения.
	Offset time.Duration `json:"offset" yaml:"offset"`

	// Tolerance — ширина окна.
	Tolerance time.Duration `json:"tolerance" yaml:"tolerance"`
}

// Bounds возвращает границы окна для момента now.
func (w Window) Bounds(now time.Time) (start, end time.Time) {
	end = now.Add(w.Offset)
	start = end.Add(-w.Tolerance)
	return start, end
}

// Contains проверяет, попадает ли t строго внутрь окна (start, end).
// Этот же предикат реализуют хранилища в SQL.
func (w Window) Contains(t, now time.Time) bool {
	start, end := w.Bounds(now)
	return t.After(start) && t.Before(end)
}

// Validate проверяет корректность окна.
func (w Window) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("window name is required")
	}
	if w.Offset <= 0 {
		return fmt.Errorf("window %q: offset must be positive, got %s", w.Name, w.Offset)
	}
	if w.Tolerance <= 0 || w.Tolerance > w.Offset {
		return fmt.Errorf("window %q: tolerance must be in (0, %s], got %s", w.Name, w.Offset, w.Tolerance)
	}
	return nil
}

// String возвращает человекочитаемое описание окна.
func (w Window) String() string {
	return fmt.Sprintf("%s(+%s ±%s)", w.Name, w.Offset, w.Tolerance)
}

// DefaultWindows — окна по умолчанию: за 4 часа и за 40 минут до вылета.
func DefaultWindows() []Window {
	return []Window{
		{Name: "far", Offset: 4 * time.Hour, Tolerance: time.Minute},
		{Name: "near", Offset: 40 * time.Minute, Tolerance: time.Minute},
	}
}
