package domain

// Outcome — результат одного цикла claim-and-process для окна.
//
// Жизненный цикл цикла:
//
//	find → (none)     → NO_CANDIDATE
//	     → claim=false → CLAIM_CONFLICT
//	     → claim=true  → process → PROCESSED
//	                             ↘ PROCESSING_FAILURE
//	ошибка БД на любом шаге      → STORE_FAILURE
type Outcome string

const (
	// OutcomeProcessed — рейс захвачен и обработан.
	OutcomeProcessed Outcome = "processed"

	// OutcomeNoCandidate — в окне нет незахваченных рейсов. Не ошибка.
	OutcomeNoCandidate Outcome = "no_candidate"

	// OutcomeClaimConflict — рейс захватил другой инстанс. Не ошибка.
	OutcomeClaimConflict Outcome = "claim_conflict"

	// OutcomeStoreFailure — ошибка хранилища (соединение, таймаут).
	OutcomeStoreFailure Outcome = "store_failure"

	// OutcomeProcessingFailure — обработка упала после успешного захвата.
	// Рейс остаётся claimed.
	OutcomeProcessingFailure Outcome = "processing_failure"
)

// IsFailure возвращает true для исходов, которые нужно логировать как ошибку.
func (o Outcome) IsFailure() bool {
	switch o {
	case OutcomeStoreFailure, OutcomeProcessingFailure:
		return true
	default:
		return false
	}
}

// Outcomes возвращает все исходы (для инициализации метрик).
func Outcomes() []Outcome {
	return []Outcome{
		OutcomeProcessed,
		OutcomeNoCandidate,
		OutcomeClaimConflict,
		OutcomeStoreFailure,
		OutcomeProcessingFailure,
	}
}

// CycleResult — результат цикла для одного окна.
type CycleResult struct {
	Window   Window
	Outcome  Outcome
	FlightID int64 // 0, если кандидат не найден
	Err      error // только для *_FAILURE
}
