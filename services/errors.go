package services

import (
	"errors"
	"fmt"
)

// Общие ошибки сервисов, которые маппятся в HTTP-статусы в handlers.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	ErrMatchNotFound = errors.New("match not found")
	ErrStageNotFound = errors.New("stage not found")
	ErrUserNotFound  = errors.New("user not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed = errors.New("validation failed")
	ErrDeadlineClosed   = errors.New("prediction deadline has passed for this stage")
	ErrMatchCompleted   = errors.New("match is already completed")

	// Нарушение порядка операций (например, пересчёт незавершённого матча)
	ErrInvalidState = errors.New("operation is not valid in the current state")

	ErrExportUnavailable = errors.New("leaderboard export storage is not configured")
)

// DeadlineClosedError rejects a submission batch and names the stage whose
// gate was closed. errors.Is(err, ErrDeadlineClosed) holds for it.
type DeadlineClosedError struct {
	Stage string
}

func (e *DeadlineClosedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDeadlineClosed.Error(), e.Stage)
}

func (e *DeadlineClosedError) Is(target error) bool {
	return target == ErrDeadlineClosed
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}
