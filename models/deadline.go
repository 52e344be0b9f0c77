package models

import "time"

// Deadline closes a stage for prediction writes. There is one row per stage.
type Deadline struct {
	ID         int       `json:"deadline_id" db:"id"`
	Stage      string    `json:"stage" db:"stage"`
	DeadlineAt time.Time `json:"deadline_datetime" db:"deadline_at"`
	IsLocked   bool      `json:"is_locked" db:"is_locked"`
}

// DeadlineView is a deadline as exposed to clients, with the gate result at read time.
type DeadlineView struct {
	Deadline
	IsOpen bool `json:"is_open"`
}

// DeadlineUpdate is a partial update: nil fields are left unchanged.
type DeadlineUpdate struct {
	DeadlineAt *time.Time `json:"deadline_datetime,omitempty"`
	IsLocked   *bool      `json:"is_locked,omitempty"`
}

func (u DeadlineUpdate) IsEmpty() bool {
	return u.DeadlineAt == nil && u.IsLocked == nil
}
