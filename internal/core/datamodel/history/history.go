package history

import "time"

// Record is one immutable audit row. Rows are insert-only; the actor name is
// denormalized at write time so the trail survives user renames or deletion.
type Record struct {
	ID                int64     `gorm:"primaryKey"`
	RequestID         int64     `gorm:"column:request_id;not null;index"`
	PreviousStatus    *string   `gorm:"column:previous_status"`
	NewStatus         string    `gorm:"column:new_status;not null"`
	ActorID           int64     `gorm:"column:actor_id;not null"`
	ActorName         string    `gorm:"column:actor_name;not null"`
	Comment           *string   `gorm:"column:comment"`
	RejectionReason   *string   `gorm:"column:rejection_reason"`
	DaysToDueDate     *int      `gorm:"column:days_to_due_date"`
	SecondsInPrevious int64     `gorm:"column:seconds_in_previous"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime;index"`
}

func (Record) TableName() string {
	return "request_history"
}
