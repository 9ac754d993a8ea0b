package actionlog

import "time"

// Entry records a destructive action that is not part of the request
// lifecycle, currently only deletions. Lifecycle transitions go to
// request_history instead.
type Entry struct {
	ID        int64     `gorm:"primaryKey"`
	Entity    string    `gorm:"column:entity;not null"`
	EntityID  int64     `gorm:"column:entity_id;not null;index"`
	Action    string    `gorm:"column:action;not null"`
	ActorID   int64     `gorm:"column:actor_id;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Entry) TableName() string {
	return "action_logs"
}
