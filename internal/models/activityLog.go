package models

import "time"

type ActivityLog struct {
	ID          int64     `db:"id" json:"id"`
	ActorRole   string    `db:"actor_role" json:"actor_role"`
	ActorID     int64     `db:"actor_id" json:"actor_id"`
	Entity      string    `db:"entity" json:"entity"`
	EntityID    int64     `db:"entity_id" json:"entity_id"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
