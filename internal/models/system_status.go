package models

import "time"

// SystemStatus is the global pause flag. While Paused is true every
// state-mutating operation is rejected; read-only queries still pass.
type SystemStatus struct {
	Paused    bool      `bson:"paused" json:"paused"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
