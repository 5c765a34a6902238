package models

import "time"

// FeeAccount tracks the aggregate platform fees booked across all rooms.
// A single document; Collected only grows, Withdrawn never exceeds it.
type FeeAccount struct {
	Collected int64     `bson:"collected" json:"collected"`
	Withdrawn int64     `bson:"withdrawn" json:"withdrawn"`
	Recipient string    `bson:"recipient" json:"recipient"` // ledger account fees are withdrawn to
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Available returns the amount currently withdrawable.
func (f *FeeAccount) Available() int64 {
	return f.Collected - f.Withdrawn
}
