package model

import "time"

// UnitLockID is the _id of the single lock document guarding the one unit.
const UnitLockID = "unit"

// UnitLock is written at the start of every booking transaction. Two
// transactions touching it cannot both commit, which serializes creates.
type UnitLock struct {
	ID        string    `bson:"_id" json:"id"`
	Sequence  int64     `bson:"sequence" json:"sequence"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
