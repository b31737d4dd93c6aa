package syncstore

import "time"

// referenceRow is the GORM model backing the synchronization_references
// table: one row per (discontinuity sequence, start time) pair recorded by
// AddReference.
type referenceRow struct {
	ID                     uint      `gorm:"primaryKey;column:id"`
	DiscontinuitySequence  uint64    `gorm:"column:discontinuity_sequence;not null;index"`
	StartTime              time.Time `gorm:"column:start_time;not null"`
	DurationNs             int64     `gorm:"column:duration_ns;not null"`
	UpdatedAt              time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (referenceRow) TableName() string { return "synchronization_references" }
