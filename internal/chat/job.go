package chat

import "time"

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Job is one queued reply generation, consumed by cmd/worker.
type Job struct {
	ID string `gorm:"primaryKey;size:26"` // ULID length

	UserID string `gorm:"type:varchar(64);index;not null"`
	PetID  string `gorm:"type:varchar(8);index;not null"`

	Prompt string `gorm:"type:text;not null"`

	Status JobStatus `gorm:"type:varchar(16);index;not null"`

	// Filled when succeeded
	ResultMessageID *uint64 `gorm:"index"`

	// Filled when failed
	Error *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Job) TableName() string { return "chat_jobs" }
