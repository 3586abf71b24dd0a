package chat

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) InsertMessage(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// ListRecentDesc returns the most recent messages in DESC id order
// (newest -> oldest).
func (r *Repo) ListRecentDesc(ctx context.Context, petID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 20
	}
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("pet_id = ?", petID).
		Order("id DESC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// ListRecent returns the newest `limit` messages in append order
// (oldest -> newest).
func (r *Repo) ListRecent(ctx context.Context, petID string, limit int) ([]Message, error) {
	desc, err := r.ListRecentDesc(ctx, petID, limit)
	if err != nil {
		return nil, err
	}
	asc := make([]Message, 0, len(desc))
	for i := len(desc) - 1; i >= 0; i-- {
		asc = append(asc, desc[i])
	}
	return asc, nil
}

func (r *Repo) DeleteByPet(ctx context.Context, petID string) error {
	return r.db.WithContext(ctx).Delete(&Message{}, "pet_id = ?", petID).Error
}

// TrimToNewest drops everything older than the newest `keep` messages.
// Done with an explicit cutoff id because MySQL rejects LIMIT in subqueries.
func (r *Repo) TrimToNewest(ctx context.Context, petID string, keep int) error {
	if keep <= 0 {
		return nil
	}
	var ids []uint64
	if err := r.db.WithContext(ctx).
		Model(&Message{}).
		Where("pet_id = ?", petID).
		Order("id DESC").
		Limit(keep).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) < keep {
		return nil
	}
	cutoff := ids[len(ids)-1]
	return r.db.WithContext(ctx).
		Delete(&Message{}, "pet_id = ? AND id < ?", petID, cutoff).Error
}

// Job CRUD

func (r *Repo) CreateJob(ctx context.Context, job *Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *Repo) GetJobByID(ctx context.Context, id string) (*Job, error) {
	var j Job
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *Repo) UpdateJobStatusRunning(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ? AND status = ?", id, JobQueued).
		Update("status", JobRunning).Error
}

func (r *Repo) MarkJobSucceeded(ctx context.Context, id string, replyMsgID uint64) error {
	return r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":            JobSucceeded,
			"result_message_id": replyMsgID,
			"error":             nil,
		}).Error
}

func (r *Repo) MarkJobFailed(ctx context.Context, id string, errMsg string) error {
	return r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":            JobFailed,
			"error":             errMsg,
			"result_message_id": nil,
		}).Error
}
