package pet

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("pet not found")

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, p *Pet) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Pet, error) {
	var p Pet
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Pet, error) {
	var out []Pet
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Pet{}, "id = ?", id).Error
}
