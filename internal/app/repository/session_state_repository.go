package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dvfens/ags/internal/app/model"
	"github.com/dvfens/ags/pkg/logger"
)

// SessionStateRepository persists per-session JSON blobs (cart, address flow)
// when no Redis is configured.
type SessionStateRepository interface {
	Find(namespace, key string) (*model.SessionState, error)
	Upsert(state *model.SessionState) error
	Delete(namespace, key string) (bool, error)
	DeleteExpired(now time.Time) (int64, error)
}

type sessionStateRepository struct {
	db *gorm.DB
}

func NewSessionStateRepository(db *gorm.DB) SessionStateRepository {
	return &sessionStateRepository{db: db}
}

// Find treats an expired row as missing.
func (r *sessionStateRepository) Find(namespace, key string) (*model.SessionState, error) {
	var state model.SessionState
	err := r.db.Where("namespace = ? AND session_key = ?", namespace, key).First(&state).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find session state", err, map[string]interface{}{
				"namespace": namespace,
			})
		}
		return nil, err
	}
	if !state.ExpiresAt.IsZero() && state.ExpiresAt.Before(time.Now()) {
		return nil, gorm.ErrRecordNotFound
	}
	return &state, nil
}

func (r *sessionStateRepository) Upsert(state *model.SessionState) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "session_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at", "updated_at"}),
	}).Create(state).Error
	if err != nil {
		logger.Error("Failed to upsert session state", err, map[string]interface{}{
			"namespace": state.Namespace,
		})
		return err
	}
	return nil
}

func (r *sessionStateRepository) Delete(namespace, key string) (bool, error) {
	result := r.db.Where("namespace = ? AND session_key = ?", namespace, key).Delete(&model.SessionState{})
	if result.Error != nil {
		logger.Error("Failed to delete session state", result.Error, map[string]interface{}{
			"namespace": namespace,
		})
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *sessionStateRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", now).Delete(&model.SessionState{})
	if result.Error != nil {
		logger.Error("Failed to purge expired session states", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
