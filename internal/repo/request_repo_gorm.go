package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"servicecircle/internal/domain"
	"servicecircle/internal/feature/request"
	"servicecircle/internal/feature/user"
)

type RequestRepo struct{ db *gorm.DB }

func NewRequestRepo(db *gorm.DB) *RequestRepo { return &RequestRepo{db: db} }

func (r *RequestRepo) Create(ctx context.Context, sr *domain.ServiceRequest) error {
	m := request.FromDomain(sr)
	if err := r.db.WithContext(ctx).Omit("Receiver").Create(&m).Error; err != nil {
		return fmt.Errorf("repo: create request: %w", err)
	}
	sr.ID = m.ID
	sr.CreatedAt = m.CreatedAt
	return nil
}

func (r *RequestRepo) FindByID(ctx context.Context, id uint64) (*domain.ServiceRequest, error) {
	var m request.RequestModel
	err := r.db.WithContext(ctx).Joins("Receiver").
		Where("service_requests.id = ?", id).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repo: find request: %w", err)
	}
	sr := m.ToDomain()
	return &sr, nil
}

func (r *RequestRepo) ListByReceiver(ctx context.Context, receiverID uint64) ([]domain.ServiceRequest, error) {
	var ms []request.RequestModel
	err := r.db.WithContext(ctx).Joins("Receiver").
		Where("service_requests.receiver_user_id = ?", receiverID).
		Order("service_requests.id DESC").
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("repo: list requests by receiver: %w", err)
	}
	return toDomainRequests(ms), nil
}

// ListPool 无 pin 的请求在 SQL 层即被排除
func (r *RequestRepo) ListPool(ctx context.Context, includeHistory bool) ([]domain.ServiceRequest, error) {
	q := r.db.WithContext(ctx).Joins("Receiver").
		Where("service_requests.lat IS NOT NULL AND service_requests.lng IS NOT NULL")
	if !includeHistory {
		q = q.Where("service_requests.status = ?", string(domain.StatusOpen))
	}
	var ms []request.RequestModel
	if err := q.Order("service_requests.id DESC").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("repo: list request pool: %w", err)
	}
	return toDomainRequests(ms), nil
}

// MarkServiced 单条条件 UPDATE，并发下只有一个调用方能命中
func (r *RequestRepo) MarkServiced(ctx context.Context, id, receiverID uint64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&request.RequestModel{}).
		Where("id = ? AND receiver_user_id = ? AND status = ?", id, receiverID, string(domain.StatusOpen)).
		Updates(map[string]any{
			"status":              string(domain.StatusServiced),
			"serviced_at":         at,
			"serviced_by_user_id": receiverID,
		})
	if res.Error != nil {
		return false, fmt.Errorf("repo: mark serviced: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *RequestRepo) List(ctx context.Context, status domain.RequestStatus, offset, limit int) ([]domain.ServiceRequest, int64, error) {
	tx := r.db.WithContext(ctx).Model(&request.RequestModel{})
	if status != "" {
		tx = tx.Where("status = ?", string(status))
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("repo: count requests: %w", err)
	}
	var ms []request.RequestModel
	err := r.db.WithContext(ctx).Joins("Receiver").
		Scopes(func(q *gorm.DB) *gorm.DB {
			if status != "" {
				return q.Where("service_requests.status = ?", string(status))
			}
			return q
		}).
		Order("service_requests.id DESC").Offset(offset).Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, 0, fmt.Errorf("repo: list requests: %w", err)
	}
	return toDomainRequests(ms), total, nil
}

func toDomainRequests(ms []request.RequestModel) []domain.ServiceRequest {
	out := make([]domain.ServiceRequest, 0, len(ms))
	for i := range ms {
		out = append(out, ms[i].ToDomain())
	}
	return out
}

// Migrate 建表（users 先于 service_requests，外键依赖）
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&user.UserModel{}, &request.RequestModel{})
}
