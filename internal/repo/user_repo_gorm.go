package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"servicecircle/internal/domain"
	"servicecircle/internal/feature/user"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	m := user.FromDomain(u)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("repo: create user: %w", err)
	}
	u.ID = m.ID
	u.CreatedAt = m.CreatedAt
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepo) first(ctx context.Context, cond string, arg any) (*domain.User, error) {
	var m user.UserModel
	err := r.db.WithContext(ctx).Where(cond, arg).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repo: find user: %w", err)
	}
	u := m.ToDomain()
	return &u, nil
}

func (r *UserRepo) UpdateLocation(ctx context.Context, id uint64, label *string, pin *domain.Coord) error {
	err := r.db.WithContext(ctx).Model(&user.UserModel{}).Where("id = ?", id).
		Updates(map[string]any{
			"location_text": nullable(label),
			"lat":           nullable(pin.LatPtr()),
			"lng":           nullable(pin.LngPtr()),
		}).Error
	if err != nil {
		return fmt.Errorf("repo: update location: %w", err)
	}
	return nil
}

func (r *UserRepo) UpdateServiceArea(ctx context.Context, id uint64, pin *domain.Coord, radiusKm *float64) error {
	err := r.db.WithContext(ctx).Model(&user.UserModel{}).Where("id = ?", id).
		Updates(map[string]any{
			"lat":               nullable(pin.LatPtr()),
			"lng":               nullable(pin.LngPtr()),
			"service_radius_km": nullable(radiusKm),
		}).Error
	if err != nil {
		return fmt.Errorf("repo: update service area: %w", err)
	}
	return nil
}

func (r *UserRepo) ListProviders(ctx context.Context) ([]domain.User, error) {
	var ms []user.UserModel
	err := r.db.WithContext(ctx).
		Where("role = ?", string(domain.RoleProvider)).
		Order("id ASC").
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("repo: list providers: %w", err)
	}
	out := make([]domain.User, 0, len(ms))
	for i := range ms {
		out = append(out, ms[i].ToDomain())
	}
	return out, nil
}

// List 后台分页；role 为空表示全部
func (r *UserRepo) List(ctx context.Context, role domain.Role, offset, limit int) ([]domain.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&user.UserModel{})
	if role != "" {
		tx = tx.Where("role = ?", string(role))
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("repo: count users: %w", err)
	}
	var ms []user.UserModel
	if err := tx.Order("id DESC").Offset(offset).Limit(limit).Find(&ms).Error; err != nil {
		return nil, 0, fmt.Errorf("repo: list users: %w", err)
	}
	out := make([]domain.User, 0, len(ms))
	for i := range ms {
		out = append(out, ms[i].ToDomain())
	}
	return out, total, nil
}

// nullable typed nil 指针转成 untyped nil，确保落库为 NULL
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
