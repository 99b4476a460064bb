package domain

import (
	"context"
	"time"
)

// Role 封闭枚举，注册时确定，之后不可变更
type Role string

const (
	RoleReceiver Role = "receiver"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin" // 仅后台 JWT 使用，不落库
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleReceiver, RoleProvider:
		return Role(s), true
	}
	return "", false
}

// Label 面向用户的展示名
func (r Role) Label() string {
	switch r {
	case RoleReceiver:
		return "Receiver"
	case RoleProvider:
		return "Provider"
	case RoleAdmin:
		return "Admin"
	}
	return string(r)
}

// Principal 已认证的调用方
type Principal struct {
	ID   uint64
	Role Role
}

type User struct {
	ID              uint64    `json:"id"`
	Role            Role      `json:"role"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	LocationText    *string   `json:"location_text"`
	Pin             *Coord    `json:"pin"`
	ServiceRadiusKm *float64  `json:"service_radius_km"`
	CreatedAt       time.Time `json:"created_at"`
}

// HasServiceArea pin 与半径都已保存
func (u *User) HasServiceArea() bool {
	return u != nil && u.Pin != nil && u.ServiceRadiusKm != nil
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	// FindByID / FindByEmail 未找到时返回 (nil, nil)
	FindByID(ctx context.Context, id uint64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdateLocation(ctx context.Context, id uint64, label *string, pin *Coord) error
	UpdateServiceArea(ctx context.Context, id uint64, pin *Coord, radiusKm *float64) error
	// ListProviders 全部 provider，按 id 升序
	ListProviders(ctx context.Context) ([]User, error)
	List(ctx context.Context, role Role, offset, limit int) ([]User, int64, error)
}
