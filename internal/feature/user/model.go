package user

import (
	"time"

	"servicecircle/internal/domain"
)

type UserModel struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Role         string `gorm:"size:16;not null;index"`
	Name         string `gorm:"size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:191;not null"`
	PasswordHash string `gorm:"size:100;not null"`

	LocationText    *string `gorm:"size:255"`
	Lat             *float64
	Lng             *float64
	ServiceRadiusKm *float64

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string { return "users" }

func (m *UserModel) ToDomain() domain.User {
	return domain.User{
		ID:              m.ID,
		Role:            domain.Role(m.Role),
		Name:            m.Name,
		Email:           m.Email,
		PasswordHash:    m.PasswordHash,
		LocationText:    m.LocationText,
		Pin:             domain.NewCoord(m.Lat, m.Lng),
		ServiceRadiusKm: m.ServiceRadiusKm,
		CreatedAt:       m.CreatedAt,
	}
}

func FromDomain(u *domain.User) UserModel {
	return UserModel{
		ID:              u.ID,
		Role:            string(u.Role),
		Name:            u.Name,
		Email:           u.Email,
		PasswordHash:    u.PasswordHash,
		LocationText:    u.LocationText,
		Lat:             u.Pin.LatPtr(),
		Lng:             u.Pin.LngPtr(),
		ServiceRadiusKm: u.ServiceRadiusKm,
		CreatedAt:       u.CreatedAt,
	}
}
