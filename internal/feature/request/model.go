package request

import (
	"time"

	"servicecircle/internal/domain"
	"servicecircle/internal/feature/user"
)

type RequestModel struct {
	ID             uint64          `gorm:"primaryKey;autoIncrement"`
	ReceiverUserID uint64          `gorm:"not null;index"`
	Receiver       *user.UserModel `gorm:"foreignKey:ReceiverUserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`

	Title    string  `gorm:"size:128;not null"`
	Category string  `gorm:"size:64;not null"`
	Details  *string `gorm:"type:text"`

	// 创建时的 receiver 位置快照
	LocationText *string `gorm:"size:255"`
	Lat          *float64
	Lng          *float64

	ScheduledDate string  `gorm:"size:16;not null"`
	ScheduledTime string  `gorm:"size:16;not null"`
	DurationMin   int     `gorm:"not null"`
	HourlyWage    float64 `gorm:"not null"`

	Status           string `gorm:"size:16;not null;index;default:Open"`
	ServicedAt       *time.Time
	ServicedByUserID *uint64

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (RequestModel) TableName() string { return "service_requests" }

func (m *RequestModel) ToDomain() domain.ServiceRequest {
	r := domain.ServiceRequest{
		ID:               m.ID,
		ReceiverUserID:   m.ReceiverUserID,
		Title:            m.Title,
		Category:         m.Category,
		Details:          m.Details,
		CreatedAt:        m.CreatedAt,
		LocationText:     m.LocationText,
		Pin:              domain.NewCoord(m.Lat, m.Lng),
		ScheduledDate:    m.ScheduledDate,
		ScheduledTime:    m.ScheduledTime,
		DurationMin:      m.DurationMin,
		HourlyWage:       m.HourlyWage,
		Status:           domain.RequestStatus(m.Status),
		ServicedAt:       m.ServicedAt,
		ServicedByUserID: m.ServicedByUserID,
	}
	if m.Receiver != nil {
		r.ReceiverName = m.Receiver.Name
	}
	return r
}

func FromDomain(r *domain.ServiceRequest) RequestModel {
	return RequestModel{
		ID:               r.ID,
		ReceiverUserID:   r.ReceiverUserID,
		Title:            r.Title,
		Category:         r.Category,
		Details:          r.Details,
		LocationText:     r.LocationText,
		Lat:              r.Pin.LatPtr(),
		Lng:              r.Pin.LngPtr(),
		ScheduledDate:    r.ScheduledDate,
		ScheduledTime:    r.ScheduledTime,
		DurationMin:      r.DurationMin,
		HourlyWage:       r.HourlyWage,
		Status:           string(r.Status),
		ServicedAt:       r.ServicedAt,
		ServicedByUserID: r.ServicedByUserID,
		CreatedAt:        r.CreatedAt,
	}
}
