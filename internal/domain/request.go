package domain

import (
	"context"
	"time"
)

type RequestStatus string

const (
	StatusOpen     RequestStatus = "Open"
	StatusServiced RequestStatus = "Serviced"
)

func ParseStatus(s string) (RequestStatus, bool) {
	switch RequestStatus(s) {
	case StatusOpen, StatusServiced:
		return RequestStatus(s), true
	}
	return "", false
}

// ServiceRequest 创建时快照 receiver 的位置；只读字段之外仅 status/serviced_* 可变
type ServiceRequest struct {
	ID             uint64    `json:"id"`
	ReceiverUserID uint64    `json:"receiver_user_id"`
	ReceiverName   string    `json:"receiver_name,omitempty"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	Details        *string   `json:"details"`
	CreatedAt      time.Time `json:"created_at"`

	LocationText *string `json:"location_text"`
	Pin          *Coord  `json:"pin"`

	ScheduledDate string  `json:"scheduled_date"`
	ScheduledTime string  `json:"scheduled_time"`
	DurationMin   int     `json:"duration_min"`
	HourlyWage    float64 `json:"hourly_wage"`

	Status           RequestStatus `json:"status"`
	ServicedAt       *time.Time    `json:"serviced_at"`
	ServicedByUserID *uint64       `json:"serviced_by_user_id"`
}

// NewRequest 创建入参；数值字段缺失或非法时为 nil
type NewRequest struct {
	Title         string
	Category      string
	Details       string
	ScheduledDate string
	ScheduledTime string
	DurationMin   *int
	HourlyWage    *float64
}

type RequestRepository interface {
	Create(ctx context.Context, r *ServiceRequest) error
	// FindByID 未找到时返回 (nil, nil)
	FindByID(ctx context.Context, id uint64) (*ServiceRequest, error)
	// ListByReceiver 新的在前
	ListByReceiver(ctx context.Context, receiverID uint64) ([]ServiceRequest, error)
	// ListPool 全局请求池，新的在前；includeHistory=false 时只含 Open
	ListPool(ctx context.Context, includeHistory bool) ([]ServiceRequest, error)
	// MarkServiced 原子条件更新：仅当 id、owner 匹配且仍为 Open 时写入，返回是否命中
	MarkServiced(ctx context.Context, id, receiverID uint64, at time.Time) (bool, error)
	List(ctx context.Context, status RequestStatus, offset, limit int) ([]ServiceRequest, int64, error)
}
