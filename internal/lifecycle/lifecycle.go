// Package lifecycle 请求状态机：Open -> Serviced，单向且终态不可再变
package lifecycle

import (
	"strings"

	"servicecircle/internal/domain"
)

const (
	MsgTitleCategoryRequired = "title and category are required"
	MsgPinRequired           = "Please save your location pin before creating a request."
	MsgScheduleRequired      = "Please select date, time, duration, and hourly wage."
)

var transitions = map[domain.RequestStatus][]domain.RequestStatus{
	domain.StatusOpen: {domain.StatusServiced},
}

func CanTransition(from, to domain.RequestStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsTerminal(s domain.RequestStatus) bool {
	return len(transitions[s]) == 0
}

// ValidateNew 校验顺序：标题/分类 -> 位置 pin -> 排期与报酬
func ValidateNew(in domain.NewRequest, pin *domain.Coord) error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Category) == "" {
		return domain.ValidationError(MsgTitleCategoryRequired)
	}
	if pin == nil {
		return domain.PreconditionError(MsgPinRequired)
	}
	if strings.TrimSpace(in.ScheduledDate) == "" || strings.TrimSpace(in.ScheduledTime) == "" {
		return domain.ValidationError(MsgScheduleRequired)
	}
	if in.DurationMin == nil || *in.DurationMin <= 0 {
		return domain.ValidationError(MsgScheduleRequired)
	}
	if in.HourlyWage == nil || *in.HourlyWage < 0 {
		return domain.ValidationError(MsgScheduleRequired)
	}
	return nil
}
