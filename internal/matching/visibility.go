package matching

import (
	"sort"
	"strconv"
	"strings"

	"servicecircle/internal/domain"
	"servicecircle/internal/geo"
)

const MsgServiceAreaMissing = "Set your service pin + radius"

// ServiceCircle provider 的服务圆：中心 pin + 半径
type ServiceCircle struct {
	Center   domain.Coord
	RadiusKm float64
}

// CircleOf 服务区不完整时返回 ConfigurationError，而不是静默返回空列表
func CircleOf(u *domain.User) (ServiceCircle, error) {
	if !u.HasServiceArea() {
		return ServiceCircle{}, domain.ConfigurationError(MsgServiceAreaMissing)
	}
	return ServiceCircle{Center: *u.Pin, RadiusKm: *u.ServiceRadiusKm}, nil
}

// Visible 带距离标注的请求
type Visible struct {
	domain.ServiceRequest
	DistanceKm  float64 `json:"distance_km"`
	CanServe    bool    `json:"can_serve"`
	ServeReason string  `json:"serve_reason"`
}

// VisibleTo 从请求池里挑出落在服务圆内（d <= r）的请求，新的在前
func VisibleTo(c ServiceCircle, pool []domain.ServiceRequest, includeHistory bool) []Visible {
	reason := "Within " + radiusLabel(c.RadiusKm) + " km"
	out := make([]Visible, 0, len(pool))
	for _, r := range pool {
		if r.Pin == nil {
			continue
		}
		if !includeHistory && r.Status != domain.StatusOpen {
			continue
		}
		d := geo.Between(c.Center, *r.Pin)
		if d > c.RadiusKm {
			continue
		}
		out = append(out, Visible{
			ServiceRequest: r,
			DistanceKm:     geo.Round2(d),
			CanServe:       true,
			ServeReason:    reason,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// radiusLabel 最短表示，整数也保留一位小数（5 -> "5.0"，2.5 -> "2.5"）
func radiusLabel(r float64) string {
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
