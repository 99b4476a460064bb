package matching

import (
	"sort"

	"servicecircle/internal/domain"
	"servicecircle/internal/geo"
)

const (
	ReasonNoPin          = "No pin set. Click the map or use current location."
	ReasonNoProviders    = "No providers exist yet. Create a Provider account and set service area."
	ReasonNoneConfigured = "Providers exist, but none have set service pin + radius yet."
	ReasonAvailable      = "Service is available for your location."
	ReasonOutOfRange     = "No providers are in range for this location."
)

type Options struct {
	// MaxRadiusKm 超过该值（或 <= 0）的半径视为脏数据，直接跳过
	MaxRadiusKm float64
	// ListLimit providers_list 最多返回条数
	ListLimit int
}

func DefaultOptions() Options {
	return Options{MaxRadiusKm: 200, ListLimit: 5}
}

type ProviderHit struct {
	ID         uint64  `json:"id"`
	Name       string  `json:"name"`
	DistanceKm float64 `json:"distance_km"`
	RadiusKm   float64 `json:"radius_km"`
}

type Verdict struct {
	CanServe            bool          `json:"can_serve"`
	ProvidersInRange    int           `json:"providers_in_range"`
	ProvidersConfigured int           `json:"providers_configured"`
	ProvidersTotal      int           `json:"providers_total"`
	NearestProviderKm   *float64      `json:"nearest_provider_km"`
	ProvidersList       []ProviderHit `json:"providers_list"`
	Reason              string        `json:"reason"`
}

// Evaluate 判断 pin 处是否有 provider 可服务。纯函数，pin 的持久化由调用方负责。
func Evaluate(pin *domain.Coord, dir Directory, opt Options) Verdict {
	v := Verdict{ProvidersList: []ProviderHit{}}
	if pin == nil {
		v.Reason = ReasonNoPin
		return v
	}
	if dir.Total == 0 {
		v.Reason = ReasonNoProviders
		return v
	}
	v.ProvidersTotal = dir.Total
	if len(dir.Configured) == 0 {
		v.Reason = ReasonNoneConfigured
		return v
	}
	v.ProvidersConfigured = len(dir.Configured)

	var (
		hits       []ProviderHit
		nearestAny = -1.0
	)
	for _, p := range dir.Configured {
		if p.RadiusKm <= 0 || p.RadiusKm > opt.MaxRadiusKm {
			continue
		}
		d := geo.Between(*pin, p.Pin)
		if nearestAny < 0 || d < nearestAny {
			nearestAny = d
		}
		if d <= p.RadiusKm {
			hits = append(hits, ProviderHit{
				ID:         p.ID,
				Name:       p.Name,
				DistanceKm: geo.Round2(d),
				RadiusKm:   p.RadiusKm,
			})
		}
	}

	if len(hits) == 0 {
		v.Reason = ReasonOutOfRange
		if nearestAny >= 0 {
			n := geo.Round2(nearestAny)
			v.NearestProviderKm = &n
		}
		return v
	}

	// 按展示值（两位小数）排序，稳定排序保证同距离时按 id
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].DistanceKm < hits[j].DistanceKm })

	v.CanServe = true
	v.ProvidersInRange = len(hits)
	n := hits[0].DistanceKm
	v.NearestProviderKm = &n
	if opt.ListLimit > 0 && len(hits) > opt.ListLimit {
		hits = hits[:opt.ListLimit]
	}
	v.ProvidersList = hits
	v.Reason = ReasonAvailable
	return v
}
