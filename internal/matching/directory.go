package matching

import (
	"sort"

	"servicecircle/internal/domain"
)

// ProviderPin 已配置服务区（pin + 半径）的 provider
type ProviderPin struct {
	ID       uint64       `json:"id"`
	Name     string       `json:"name"`
	Pin      domain.Coord `json:"pin"`
	RadiusKm float64      `json:"radius_km"`
}

// Directory provider 目录快照：Total 含未配置的，Configured 按 id 升序
type Directory struct {
	Total      int           `json:"total"`
	Configured []ProviderPin `json:"configured"`
}

// BuildDirectory 从用户集合中筛出 provider，统计总数并保留已配置的部分
func BuildDirectory(users []domain.User) Directory {
	dir := Directory{Configured: make([]ProviderPin, 0, len(users))}
	for i := range users {
		u := &users[i]
		if u.Role != domain.RoleProvider {
			continue
		}
		dir.Total++
		if !u.HasServiceArea() {
			continue
		}
		dir.Configured = append(dir.Configured, ProviderPin{
			ID:       u.ID,
			Name:     u.Name,
			Pin:      *u.Pin,
			RadiusKm: *u.ServiceRadiusKm,
		})
	}
	sort.SliceStable(dir.Configured, func(i, j int) bool {
		return dir.Configured[i].ID < dir.Configured[j].ID
	})
	return dir
}
