package domain

import "math"

// Coord 经纬度（度）。可选坐标统一用 *Coord 表达，保证经纬度同有同无。
type Coord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewCoord 任意一侧缺失即视为没有 pin
func NewCoord(lat, lng *float64) *Coord {
	if lat == nil || lng == nil {
		return nil
	}
	return &Coord{Lat: *lat, Lng: *lng}
}

func (c Coord) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// LatPtr / LngPtr 便于落库时写 NULL
func (c *Coord) LatPtr() *float64 {
	if c == nil {
		return nil
	}
	v := c.Lat
	return &v
}

func (c *Coord) LngPtr() *float64 {
	if c == nil {
		return nil
	}
	v := c.Lng
	return &v
}
