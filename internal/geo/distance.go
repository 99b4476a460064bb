// Package geo 直线大圆距离（haversine），不做路网距离
package geo

import (
	"math"

	"servicecircle/internal/domain"
)

const EarthRadiusKm = 6371.0

// DistanceKm 两点间大圆距离（km）。输入不做范围校验，结果恒 >= 0。
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := toRad(lat1)
	phi2 := toRad(lat2)
	dPhi := toRad(lat2 - lat1)
	dLambda := toRad(lng2 - lng1)

	sp := math.Sin(dPhi / 2)
	sl := math.Sin(dLambda / 2)
	a := sp*sp + math.Cos(phi1)*math.Cos(phi2)*sl*sl
	// 浮点误差可能让 a 略超 1
	a = math.Min(1, math.Max(0, a))
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func Between(a, b domain.Coord) float64 {
	return DistanceKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

// Round2 对外暴露的距离统一保留两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
