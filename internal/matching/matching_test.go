package matching

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicecircle/internal/domain"
	"servicecircle/internal/geo"
)

var origin = domain.Coord{Lat: 0, Lng: 0}

// north 正北 km 公里处的点（纯纬度差，haversine 结果精确等于 km）
func north(km float64) domain.Coord {
	return domain.Coord{Lat: km / (geo.EarthRadiusKm * math.Pi / 180), Lng: 0}
}

func f64(v float64) *float64 { return &v }

func provider(id uint64, pin *domain.Coord, radius *float64) domain.User {
	return domain.User{ID: id, Role: domain.RoleProvider, Name: "p", Pin: pin, ServiceRadiusKm: radius}
}

func pinAt(c domain.Coord) *domain.Coord { return &c }

func TestBuildDirectory(t *testing.T) {
	users := []domain.User{
		{ID: 1, Role: domain.RoleReceiver, Pin: pinAt(origin), ServiceRadiusKm: f64(5)},
		provider(9, pinAt(north(1)), f64(5)),
		provider(3, pinAt(north(2)), f64(5)),
		provider(4, nil, f64(5)),
		provider(5, pinAt(north(2)), nil),
	}
	dir := BuildDirectory(users)
	assert.Equal(t, 4, dir.Total)
	require.Len(t, dir.Configured, 2)
	assert.Equal(t, uint64(3), dir.Configured[0].ID)
	assert.Equal(t, uint64(9), dir.Configured[1].ID)
	assert.Equal(t, 5.0, dir.Configured[1].RadiusKm)
}

func TestEvaluate_Degenerate(t *testing.T) {
	opt := DefaultOptions()

	v := Evaluate(nil, Directory{Total: 3}, opt)
	assert.False(t, v.CanServe)
	assert.Equal(t, ReasonNoPin, v.Reason)
	assert.Zero(t, v.ProvidersTotal)
	assert.NotNil(t, v.ProvidersList)
	assert.Empty(t, v.ProvidersList)
	assert.Nil(t, v.NearestProviderKm)

	v = Evaluate(&origin, Directory{}, opt)
	assert.Equal(t, ReasonNoProviders, v.Reason)
	assert.Zero(t, v.ProvidersTotal)

	v = Evaluate(&origin, Directory{Total: 2}, opt)
	assert.Equal(t, ReasonNoneConfigured, v.Reason)
	assert.Equal(t, 2, v.ProvidersTotal)
	assert.Zero(t, v.ProvidersConfigured)
	assert.Nil(t, v.NearestProviderKm)
}

func TestEvaluate_WithinRadius(t *testing.T) {
	dir := BuildDirectory([]domain.User{provider(1, pinAt(north(3)), f64(5))})
	v := Evaluate(&origin, dir, DefaultOptions())

	assert.True(t, v.CanServe)
	assert.Equal(t, ReasonAvailable, v.Reason)
	assert.Equal(t, 1, v.ProvidersInRange)
	assert.Equal(t, 1, v.ProvidersConfigured)
	assert.Equal(t, 1, v.ProvidersTotal)
	require.NotNil(t, v.NearestProviderKm)
	assert.Equal(t, 3.0, *v.NearestProviderKm)
	require.Len(t, v.ProvidersList, 1)
	assert.Equal(t, ProviderHit{ID: 1, Name: "p", DistanceKm: 3, RadiusKm: 5}, v.ProvidersList[0])
}

func TestEvaluate_OutOfRangeReportsNearest(t *testing.T) {
	dir := BuildDirectory([]domain.User{
		provider(1, pinAt(north(8)), f64(5)),
		provider(2, pinAt(north(12.345)), f64(10)),
	})
	v := Evaluate(&origin, dir, DefaultOptions())

	assert.False(t, v.CanServe)
	assert.Equal(t, ReasonOutOfRange, v.Reason)
	assert.Zero(t, v.ProvidersInRange)
	assert.Equal(t, 2, v.ProvidersConfigured)
	require.NotNil(t, v.NearestProviderKm)
	assert.Equal(t, 8.0, *v.NearestProviderKm)
	assert.Empty(t, v.ProvidersList)
}

func TestEvaluate_BoundaryInclusive(t *testing.T) {
	p := north(5)
	r := geo.Between(origin, p)
	dir := BuildDirectory([]domain.User{provider(1, &p, &r)})
	v := Evaluate(&origin, dir, DefaultOptions())
	assert.True(t, v.CanServe)
	assert.Equal(t, 5.0, v.ProvidersList[0].DistanceKm)
}

func TestEvaluate_SkipsImplausibleRadius(t *testing.T) {
	dir := BuildDirectory([]domain.User{
		provider(1, pinAt(north(100)), f64(250)),
		provider(2, pinAt(north(1)), f64(0)),
		provider(3, pinAt(north(1)), f64(-3)),
	})
	v := Evaluate(&origin, dir, DefaultOptions())

	assert.False(t, v.CanServe)
	assert.Equal(t, ReasonOutOfRange, v.Reason)
	assert.Equal(t, 3, v.ProvidersConfigured, "skipped providers still count as configured")
	assert.Nil(t, v.NearestProviderKm, "skipped providers do not contribute a nearest distance")

	// 恰好 200 仍然有效
	dir = BuildDirectory([]domain.User{provider(1, pinAt(north(150)), f64(200))})
	assert.True(t, Evaluate(&origin, dir, DefaultOptions()).CanServe)
}

func TestEvaluate_OrderAndLimit(t *testing.T) {
	var users []domain.User
	kms := []float64{7, 1, 6, 3, 2, 5, 4}
	for i, km := range kms {
		users = append(users, provider(uint64(i+1), pinAt(north(km)), f64(10)))
	}
	v := Evaluate(&origin, BuildDirectory(users), DefaultOptions())

	assert.True(t, v.CanServe)
	assert.Equal(t, 7, v.ProvidersInRange)
	require.Len(t, v.ProvidersList, 5)
	got := make([]float64, 0, 5)
	for _, h := range v.ProvidersList {
		got = append(got, h.DistanceKm)
	}
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, got)
	assert.Equal(t, 1.0, *v.NearestProviderKm)
}

func TestEvaluate_TiesKeepIDOrder(t *testing.T) {
	users := []domain.User{
		provider(7, pinAt(north(2)), f64(5)),
		provider(2, pinAt(north(2)), f64(5)),
	}
	v := Evaluate(&origin, BuildDirectory(users), DefaultOptions())
	require.Len(t, v.ProvidersList, 2)
	assert.Equal(t, uint64(2), v.ProvidersList[0].ID)
	assert.Equal(t, uint64(7), v.ProvidersList[1].ID)
}

func TestCircleOf(t *testing.T) {
	_, err := CircleOf(&domain.User{Role: domain.RoleProvider, Pin: pinAt(origin)})
	require.Error(t, err)
	assert.Equal(t, domain.KindConfiguration, domain.KindOf(err))
	assert.Equal(t, MsgServiceAreaMissing, err.Error())

	c, err := CircleOf(&domain.User{Pin: pinAt(origin), ServiceRadiusKm: f64(5)})
	require.NoError(t, err)
	assert.Equal(t, ServiceCircle{Center: origin, RadiusKm: 5}, c)
}

func request(id uint64, pin *domain.Coord, status domain.RequestStatus) domain.ServiceRequest {
	return domain.ServiceRequest{ID: id, Title: "t", Category: "c", Pin: pin, Status: status}
}

func TestVisibleTo(t *testing.T) {
	circle := ServiceCircle{Center: origin, RadiusKm: 5}
	pool := []domain.ServiceRequest{
		request(1, pinAt(north(1)), domain.StatusOpen),
		request(2, nil, domain.StatusOpen),
		request(3, pinAt(north(4.99)), domain.StatusOpen),
		request(4, pinAt(north(6)), domain.StatusOpen),
		request(5, pinAt(north(2)), domain.StatusServiced),
	}

	open := VisibleTo(circle, pool, false)
	require.Len(t, open, 2)
	assert.Equal(t, uint64(3), open[0].ID)
	assert.Equal(t, uint64(1), open[1].ID)
	assert.Equal(t, 4.99, open[0].DistanceKm)
	assert.True(t, open[0].CanServe)
	assert.Equal(t, "Within 5.0 km", open[0].ServeReason)

	all := VisibleTo(circle, pool, true)
	require.Len(t, all, 3)
	assert.Equal(t, uint64(5), all[0].ID)
	assert.Equal(t, domain.StatusServiced, all[0].Status)
}

func TestVisibleTo_BoundaryInclusive(t *testing.T) {
	p := north(5)
	circle := ServiceCircle{Center: origin, RadiusKm: geo.Between(origin, p)}
	out := VisibleTo(circle, []domain.ServiceRequest{request(1, &p, domain.StatusOpen)}, false)
	assert.Len(t, out, 1)
}

func TestVisibleTo_ReasonKeepsFraction(t *testing.T) {
	out := VisibleTo(ServiceCircle{Center: origin, RadiusKm: 2.5},
		[]domain.ServiceRequest{request(1, pinAt(north(1)), domain.StatusOpen)}, false)
	require.Len(t, out, 1)
	assert.Equal(t, "Within 2.5 km", out[0].ServeReason)
}

func TestVisibleTo_Empty(t *testing.T) {
	out := VisibleTo(ServiceCircle{Center: origin, RadiusKm: 5}, nil, false)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestRadiusLabel(t *testing.T) {
	cases := map[float64]string{5: "5.0", 2.5: "2.5", 200: "200.0", 0.75: "0.75", 12.125: "12.125"}
	for r, want := range cases {
		assert.Equal(t, want, radiusLabel(r))
	}
}
