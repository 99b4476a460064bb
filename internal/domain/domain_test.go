package domain

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func TestNewCoord(t *testing.T) {
	assert.Nil(t, NewCoord(nil, nil))
	assert.Nil(t, NewCoord(f64(1), nil))
	assert.Nil(t, NewCoord(nil, f64(1)))

	c := NewCoord(f64(12.5), f64(77.25))
	require.NotNil(t, c)
	assert.Equal(t, Coord{Lat: 12.5, Lng: 77.25}, *c)
}

func TestCoordValid(t *testing.T) {
	assert.True(t, Coord{Lat: 90, Lng: -180}.Valid())
	assert.False(t, Coord{Lat: 90.1, Lng: 0}.Valid())
	assert.False(t, Coord{Lat: 0, Lng: 181}.Valid())
	assert.False(t, Coord{Lat: math.NaN(), Lng: 0}.Valid())
}

func TestCoordPtrs_NilSafe(t *testing.T) {
	var c *Coord
	assert.Nil(t, c.LatPtr())
	assert.Nil(t, c.LngPtr())

	c = &Coord{Lat: 1, Lng: 2}
	assert.Equal(t, 1.0, *c.LatPtr())
	assert.Equal(t, 2.0, *c.LngPtr())
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("provider")
	assert.True(t, ok)
	assert.Equal(t, RoleProvider, r)

	_, ok = ParseRole("admin")
	assert.False(t, ok, "admin cannot sign up")
	_, ok = ParseRole("Receiver")
	assert.False(t, ok)
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("Serviced")
	assert.True(t, ok)
	assert.Equal(t, StatusServiced, s)
	_, ok = ParseStatus("open")
	assert.False(t, ok)
}

func TestHasServiceArea(t *testing.T) {
	var nilUser *User
	assert.False(t, nilUser.HasServiceArea())
	assert.False(t, (&User{Pin: &Coord{}}).HasServiceArea())
	assert.False(t, (&User{ServiceRadiusKm: f64(5)}).HasServiceArea())
	assert.True(t, (&User{Pin: &Coord{}, ServiceRadiusKm: f64(5)}).HasServiceArea())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindForbidden, KindOf(ForbiddenError("nope")))
	assert.Equal(t, KindPrecondition, KindOf(fmt.Errorf("wrap: %w", PreconditionError("pin"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("disk on fire")))
	assert.Equal(t, KindInternal, KindOf(nil))
	assert.Equal(t, "nope", ForbiddenError("nope").Error())
	assert.Equal(t, "not_found", KindNotFound.String())
}
