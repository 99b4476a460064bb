package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"servicecircle/internal/domain"
	"servicecircle/internal/repo"
	"servicecircle/pkg/utils"
)

func init() {
	utils.PasswordCost = bcrypt.MinCost
}

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

type fixture struct {
	stores repo.Stores
	market *Marketplace
	clock  *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	f := &fixture{stores: repo.NewMemoryStores(), clock: &now}
	f.market = NewMarketplace(Deps{
		Users:    f.stores.Users,
		Requests: f.stores.Requests,
		Now:      func() time.Time { return *f.clock },
	})
	return f
}

func (f *fixture) user(t *testing.T, role domain.Role, name string) domain.Principal {
	t.Helper()
	u := &domain.User{Role: role, Name: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, f.stores.Users.Create(context.Background(), u))
	return domain.Principal{ID: u.ID, Role: role}
}

func validRequest() domain.NewRequest {
	return domain.NewRequest{
		Title:         "Fix sink",
		Category:      "plumbing",
		Details:       "kitchen",
		ScheduledDate: "2026-05-02",
		ScheduledTime: "10:00",
		DurationMin:   intp(60),
		HourlyWage:    f64(20),
	}
}
