package service

import (
	"context"

	"servicecircle/internal/domain"
	"servicecircle/internal/matching"
)

// AdminService 后台只读查询
type AdminService struct {
	users    domain.UserRepository
	requests domain.RequestRepository
	market   *Marketplace
}

func NewAdminService(users domain.UserRepository, requests domain.RequestRepository, market *Marketplace) *AdminService {
	return &AdminService{users: users, requests: requests, market: market}
}

func (s *AdminService) ListUsers(ctx context.Context, role domain.Role, offset, limit int) ([]domain.User, int64, error) {
	return s.users.List(ctx, role, offset, limit)
}

func (s *AdminService) ListRequests(ctx context.Context, status domain.RequestStatus, offset, limit int) ([]domain.ServiceRequest, int64, error) {
	return s.requests.List(ctx, status, offset, limit)
}

// Coverage 任意坐标的可服务性，用于排查 provider 覆盖
func (s *AdminService) Coverage(ctx context.Context, pin domain.Coord) (matching.Verdict, error) {
	if !pin.Valid() {
		return matching.Verdict{}, domain.ValidationError(MsgBadCoordinate)
	}
	return s.market.EvaluateServiceability(ctx, &pin)
}
