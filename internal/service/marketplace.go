package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"servicecircle/internal/domain"
	"servicecircle/internal/lifecycle"
	"servicecircle/internal/matching"
)

const (
	MsgResolveNotFound  = "Request not found"
	MsgResolveForbidden = "You can only mark your own request as serviced."
	MsgBadCoordinate    = "Latitude must be within [-90, 90] and longitude within [-180, 180]."
	MsgBadRadius        = "Service radius must not be negative."
	MsgAccountNotFound  = "Account not found"
)

// Marketplace 匹配与请求生命周期的编排层。每个方法先做角色校验，再访问存储。
type Marketplace struct {
	users    domain.UserRepository
	requests domain.RequestRepository
	dir      *DirectorySource
	opt      matching.Options
	log      *zap.Logger
	now      func() time.Time
}

type Deps struct {
	Users     domain.UserRepository
	Requests  domain.RequestRepository
	Directory *DirectorySource
	Options   matching.Options
	Logger    *zap.Logger
	// Now 测试注入时钟；默认 time.Now
	Now func() time.Time
}

func NewMarketplace(d Deps) *Marketplace {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Directory == nil {
		d.Directory = NewDirectorySource(d.Users, nil, 0, d.Logger)
	}
	if d.Options == (matching.Options{}) {
		d.Options = matching.DefaultOptions()
	}
	return &Marketplace{
		users:    d.Users,
		requests: d.Requests,
		dir:      d.Directory,
		opt:      d.Options,
		log:      d.Logger,
		now:      d.Now,
	}
}

// LocationInput receiver 位置；Pin 为 nil 表示清除
type LocationInput struct {
	LocationText string
	Pin          *domain.Coord
}

type ResolveResult struct {
	Already bool                 `json:"already"`
	Status  domain.RequestStatus `json:"status"`
}

func requireRole(p domain.Principal, want domain.Role) error {
	if p.Role != want {
		return domain.ForbiddenError(fmt.Sprintf("This action is only available to %s accounts.", want.Label()))
	}
	return nil
}

func checkPin(pin *domain.Coord) error {
	if pin != nil && !pin.Valid() {
		return domain.ValidationError(MsgBadCoordinate)
	}
	return nil
}

func (m *Marketplace) SaveReceiverLocation(ctx context.Context, p domain.Principal, in LocationInput) error {
	if err := requireRole(p, domain.RoleReceiver); err != nil {
		return err
	}
	if err := checkPin(in.Pin); err != nil {
		return err
	}
	var label *string
	if s := strings.TrimSpace(in.LocationText); s != "" {
		label = &s
	}
	if err := m.users.UpdateLocation(ctx, p.ID, label, in.Pin); err != nil {
		return err
	}
	m.log.Debug("receiver location saved", zap.Uint64("user_id", p.ID), zap.Bool("has_pin", in.Pin != nil))
	return nil
}

// SaveLocationAndEvaluate 先落库再评估，对应 receiver 地图选点
func (m *Marketplace) SaveLocationAndEvaluate(ctx context.Context, p domain.Principal, in LocationInput) (matching.Verdict, error) {
	if err := m.SaveReceiverLocation(ctx, p, in); err != nil {
		return matching.Verdict{}, err
	}
	return m.EvaluateServiceability(ctx, in.Pin)
}

// ReceiverServiceability 用已保存的 pin 重新评估
func (m *Marketplace) ReceiverServiceability(ctx context.Context, p domain.Principal) (matching.Verdict, error) {
	if err := requireRole(p, domain.RoleReceiver); err != nil {
		return matching.Verdict{}, err
	}
	u, err := m.users.FindByID(ctx, p.ID)
	if err != nil {
		return matching.Verdict{}, err
	}
	if u == nil {
		return matching.Verdict{}, domain.NotFoundError(MsgAccountNotFound)
	}
	return m.EvaluateServiceability(ctx, u.Pin)
}

func (m *Marketplace) EvaluateServiceability(ctx context.Context, pin *domain.Coord) (matching.Verdict, error) {
	var dir matching.Directory
	if pin != nil {
		d, err := m.dir.Load(ctx)
		if err != nil {
			return matching.Verdict{}, err
		}
		dir = d
	}
	v := matching.Evaluate(pin, dir, m.opt)
	observeVerdict(v.CanServe)
	m.log.Debug("serviceability evaluated",
		zap.Bool("can_serve", v.CanServe),
		zap.Int("in_range", v.ProvidersInRange),
		zap.Int("configured", v.ProvidersConfigured),
		zap.Int("total", v.ProvidersTotal),
	)
	return v, nil
}

// SaveProviderServiceArea 缺失的字段按 NULL 保存
func (m *Marketplace) SaveProviderServiceArea(ctx context.Context, p domain.Principal, pin *domain.Coord, radiusKm *float64) error {
	if err := requireRole(p, domain.RoleProvider); err != nil {
		return err
	}
	if err := checkPin(pin); err != nil {
		return err
	}
	if radiusKm != nil && *radiusKm < 0 {
		return domain.ValidationError(MsgBadRadius)
	}
	if err := m.users.UpdateServiceArea(ctx, p.ID, pin, radiusKm); err != nil {
		return err
	}
	m.dir.Invalidate(ctx)
	m.log.Info("provider service area saved",
		zap.Uint64("user_id", p.ID),
		zap.Bool("has_pin", pin != nil),
		zap.Bool("has_radius", radiusKm != nil),
	)
	return nil
}

func (m *Marketplace) CreateRequest(ctx context.Context, p domain.Principal, in domain.NewRequest) (uint64, error) {
	if err := requireRole(p, domain.RoleReceiver); err != nil {
		return 0, err
	}
	u, err := m.users.FindByID(ctx, p.ID)
	if err != nil {
		return 0, err
	}
	if u == nil {
		return 0, domain.NotFoundError(MsgAccountNotFound)
	}
	if err := lifecycle.ValidateNew(in, u.Pin); err != nil {
		return 0, err
	}

	sr := domain.ServiceRequest{
		ReceiverUserID: p.ID,
		Title:          strings.TrimSpace(in.Title),
		Category:       strings.TrimSpace(in.Category),
		CreatedAt:      m.now().UTC(),
		LocationText:   u.LocationText,
		Pin:            u.Pin,
		ScheduledDate:  strings.TrimSpace(in.ScheduledDate),
		ScheduledTime:  strings.TrimSpace(in.ScheduledTime),
		DurationMin:    *in.DurationMin,
		HourlyWage:     *in.HourlyWage,
		Status:         domain.StatusOpen,
	}
	if d := strings.TrimSpace(in.Details); d != "" {
		sr.Details = &d
	}
	if err := m.requests.Create(ctx, &sr); err != nil {
		return 0, err
	}
	requestsCreated.Inc()
	m.log.Info("request created",
		zap.Uint64("request_id", sr.ID),
		zap.Uint64("receiver_id", p.ID),
		zap.String("category", sr.Category),
	)
	return sr.ID, nil
}

func (m *Marketplace) ListForReceiver(ctx context.Context, p domain.Principal) ([]domain.ServiceRequest, error) {
	if err := requireRole(p, domain.RoleReceiver); err != nil {
		return nil, err
	}
	return m.requests.ListByReceiver(ctx, p.ID)
}

func (m *Marketplace) ListForProvider(ctx context.Context, p domain.Principal, includeHistory bool) ([]matching.Visible, error) {
	if err := requireRole(p, domain.RoleProvider); err != nil {
		return nil, err
	}
	u, err := m.users.FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFoundError(MsgAccountNotFound)
	}
	circle, err := matching.CircleOf(u)
	if err != nil {
		return nil, err
	}
	pool, err := m.requests.ListPool(ctx, includeHistory)
	if err != nil {
		return nil, err
	}
	return matching.VisibleTo(circle, pool, includeHistory), nil
}

// Resolve 先做一次原子条件更新；未命中时再读一次只用于区分失败原因
func (m *Marketplace) Resolve(ctx context.Context, p domain.Principal, id uint64) (ResolveResult, error) {
	if p.Role != domain.RoleReceiver {
		resolveTotal.WithLabelValues("forbidden").Inc()
		return ResolveResult{}, domain.ForbiddenError(MsgResolveForbidden)
	}
	ok, err := m.requests.MarkServiced(ctx, id, p.ID, m.now().UTC())
	if err != nil {
		return ResolveResult{}, err
	}
	if ok {
		resolveTotal.WithLabelValues("serviced").Inc()
		m.log.Info("request serviced", zap.Uint64("request_id", id), zap.Uint64("receiver_id", p.ID))
		return ResolveResult{Status: domain.StatusServiced}, nil
	}

	sr, err := m.requests.FindByID(ctx, id)
	if err != nil {
		return ResolveResult{}, err
	}
	switch {
	case sr == nil:
		resolveTotal.WithLabelValues("not_found").Inc()
		return ResolveResult{}, domain.NotFoundError(MsgResolveNotFound)
	case sr.ReceiverUserID != p.ID:
		resolveTotal.WithLabelValues("forbidden").Inc()
		return ResolveResult{}, domain.ForbiddenError(MsgResolveForbidden)
	case lifecycle.IsTerminal(sr.Status):
		resolveTotal.WithLabelValues("already").Inc()
		return ResolveResult{Already: true, Status: sr.Status}, nil
	}
	return ResolveResult{}, fmt.Errorf("resolve request %d: conditional update matched no rows (status %q)", id, sr.Status)
}
