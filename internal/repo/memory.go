package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"servicecircle/internal/domain"
	"servicecircle/internal/lifecycle"
)

// memoryStore 进程内存储（db.driver=memory 与测试使用），一把锁保护两张表
type memoryStore struct {
	mu       sync.RWMutex
	users    map[uint64]domain.User
	requests map[uint64]domain.ServiceRequest
	userSeq  uint64
	reqSeq   uint64
}

type MemoryUserRepo struct{ s *memoryStore }
type MemoryRequestRepo struct{ s *memoryStore }

// NewMemory 返回共享同一份数据的 user/request 仓储
func NewMemory() (*MemoryUserRepo, *MemoryRequestRepo) {
	s := &memoryStore{
		users:    make(map[uint64]domain.User),
		requests: make(map[uint64]domain.ServiceRequest),
	}
	return &MemoryUserRepo{s: s}, &MemoryRequestRepo{s: s}
}

func (r *MemoryUserRepo) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.users {
		if x.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	r.s.userSeq++
	u.ID = r.s.userSeq
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.s.users[u.ID] = cloneUser(*u)
	return nil
}

func (r *MemoryUserRepo) FindByID(_ context.Context, id uint64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	u = cloneUser(u)
	return &u, nil
}

func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepo) UpdateLocation(_ context.Context, id uint64, label *string, pin *domain.Coord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil
	}
	u.LocationText = label
	u.Pin = pin
	r.s.users[id] = cloneUser(u)
	return nil
}

func (r *MemoryUserRepo) UpdateServiceArea(_ context.Context, id uint64, pin *domain.Coord, radiusKm *float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil
	}
	u.Pin = pin
	u.ServiceRadiusKm = radiusKm
	r.s.users[id] = cloneUser(u)
	return nil
}

func (r *MemoryUserRepo) ListProviders(_ context.Context) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.User, 0)
	for _, u := range r.s.users {
		if u.Role == domain.RoleProvider {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryUserRepo) List(_ context.Context, role domain.Role, offset, limit int) ([]domain.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if role == "" || u.Role == role {
			all = append(all, cloneUser(u))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return page(all, offset, limit), int64(len(all)), nil
}

func (r *MemoryRequestRepo) Create(_ context.Context, sr *domain.ServiceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.reqSeq++
	sr.ID = r.s.reqSeq
	if sr.CreatedAt.IsZero() {
		sr.CreatedAt = time.Now().UTC()
	}
	stored := cloneRequest(*sr)
	stored.ReceiverName = ""
	r.s.requests[sr.ID] = stored
	return nil
}

func (r *MemoryRequestRepo) FindByID(_ context.Context, id uint64) (*domain.ServiceRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sr, ok := r.s.requests[id]
	if !ok {
		return nil, nil
	}
	sr = r.withReceiver(sr)
	return &sr, nil
}

func (r *MemoryRequestRepo) ListByReceiver(_ context.Context, receiverID uint64) ([]domain.ServiceRequest, error) {
	return r.filter(func(sr domain.ServiceRequest) bool { return sr.ReceiverUserID == receiverID }), nil
}

func (r *MemoryRequestRepo) ListPool(_ context.Context, includeHistory bool) ([]domain.ServiceRequest, error) {
	return r.filter(func(sr domain.ServiceRequest) bool {
		if sr.Pin == nil {
			return false
		}
		return includeHistory || sr.Status == domain.StatusOpen
	}), nil
}

func (r *MemoryRequestRepo) MarkServiced(_ context.Context, id, receiverID uint64, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sr, ok := r.s.requests[id]
	if !ok || sr.ReceiverUserID != receiverID || !lifecycle.CanTransition(sr.Status, domain.StatusServiced) {
		return false, nil
	}
	by := receiverID
	sr.Status = domain.StatusServiced
	sr.ServicedAt = &at
	sr.ServicedByUserID = &by
	r.s.requests[id] = sr
	return true, nil
}

func (r *MemoryRequestRepo) List(_ context.Context, status domain.RequestStatus, offset, limit int) ([]domain.ServiceRequest, int64, error) {
	all := r.filter(func(sr domain.ServiceRequest) bool { return status == "" || sr.Status == status })
	return page(all, offset, limit), int64(len(all)), nil
}

// filter 结果按 id 倒序
func (r *MemoryRequestRepo) filter(keep func(domain.ServiceRequest) bool) []domain.ServiceRequest {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.ServiceRequest, 0)
	for _, sr := range r.s.requests {
		if keep(sr) {
			out = append(out, r.withReceiver(sr))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// withReceiver 调用方需持有读锁
func (r *MemoryRequestRepo) withReceiver(sr domain.ServiceRequest) domain.ServiceRequest {
	sr = cloneRequest(sr)
	if u, ok := r.s.users[sr.ReceiverUserID]; ok {
		sr.ReceiverName = u.Name
	}
	return sr
}

func page[T any](all []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}

func cloneUser(u domain.User) domain.User {
	if u.Pin != nil {
		p := *u.Pin
		u.Pin = &p
	}
	if u.LocationText != nil {
		s := *u.LocationText
		u.LocationText = &s
	}
	if u.ServiceRadiusKm != nil {
		v := *u.ServiceRadiusKm
		u.ServiceRadiusKm = &v
	}
	return u
}

func cloneRequest(sr domain.ServiceRequest) domain.ServiceRequest {
	if sr.Pin != nil {
		p := *sr.Pin
		sr.Pin = &p
	}
	if sr.LocationText != nil {
		s := *sr.LocationText
		sr.LocationText = &s
	}
	if sr.Details != nil {
		s := *sr.Details
		sr.Details = &s
	}
	if sr.ServicedAt != nil {
		t := *sr.ServicedAt
		sr.ServicedAt = &t
	}
	if sr.ServicedByUserID != nil {
		v := *sr.ServicedByUserID
		sr.ServicedByUserID = &v
	}
	return sr
}
