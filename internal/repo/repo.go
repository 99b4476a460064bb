package repo

import (
	"gorm.io/gorm"

	"servicecircle/internal/domain"
)

var (
	_ domain.UserRepository    = (*UserRepo)(nil)
	_ domain.RequestRepository = (*RequestRepo)(nil)
	_ domain.UserRepository    = (*MemoryUserRepo)(nil)
	_ domain.RequestRepository = (*MemoryRequestRepo)(nil)
)

// Stores 一组仓储，按 db.driver 选择实现
type Stores struct {
	Users    domain.UserRepository
	Requests domain.RequestRepository
}

func NewGormStores(db *gorm.DB) Stores {
	return Stores{Users: NewUserRepo(db), Requests: NewRequestRepo(db)}
}

func NewMemoryStores() Stores {
	u, r := NewMemory()
	return Stores{Users: u, Requests: r}
}
