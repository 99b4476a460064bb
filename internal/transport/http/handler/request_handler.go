package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"servicecircle/internal/domain"
	"servicecircle/internal/service"
	"servicecircle/internal/transport/http/ez"
	mdw "servicecircle/internal/transport/http/middleware"
)

type RequestHandler struct {
	market *service.Marketplace
	log    *zap.Logger
}

func NewRequestHandler(m *service.Marketplace, l *zap.Logger) *RequestHandler {
	return &RequestHandler{market: m, log: l}
}

type createIn struct {
	Title         string   `json:"title"`
	Category      string   `json:"category"`
	Details       string   `json:"details"`
	ScheduledDate string   `json:"scheduled_date"`
	ScheduledTime string   `json:"scheduled_time"`
	DurationMin   OptInt   `json:"duration_min"`
	HourlyWage    OptFloat `json:"hourly_wage"`
}

type createOut struct {
	OK bool   `json:"ok"`
	ID uint64 `json:"id"`
}

type idURI struct {
	ID uint64 `uri:"id" binding:"required"`
}

type resolveOut struct {
	OK bool `json:"ok"`
	service.ResolveResult
}

func (h *RequestHandler) MountAPI(_, authed *gin.RouterGroup) {
	e := ez.New(authed, h.log)
	receiverOnly := []domain.Role{domain.RoleReceiver}

	ez.RegisterAction(e, ez.Action[struct{}, []domain.ServiceRequest]{
		Method: http.MethodGet,
		Path:   "/requests",
		Binder: ez.BindNone,
		Auth:   true,
		Roles:  receiverOnly,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.ServiceRequest, error) {
			p, _ := mdw.PrincipalFrom(c)
			return h.market.ListForReceiver(c.Request.Context(), p)
		},
	})

	ez.RegisterAction(e, ez.Action[createIn, createOut]{
		Method: http.MethodPost,
		Path:   "/requests",
		Binder: ez.BindJSON,
		Auth:   true,
		Roles:  receiverOnly,
		Handler: func(c *gin.Context, in *createIn) (createOut, error) {
			p, _ := mdw.PrincipalFrom(c)
			id, err := h.market.CreateRequest(c.Request.Context(), p, domain.NewRequest{
				Title:         in.Title,
				Category:      in.Category,
				Details:       in.Details,
				ScheduledDate: in.ScheduledDate,
				ScheduledTime: in.ScheduledTime,
				DurationMin:   in.DurationMin.Ptr(),
				HourlyWage:    in.HourlyWage.Ptr(),
			})
			if err != nil {
				return createOut{}, err
			}
			return createOut{OK: true, ID: id}, nil
		},
	})

	// 不限角色：provider 调用时由 service 返回归属错误
	ez.RegisterAction(e, ez.Action[idURI, resolveOut]{
		Method: http.MethodPost,
		Path:   "/requests/:id/resolve",
		Binder: ez.BindURI,
		Auth:   true,
		Handler: func(c *gin.Context, in *idURI) (resolveOut, error) {
			p, _ := mdw.PrincipalFrom(c)
			res, err := h.market.Resolve(c.Request.Context(), p, in.ID)
			if err != nil {
				return resolveOut{}, err
			}
			return resolveOut{OK: true, ResolveResult: res}, nil
		},
	})
}
