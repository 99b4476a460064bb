package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"servicecircle/internal/domain"
	"servicecircle/internal/matching"
	"servicecircle/internal/service"
	"servicecircle/internal/transport/http/ez"
	resp "servicecircle/internal/transport/http/response"
)

// AdminHandler 后台只读接口，分组已走 AuthJWT("admin")
type AdminHandler struct {
	admin *service.AdminService
	log   *zap.Logger
}

func NewAdminHandler(s *service.AdminService, l *zap.Logger) *AdminHandler {
	return &AdminHandler{admin: s, log: l}
}

type pageQ struct {
	Offset int `form:"offset,default=0"`
	Limit  int `form:"limit,default=20"`
}

func (q *pageQ) normalize() {
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
}

type listUsersQ struct {
	pageQ
	Role string `form:"role"`
}

type listRequestsQ struct {
	pageQ
	Status string `form:"status"`
}

type coverageQ struct {
	Lat OptFloat `form:"lat"`
	Lng OptFloat `form:"lng"`
}

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin, h.log)

	ez.RegisterAction(e, ez.Action[listUsersQ, resp.Page[domain.User]]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *listUsersQ) (resp.Page[domain.User], error) {
			in.normalize()
			var role domain.Role
			if in.Role != "" {
				r, ok := domain.ParseRole(in.Role)
				if !ok {
					return resp.Page[domain.User]{}, ez.BadRequest("unknown role")
				}
				role = r
			}
			items, total, err := h.admin.ListUsers(c.Request.Context(), role, in.Offset, in.Limit)
			if err != nil {
				return resp.Page[domain.User]{}, err
			}
			return resp.NewPage(items, total, in.Offset, in.Limit), nil
		},
	})

	ez.RegisterAction(e, ez.Action[listRequestsQ, resp.Page[domain.ServiceRequest]]{
		Method: http.MethodGet,
		Path:   "/requests",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *listRequestsQ) (resp.Page[domain.ServiceRequest], error) {
			in.normalize()
			var status domain.RequestStatus
			if in.Status != "" {
				s, ok := domain.ParseStatus(in.Status)
				if !ok {
					return resp.Page[domain.ServiceRequest]{}, ez.BadRequest("unknown status")
				}
				status = s
			}
			items, total, err := h.admin.ListRequests(c.Request.Context(), status, in.Offset, in.Limit)
			if err != nil {
				return resp.Page[domain.ServiceRequest]{}, err
			}
			return resp.NewPage(items, total, in.Offset, in.Limit), nil
		},
	})

	ez.RegisterAction(e, ez.Action[coverageQ, matching.Verdict]{
		Method: http.MethodGet,
		Path:   "/coverage",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *coverageQ) (matching.Verdict, error) {
			pin := pinOf(in.Lat, in.Lng)
			if pin == nil {
				return matching.Verdict{}, ez.BadRequest("lat and lng are required")
			}
			return h.admin.Coverage(c.Request.Context(), *pin)
		},
	})
}
