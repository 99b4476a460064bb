package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"servicecircle/internal/domain"
	"servicecircle/internal/matching"
	"servicecircle/internal/service"
	"servicecircle/internal/transport/http/ez"
	mdw "servicecircle/internal/transport/http/middleware"
)

type ProviderHandler struct {
	market *service.Marketplace
	log    *zap.Logger
}

func NewProviderHandler(m *service.Marketplace, l *zap.Logger) *ProviderHandler {
	return &ProviderHandler{market: m, log: l}
}

type serviceAreaIn struct {
	Lat             OptFloat `json:"lat"`
	Lng             OptFloat `json:"lng"`
	ServiceRadiusKm OptFloat `json:"service_radius_km"`
}

type poolQ struct {
	History string `form:"history"`
}

type okOut struct {
	OK bool `json:"ok"`
}

func (h *ProviderHandler) MountAPI(_, authed *gin.RouterGroup) {
	e := ez.New(authed, h.log)
	providerOnly := []domain.Role{domain.RoleProvider}

	ez.RegisterAction(e, ez.Action[serviceAreaIn, okOut]{
		Method: http.MethodPost,
		Path:   "/provider/service-area",
		Binder: ez.BindJSON,
		Auth:   true,
		Roles:  providerOnly,
		Handler: func(c *gin.Context, in *serviceAreaIn) (okOut, error) {
			p, _ := mdw.PrincipalFrom(c)
			err := h.market.SaveProviderServiceArea(c.Request.Context(), p,
				pinOf(in.Lat, in.Lng), in.ServiceRadiusKm.Ptr())
			if err != nil {
				return okOut{}, err
			}
			return okOut{OK: true}, nil
		},
	})

	// ?history=1 含已完成的请求
	ez.RegisterAction(e, ez.Action[poolQ, []matching.Visible]{
		Method: http.MethodGet,
		Path:   "/provider/requests",
		Binder: ez.BindQuery,
		Auth:   true,
		Roles:  providerOnly,
		Handler: func(c *gin.Context, in *poolQ) ([]matching.Visible, error) {
			p, _ := mdw.PrincipalFrom(c)
			return h.market.ListForProvider(c.Request.Context(), p, truthy(in.History))
		},
	})
}
