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

type ReceiverHandler struct {
	market *service.Marketplace
	log    *zap.Logger
}

func NewReceiverHandler(m *service.Marketplace, l *zap.Logger) *ReceiverHandler {
	return &ReceiverHandler{market: m, log: l}
}

type locationIn struct {
	LocationText string   `json:"location_text"`
	Lat          OptFloat `json:"lat"`
	Lng          OptFloat `json:"lng"`
}

type verdictOut struct {
	OK bool `json:"ok"`
	matching.Verdict
}

func (h *ReceiverHandler) MountAPI(_, authed *gin.RouterGroup) {
	e := ez.New(authed, h.log)
	receiverOnly := []domain.Role{domain.RoleReceiver}

	// 保存 pin 后立即评估
	ez.RegisterAction(e, ez.Action[locationIn, verdictOut]{
		Method: http.MethodPost,
		Path:   "/receiver/location",
		Binder: ez.BindJSON,
		Auth:   true,
		Roles:  receiverOnly,
		Handler: func(c *gin.Context, in *locationIn) (verdictOut, error) {
			p, _ := mdw.PrincipalFrom(c)
			v, err := h.market.SaveLocationAndEvaluate(c.Request.Context(), p, service.LocationInput{
				LocationText: in.LocationText,
				Pin:          pinOf(in.Lat, in.Lng),
			})
			if err != nil {
				return verdictOut{}, err
			}
			return verdictOut{OK: true, Verdict: v}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, verdictOut]{
		Method: http.MethodGet,
		Path:   "/receiver/serviceability",
		Binder: ez.BindNone,
		Auth:   true,
		Roles:  receiverOnly,
		Handler: func(c *gin.Context, _ *struct{}) (verdictOut, error) {
			p, _ := mdw.PrincipalFrom(c)
			v, err := h.market.ReceiverServiceability(c.Request.Context(), p)
			if err != nil {
				return verdictOut{}, err
			}
			return verdictOut{OK: true, Verdict: v}, nil
		},
	})
}
