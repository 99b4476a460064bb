package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"servicecircle/internal/core/auth"
	"servicecircle/internal/domain"
	"servicecircle/internal/service"
	"servicecircle/internal/transport/http/ez"
	mdw "servicecircle/internal/transport/http/middleware"
)

// AuthHandler /auth/signup、/auth/login（公共）与 /me（鉴权）
type AuthHandler struct {
	accounts *service.AccountService
	jwt      *auth.JWTer
	log      *zap.Logger
}

func NewAuthHandler(accounts *service.AccountService, j *auth.JWTer, l *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, jwt: j, log: l}
}

func (h *AuthHandler) Priority() int { return 10 }

type signupIn struct {
	Role           string `json:"role"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	GenderDeclared string `json:"gender_declared"`
	ConfirmWoman   string `json:"confirm_woman"`
}

type loginIn struct {
	Role     string `json:"role"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenOut struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *AuthHandler) MountAPI(public, authed *gin.RouterGroup) {
	pub := ez.New(public, h.log)

	ez.RegisterAction(pub, ez.Action[signupIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/auth/signup",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *signupIn) (tokenOut, error) {
			u, err := h.accounts.Signup(c.Request.Context(), service.SignupInput{
				Role:           in.Role,
				Name:           in.Name,
				Email:          in.Email,
				Password:       in.Password,
				GenderDeclared: in.GenderDeclared,
				ConfirmWoman:   in.ConfirmWoman,
			})
			if err != nil {
				return tokenOut{}, err
			}
			return h.issue(u)
		},
	})

	ez.RegisterAction(pub, ez.Action[loginIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (tokenOut, error) {
			u, err := h.accounts.Login(c.Request.Context(), in.Role, in.Email, in.Password)
			if err != nil {
				return tokenOut{}, err
			}
			return h.issue(u)
		},
	})

	ez.RegisterAction(ez.New(authed, h.log), ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			p, _ := mdw.PrincipalFrom(c)
			return h.accounts.Profile(c.Request.Context(), p)
		},
	})
}

func (h *AuthHandler) issue(u *domain.User) (tokenOut, error) {
	tok, err := h.jwt.Issue(domain.Principal{ID: u.ID, Role: u.Role})
	if err != nil {
		return tokenOut{}, ez.Internal("issue token failed", err)
	}
	return tokenOut{Token: tok, User: u}, nil
}
