package ez

import (
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"servicecircle/internal/domain"
	mdw "servicecircle/internal/transport/http/middleware"
	resp "servicecircle/internal/transport/http/response"
)

// EZ 在某个路由分组上注册 Action
type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // JSON body
	BindQuery Binder = "query" // URL ?a=b
	BindURI   Binder = "uri"   // 路径参数 /:id
	BindNone  Binder = "none"
)

// AErr 统一错误对象（配合 resp.Error(int, msg)）
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

var kindCodes = map[domain.ErrorKind]int{
	domain.KindValidation:    resp.CodeBadRequest,
	domain.KindUnauthorized:  resp.CodeUnauthorized,
	domain.KindForbidden:     resp.CodeForbidden,
	domain.KindNotFound:      resp.CodeNotFound,
	domain.KindConfiguration: resp.CodeConflict,
	domain.KindConflict:      resp.CodeConflict,
	domain.KindPrecondition:  resp.CodePrecondition,
}

// FromError 业务错误按 Kind 映射错误码，其余一律 500 且不向外暴露细节
func FromError(err error) *AErr {
	var ae *AErr
	if errors.As(err, &ae) {
		return ae
	}
	var de *domain.Error
	if errors.As(err, &de) {
		if code, ok := kindCodes[de.Kind]; ok {
			return &AErr{Code: code, Msg: de.Msg}
		}
	}
	return &AErr{Code: resp.CodeServerError, Msg: "internal error", Err: err}
}

// Action I 入参，O 出参
type Action[I any, O any] struct {
	Method  string        // GET | POST | PUT | DELETE
	Path    string        // 例："/auth/login"、"/requests/:id/resolve"
	Binder  Binder        // 绑定方式
	Auth    bool          // 是否要求已登录（principal 由 AuthJWT 写入）
	Roles   []domain.Role // 限定角色（可选）
	Handler func(c *gin.Context, in *I) (O, error)
}

// fail 记下业务码供 Metrics 使用
func fail(c *gin.Context, code int, msg string) {
	mdw.SetRespCode(c, code)
	c.JSON(http.StatusOK, resp.Error(code, msg))
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		if a.Auth {
			p, ok := mdw.PrincipalFrom(c)
			if !ok {
				fail(c, resp.CodeUnauthorized, "Login required")
				return
			}
			if len(a.Roles) > 0 && !slices.Contains(a.Roles, p.Role) {
				fail(c, resp.CodeForbidden, "forbidden")
				return
			}
		}

		// 2) 绑定入参
		var in I
		if err := bind(c, a.Binder, &in); err != nil {
			fail(c, resp.CodeBadRequest, err.Error())
			return
		}

		// 3) 执行 + 统一错误映射
		out, err := a.Handler(c, &in)
		if err != nil {
			ae := FromError(err)
			if ae.Code >= resp.CodeServerError {
				e.log.Error("action failed",
					zap.String("rid", c.GetString(mdw.KeyRequestID)),
					zap.String("path", c.FullPath()),
					zap.Error(err),
				)
			}
			fail(c, ae.Code, ae.Error())
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

func bind(c *gin.Context, b Binder, in any) error {
	var err error
	switch b {
	case BindJSON:
		err = c.ShouldBindJSON(in)
		// 空 body 视为空对象
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case BindQuery:
		err = c.ShouldBindQuery(in)
	case BindURI:
		err = c.ShouldBindUri(in)
	}
	if err == nil {
		return nil
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return errors.New("request body too large")
	}
	return errors.New("invalid request: " + err.Error())
}
