package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const HeaderRequestID = "X-Request-ID"

// quietPaths 探活与抓取请求不写访问日志
var quietPaths = []string{"/health", "/metrics"}

// NewRouter 后台引擎：ginzap 请求日志（带 rid）、panic 恢复与 CORS
func NewRouter(l *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(ginzap.GinzapWithConfig(l, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  quietPaths,
		Context: func(c *gin.Context) []zapcore.Field {
			return []zapcore.Field{zap.String("rid", c.Writer.Header().Get(HeaderRequestID))}
		},
	}))
	r.Use(ginzap.RecoveryWithZap(l, true))
	r.Use(CORS(http.MethodGet, http.MethodPost, http.MethodOptions))
	return r
}

// CORS 放行任意来源，但允许携带 Bearer token 并暴露 request id
func CORS(methods ...string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    methods,
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", HeaderRequestID},
		ExposeHeaders:   []string{HeaderRequestID},
		MaxAge:          12 * time.Hour,
	})
}

// BuildServer errLog 一般来自 logger.ToStdLogger
func BuildServer(addr string, handler http.Handler, rt, wt, it time.Duration, errLog *log.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: rt,
		ReadTimeout:       rt,
		WriteTimeout:      wt,
		IdleTimeout:       it,
		MaxHeaderBytes:    64 << 10,
		ErrorLog:          errLog,
	}
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }

// HumanURL 启动日志里打印可点击的地址
func HumanURL(host string, port int) string {
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}
