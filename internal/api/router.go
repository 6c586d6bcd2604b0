package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"smartorder/pkg/logger"
)

// RouterConfig carries the cookie names and the fixed dev credential.
type RouterConfig struct {
	SessionCookie string
	CSRFCookie    string
	DevUser       string
	DevPass       string
}

type loginReq struct {
	Usuario string `json:"usuario"`
	Clave   string `json:"clave"`
}

// SessionHandler issues session and csrf cookies against the fixed dev
// credential. Authentication proper is out of scope; this exists so the
// console and the tests can exercise the cookie/header contract.
func SessionHandler(cfg RouterConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"mensaje": "JSON inválido"})
			return
		}
		if req.Usuario != cfg.DevUser || req.Clave != cfg.DevPass {
			c.JSON(http.StatusUnauthorized, gin.H{"mensaje": "credenciales inválidas"})
			return
		}
		c.SetCookie(cfg.SessionCookie, ulid.Make().String(), 0, "/", "", false, true)
		// the csrf cookie must be readable by the client to be echoed back
		c.SetCookie(cfg.CSRFCookie, ulid.Make().String(), 0, "/", "", false, false)
		c.Status(http.StatusNoContent)
	}
}

func NewRouter(storage *Storage, cfg RouterConfig, log *logger.Logger) *gin.Engine {
	if log == nil {
		log = logger.Nop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))

	r.POST("/sesion", SessionHandler(cfg))

	guarded := r.Group("/parametros/catalogos",
		SessionRequired(cfg.SessionCookie),
		CSRFGuard(cfg.CSRFCookie),
	)
	{
		guarded.GET("/:tabla", ListHandler(storage))
		guarded.POST("/:tabla", CreateHandler(storage))
		guarded.PUT("/:tabla", UpdateFieldHandler(storage))
		guarded.DELETE("/:tabla", DeleteHandler(storage))
	}

	return r
}
