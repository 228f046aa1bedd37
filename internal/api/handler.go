package api

import (
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"wsconsole/internal/model"
	"wsconsole/internal/repo"
)

const (
	defaultCommandLimit = 50
	maxCommandLimit     = 500
)

type Handler struct {
	WS       http.Handler
	Assets   fs.FS
	Commands repo.CommandLog
	Log      zerolog.Logger
}

func NewHandler(ws http.Handler, assets fs.FS, commands repo.CommandLog, log zerolog.Logger) *Handler {
	return &Handler{WS: ws, Assets: assets, Commands: commands, Log: log}
}

// NewEngine returns a gin engine with recovery, request logging and the
// routes of h.
func NewEngine(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.RequestLogger())
	h.SetupRoutes(r)
	return r
}

func (h *Handler) SetupRoutes(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/assets/")
	})
	r.StaticFS("/assets", http.FS(h.Assets))
	r.GET("/ws", gin.WrapH(h.WS))

	api := r.Group("/api")
	api.GET("/commands", h.ListCommands)
}

func (h *Handler) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.Log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func (h *Handler) ListCommands(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "command log disabled"})
		return
	}

	limit := defaultCommandLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxCommandLimit)
	}

	commands, err := h.Commands.RecentCommands(c.Request.Context(), limit)
	if err != nil {
		h.Log.Error().Err(err).Msg("failed to list commands")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list commands"})
		return
	}
	if commands == nil {
		commands = []model.Command{}
	}
	c.JSON(http.StatusOK, gin.H{"commands": commands})
}
