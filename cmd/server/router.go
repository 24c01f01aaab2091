package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pricofy/langbly-node/internal/handler"
)

// newRouter creates a router with all routes configured.
func newRouter(h *handler.Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(ginLogger(logger))
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/node/description", func(c *gin.Context) {
		res, _ := h.Handle(c.Request.Context(),
			handler.Request{Action: handler.ActionDescribe})
		c.JSON(http.StatusOK, res.Description)
	})

	r.GET("/credential/description", func(c *gin.Context) {
		res, _ := h.Handle(c.Request.Context(),
			handler.Request{Action: handler.ActionDescribe})
		c.JSON(http.StatusOK, res.Credential)
	})

	r.POST("/node/execute", func(c *gin.Context) {
		var req handler.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, handler.Response{Error: err.Error()})
			return
		}
		req.Action = handler.ActionExecute
		respond(c, h, req)
	})

	r.POST("/credential/test", func(c *gin.Context) {
		var req handler.Request
		// The body is optional: without one the configured key is tested
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, handler.Response{Error: err.Error()})
				return
			}
		}
		req.Action = handler.ActionTestCredential
		respond(c, h, req)
	})

	return r
}

// respond runs req and maps a reported failure to 422
func respond(c *gin.Context, h *handler.Handler, req handler.Request) {
	res, err := h.Handle(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.Response{Error: err.Error()})
		return
	}
	if res.Error != "" {
		c.JSON(http.StatusUnprocessableEntity, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ginLogger logs each request with zap.
func ginLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
