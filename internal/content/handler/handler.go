package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/impactreport/impact/backend/go-services/internal/content"
	"github.com/impactreport/impact/backend/go-services/internal/content/service"
	"github.com/impactreport/impact/backend/go-services/pkg/logger"
	"github.com/impactreport/impact/backend/go-services/pkg/metrics"
)

// RegisterContentRoutes mounts the section API. writeGuard runs before every
// PUT and is expected to abort unauthenticated requests.
func RegisterContentRoutes(r gin.IRouter, svc *service.Service, writeGuard ...gin.HandlerFunc) {
	r.GET("/api/impact", func(c *gin.Context) {
		all, err := svc.GetAll(c.Request.Context(), c.Query("slug"))
		if err != nil {
			writeError(c, svc, "all", err)
			return
		}
		record(c, "all", http.StatusOK)
		c.JSON(http.StatusOK, gin.H{"data": all})
	})

	r.GET("/api/sections", func(c *gin.Context) {
		out := make([]gin.H, 0)
		for _, s := range svc.Registry().Sections() {
			out = append(out, gin.H{"path": s.Path, "collection": s.Collection, "allowedKeys": s.AllowedKeys()})
		}
		c.JSON(http.StatusOK, gin.H{"sections": out})
	})

	r.GET("/api/impact/:section", func(c *gin.Context) {
		section := c.Param("section")
		data, err := svc.Get(c.Request.Context(), section, c.Query("slug"))
		if err != nil {
			writeError(c, svc, section, err)
			return
		}
		record(c, section, http.StatusOK)
		c.JSON(http.StatusOK, gin.H{"data": data})
	})

	put := append(append([]gin.HandlerFunc{}, writeGuard...), func(c *gin.Context) {
		section := c.Param("section")
		// resolve first so metric labels only ever carry registered paths
		if _, err := svc.Registry().Lookup(section); err != nil {
			writeError(c, svc, section, err)
			return
		}
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			record(c, section, http.StatusBadRequest)
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing fields", "details": err.Error()})
			return
		}
		data, err := svc.Put(c.Request.Context(), section, c.Query("slug"), body)
		if err != nil {
			writeError(c, svc, section, err)
			return
		}
		record(c, section, http.StatusOK)
		c.JSON(http.StatusOK, gin.H{"data": data})
	})
	r.PUT("/api/impact/:section", put...)
}

func writeError(c *gin.Context, svc *service.Service, section string, err error) {
	var unknown *content.UnknownSectionError
	var storage *service.StorageError
	switch {
	case errors.As(err, &unknown):
		record(c, "unknown", http.StatusNotFound)
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown section", "section": unknown.Section})
	case errors.Is(err, content.ErrNotFound):
		record(c, section, http.StatusNotFound)
		c.JSON(http.StatusNotFound, gin.H{"error": "Section not found", "section": section, "slug": svc.Slug(c.Query("slug"))})
	case errors.Is(err, content.ErrEmptyBody):
		record(c, section, http.StatusBadRequest)
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing fields"})
	case errors.As(err, &storage):
		metrics.StorageFailures.WithLabelValues(storage.Op).Inc()
		fallthrough
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		record(c, section, http.StatusInternalServerError)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func record(c *gin.Context, section string, code int) {
	metrics.ContentRequests.WithLabelValues(section, c.Request.Method, strconv.Itoa(code)).Inc()
}
