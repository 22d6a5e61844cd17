package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/impactreport/impact/backend/go-services/internal/storage"
	"github.com/impactreport/impact/backend/go-services/pkg/logger"
	"github.com/impactreport/impact/backend/go-services/pkg/metrics"
)

// UploadSigner issues presigned upload URLs.
type UploadSigner interface {
	SignUpload(ctx context.Context, contentType, extension, key string) (*storage.UploadTicket, error)
}

type signRequest struct {
	ContentType string `json:"contentType"`
	Extension   string `json:"extension"`
	Key         string `json:"key"`
}

// RegisterUploadRoutes mounts POST /api/upload/sign behind guard. A nil
// signer answers 503 so clients can tell storage is not configured.
func RegisterUploadRoutes(r gin.IRouter, signer UploadSigner, guard ...gin.HandlerFunc) {
	r.POST("/api/upload/sign", append(guard, func(c *gin.Context) {
		if signer == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage not configured"})
			return
		}
		var req signRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ContentType == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "contentType is required"})
			return
		}
		ticket, err := signer.SignUpload(c.Request.Context(), req.ContentType, req.Extension, req.Key)
		if err != nil {
			if errors.Is(err, storage.ErrUnsupportedType) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported content type", "contentType": req.ContentType})
				return
			}
			logger.Errorf("failed to sign upload: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		metrics.UploadsSigned.Inc()
		c.JSON(http.StatusOK, ticket)
	})...)
}
