package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/certchain/backend/internal/services"
)

// VerificationHandler serves the public verification endpoint. It has no
// authentication; anyone holding a fingerprint may check it.
type VerificationHandler struct {
	verifications *services.VerificationService
	logger        *zap.Logger
}

func NewVerificationHandler(verifications *services.VerificationService, logger *zap.Logger) *VerificationHandler {
	return &VerificationHandler{
		verifications: verifications,
		logger:        logger.With(zap.String("handler", "verification")),
	}
}

// Verify classifies the presented fingerprint. The response is always 200;
// the outcome carries the classification, including the degraded "error"
// status when the backing store is unreachable.
func (vh *VerificationHandler) Verify(c *gin.Context) {
	outcome := vh.verifications.Verify(c.Request.Context(), c.Param("fingerprint"), services.Requester{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})

	c.JSON(http.StatusOK, outcome)
}
