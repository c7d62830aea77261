package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/certchain/backend/internal/api/middleware"
	"github.com/certchain/backend/internal/services"
)

type CertificateHandler struct {
	certs         *services.CertificateService
	verifications *services.VerificationService
	verifyBaseURL string
	logger        *zap.Logger
}

func NewCertificateHandler(certs *services.CertificateService, verifications *services.VerificationService, verifyBaseURL string, logger *zap.Logger) *CertificateHandler {
	return &CertificateHandler{
		certs:         certs,
		verifications: verifications,
		verifyBaseURL: verifyBaseURL,
		logger:        logger.With(zap.String("handler", "certificates")),
	}
}

type issueRequest struct {
	HolderName    string         `json:"holder_name" binding:"required"`
	HolderEmail   string         `json:"holder_email" binding:"required"`
	CourseName    string         `json:"course_name" binding:"required"`
	InstitutionID string         `json:"institution_id" binding:"required"`
	IssueDate     string         `json:"issue_date" binding:"required"`
	Grade         string         `json:"grade"`
	Metadata      datatypes.JSON `json:"metadata"`
}

func (ch *CertificateHandler) Issue(c *gin.Context) {
	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required certificate fields"})
		return
	}

	cert, err := ch.certs.Issue(c.Request.Context(), middleware.CurrentIdentity(c), services.IssueRequest{
		HolderName:    req.HolderName,
		HolderEmail:   req.HolderEmail,
		CourseName:    req.CourseName,
		InstitutionID: req.InstitutionID,
		IssueDate:     req.IssueDate,
		Grade:         req.Grade,
		Metadata:      req.Metadata,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, cert)
}

// List returns the caller's institution certificates, newest first.
func (ch *CertificateHandler) List(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	if identity == nil || identity.InstitutionID == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no institution linkage"})
		return
	}

	certs, err := ch.certs.ListForInstitution(c.Request.Context(), identity, *identity.InstitutionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"certificates": certs, "count": len(certs)})
}

func (ch *CertificateHandler) Get(c *gin.Context) {
	cert, err := ch.certs.ByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cert)
}

type revokeRequest struct {
	Reason string `json:"reason"`
}

func (ch *CertificateHandler) Revoke(c *gin.Context) {
	var req revokeRequest
	// Reason is optional; an empty or absent body is fine.
	_ = c.ShouldBindJSON(&req)

	cert, err := ch.certs.Revoke(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cert)
}

// History returns the audit trail and verification attempts for one
// certificate.
func (ch *CertificateHandler) History(c *gin.Context) {
	certID := c.Param("id")

	cert, err := ch.certs.ByID(c.Request.Context(), certID)
	if err != nil {
		respondError(c, err)
		return
	}

	audit, err := ch.certs.AuditTrail(c.Request.Context(), cert.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	verifications, err := ch.verifications.History(c.Request.Context(), cert.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"certificate_id": cert.CertificateID,
		"audit_log":      audit,
		"verifications":  verifications,
	})
}

// QR renders a PNG QR code pointing at the public verification URL for the
// certificate's fingerprint.
func (ch *CertificateHandler) QR(c *gin.Context) {
	cert, err := ch.certs.ByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	verifyURL := fmt.Sprintf("%s/api/verify/%s", ch.verifyBaseURL, cert.Fingerprint)
	png, err := qrcode.Encode(verifyURL, qrcode.Medium, 256)
	if err != nil {
		ch.logger.Error("Failed to render QR code", zap.String("certificate_id", cert.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render QR code"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func (ch *CertificateHandler) Stats(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	if identity == nil || identity.InstitutionID == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no institution linkage"})
		return
	}

	stats, err := ch.certs.Stats(c.Request.Context(), identity, *identity.InstitutionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ByHolder lists certificates held by an email address.
func (ch *CertificateHandler) ByHolder(c *gin.Context) {
	certs, err := ch.certs.ByHolderEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"certificates": certs, "count": len(certs)})
}
