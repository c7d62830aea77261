package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/certchain/backend/internal/api/middleware"
	"github.com/certchain/backend/internal/services"
)

type AuthHandler struct {
	auth       *services.AuthService
	sessionTTL int // cookie max age in seconds
	logger     *zap.Logger
}

func NewAuthHandler(auth *services.AuthService, sessionTTLSeconds int, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:       auth,
		sessionTTL: sessionTTLSeconds,
		logger:     logger.With(zap.String("handler", "auth")),
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}

	identity, token, err := ah.auth.SignIn(c.Request.Context(), req.Email, req.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetCookie(middleware.SessionCookie, token, ah.sessionTTL, "/", "", false, true)
	c.JSON(http.StatusOK, identityResponse(identity))
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil {
		ah.auth.SignOut(token)
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}

func (ah *AuthHandler) Me(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, identityResponse(identity))
}

type signupRequest struct {
	Institution struct {
		Name    string `json:"name" binding:"required"`
		Email   string `json:"email" binding:"required"`
		Website string `json:"website"`
		Address string `json:"address"`
		Phone   string `json:"phone"`
	} `json:"institution" binding:"required"`
	Admin struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		FullName string `json:"full_name" binding:"required"`
	} `json:"admin" binding:"required"`
}

// Signup registers an institution and its first admin user in one call. The
// institution starts pending; a super admin has to approve it before any
// certificate can be issued.
func (ah *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "institution and admin data required"})
		return
	}

	inst, user, err := ah.auth.SignUpInstitution(c.Request.Context(), services.SignUpRequest{
		InstitutionName:  req.Institution.Name,
		InstitutionEmail: req.Institution.Email,
		Website:          req.Institution.Website,
		Address:          req.Institution.Address,
		Phone:            req.Institution.Phone,
		AdminEmail:       req.Admin.Email,
		AdminPassword:    req.Admin.Password,
		AdminFullName:    req.Admin.FullName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"institution": inst,
		"admin": gin.H{
			"id":        user.ID,
			"email":     user.Email,
			"full_name": user.FullName,
			"role":      user.Role,
		},
	})
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

func (ah *AuthHandler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current and new password required"})
		return
	}

	identity := middleware.CurrentIdentity(c)
	if err := ah.auth.UpdatePassword(c.Request.Context(), identity, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "password updated"})
}

func identityResponse(identity *services.Identity) gin.H {
	return gin.H{
		"user_id":        identity.UserID,
		"email":          identity.Email,
		"full_name":      identity.FullName,
		"user_type":      identity.UserType,
		"role":           identity.Role,
		"institution_id": identity.InstitutionID,
	}
}
