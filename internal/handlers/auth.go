package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eaas-dev/eaas-backend/internal/services"
)

type AuthHandler struct {
	sessions services.SessionService
	verify   services.VerificationService
}

func NewAuthHandler(sessions services.SessionService, verify services.VerificationService) *AuthHandler {
	return &AuthHandler{sessions: sessions, verify: verify}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (ah *AuthHandler) SignIn(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}
	session, err := ah.sessions.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, err)
		return
	}
	RespondOK(c, gin.H{"session": session, "user": session.User})
}

func (ah *AuthHandler) SignUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}
	user, err := ah.sessions.SignUp(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}
	// No session yet: the account needs verification, then a sign-in.
	RespondCreated(c, gin.H{"user": user, "session": nil})
}

func (ah *AuthHandler) SignOut(c *gin.Context) {
	token := bearerToken(c)
	if err := ah.sessions.SignOut(c.Request.Context(), token); err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}
	RespondOK(c, gin.H{"signed_out": true})
}

func (ah *AuthHandler) Google(c *gin.Context) {
	var body struct {
		RedirectTo string `json:"redirect_to"`
	}
	_ = c.ShouldBindJSON(&body)

	res, err := ah.sessions.SignInWithGoogle(c.Request.Context(), body.RedirectTo)
	if err != nil {
		RespondError(c, http.StatusBadGateway, err)
		return
	}
	if res.RedirectURL != "" {
		RespondOK(c, gin.H{"redirect_url": res.RedirectURL})
		return
	}
	RespondOK(c, gin.H{"session": res.Session, "user": res.Session.User})
}

// Callback finishes the OAuth flow in the delegated regime.
func (ah *AuthHandler) Callback(c *gin.Context) {
	session, err := ah.sessions.CompleteOAuth(c.Request.Context(), c.Query("code"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}
	RespondOK(c, gin.H{"session": session, "user": session.User})
}

func (ah *AuthHandler) SendVerification(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}
	if ah.verify == nil {
		RespondError(c, http.StatusNotImplemented, fmt.Errorf("verification handled by the identity provider"))
		return
	}
	if err := ah.verify.SendVerification(c.Request.Context(), body.Email); err != nil {
		RespondError(c, http.StatusInternalServerError, err)
		return
	}
	RespondOK(c, gin.H{"sent": true})
}

func (ah *AuthHandler) VerifyEmail(c *gin.Context) {
	if ah.verify == nil {
		RespondError(c, http.StatusNotImplemented, fmt.Errorf("verification handled by the identity provider"))
		return
	}
	email, ok := ah.verify.Verify(c.Request.Context(), c.Query("token"))
	if !ok {
		RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid or expired verification token"))
		return
	}
	RespondOK(c, gin.H{"verified": true, "email": email})
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
