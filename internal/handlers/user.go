package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eaas-dev/eaas-backend/internal/services"
	"github.com/eaas-dev/eaas-backend/internal/types"
)

// UserHandler covers the account-level operations: full data export and
// account deletion.
type UserHandler struct {
	sessions    services.SessionService
	profiles    services.ProfileService
	experiments services.ExperimentService
	rubrics     services.RubricsService
	uploads     services.UploadService
}

func NewUserHandler(
	sessions services.SessionService,
	profiles services.ProfileService,
	experiments services.ExperimentService,
	rubrics services.RubricsService,
	uploads services.UploadService,
) *UserHandler {
	return &UserHandler{
		sessions:    sessions,
		profiles:    profiles,
		experiments: experiments,
		rubrics:     rubrics,
		uploads:     uploads,
	}
}

func (uh *UserHandler) ExportData(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()

	experimentsJSON, err := uh.experiments.Export(ctx, user.ID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, err)
		return
	}
	rubricsJSON, err := uh.rubrics.Export(ctx, user.ID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, err)
		return
	}

	export := gin.H{
		"user":        user,
		"profile":     uh.profiles.Get(ctx, user.ID),
		"experiments": json.RawMessage(experimentsJSON),
		"rubrics":     json.RawMessage(rubricsJSON),
		"uploads":     uh.uploads.List(ctx, user.ID),
		"exported_at": types.Timestamp(time.Now()),
	}
	c.Header("Content-Disposition", `attachment; filename="account-export.json"`)
	RespondOK(c, export)
}

// DeleteAccount wipes the user's registries and uploads, then signs out.
// The identity record itself follows the session regime's rules.
func (uh *UserHandler) DeleteAccount(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()

	for _, f := range uh.uploads.List(ctx, user.ID) {
		if _, err := uh.uploads.Delete(ctx, user.ID, f.ID); err != nil {
			RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}
	if err := uh.experiments.ClearAll(ctx, user.ID); err != nil {
		RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := uh.rubrics.ClearAll(ctx, user.ID); err != nil {
		RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := uh.sessions.SignOut(ctx, bearerToken(c)); err != nil {
		RespondError(c, http.StatusInternalServerError, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
