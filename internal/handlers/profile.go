package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eaas-dev/eaas-backend/internal/services"
	"github.com/eaas-dev/eaas-backend/internal/types"
)

const maxAvatarUploadBytes = 5 << 20

type ProfileHandler struct {
	profiles services.ProfileService
	avatars  services.AvatarService
}

func NewProfileHandler(profiles services.ProfileService, avatars services.AvatarService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, avatars: avatars}
}

func (ph *ProfileHandler) Get(c *gin.Context) {
	user := currentUser(c)
	profile := ph.profiles.Get(c.Request.Context(), user.ID)
	if profile == nil {
		profile = &types.Profile{UserID: user.ID}
	}
	RespondOK(c, gin.H{"user": user, "profile": profile})
}

func (ph *ProfileHandler) Save(c *gin.Context) {
	user := currentUser(c)

	var update types.Profile
	if err := c.ShouldBindJSON(&update); err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}
	profile, err := ph.profiles.Save(c.Request.Context(), user.ID, update)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, err)
		return
	}
	RespondOK(c, profile)
}

// Avatar regenerates the initials avatar, or processes an uploaded image
// when the request carries a "file" form part.
func (ph *ProfileHandler) Avatar(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()

	var avatarURL string
	if fileHeader, err := c.FormFile("file"); err == nil {
		if fileHeader.Size > maxAvatarUploadBytes {
			RespondMessage(c, http.StatusBadRequest, "avatar image exceeds the 5MB limit")
			return
		}
		f, openErr := fileHeader.Open()
		if openErr != nil {
			RespondError(c, http.StatusBadRequest, openErr)
			return
		}
		raw, readErr := io.ReadAll(io.LimitReader(f, maxAvatarUploadBytes))
		_ = f.Close()
		if readErr != nil {
			RespondError(c, http.StatusBadRequest, readErr)
			return
		}
		avatarURL, err = ph.avatars.CreateAndUploadFromImage(ctx, user.ID, raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, err)
			return
		}
	} else {
		name, _ := user.Metadata["name"].(string)
		url, genErr := ph.avatars.CreateAndUpload(ctx, user.ID, name)
		if genErr != nil {
			RespondError(c, http.StatusInternalServerError, genErr)
			return
		}
		avatarURL = url
	}

	profile, err := ph.profiles.Save(ctx, user.ID, types.Profile{AvatarURL: avatarURL})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, err)
		return
	}
	RespondOK(c, gin.H{"avatar_url": avatarURL, "profile": profile})
}
