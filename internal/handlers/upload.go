package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eaas-dev/eaas-backend/internal/services"
)

type UploadHandler struct {
	uploads services.UploadService
}

func NewUploadHandler(uploads services.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

func (uh *UploadHandler) UploadDataset(c *gin.Context) {
	user := currentUser(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, fmt.Errorf("dataset file required"))
		return
	}
	if fileHeader.Size > services.MaxDatasetSize {
		RespondMessage(c, http.StatusBadRequest, fmt.Sprintf("file exceeds the %dMB limit", services.MaxDatasetSize>>20))
		return
	}
	if err := services.ValidateDatasetFilename(fileHeader.Filename); err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}
	defer f.Close()

	file, err := uh.uploads.Store(c.Request.Context(), user.ID, fileHeader.Filename, fileHeader.Size, f)
	if err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}
	RespondCreated(c, file)
}

func (uh *UploadHandler) List(c *gin.Context) {
	user := currentUser(c)
	RespondOK(c, uh.uploads.List(c.Request.Context(), user.ID))
}

func (uh *UploadHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	ok, err := uh.uploads.Delete(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		RespondError(c, http.StatusNotFound, fmt.Errorf("upload not found"))
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
