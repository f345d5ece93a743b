package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eaas-dev/eaas-backend/internal/services"
	"github.com/eaas-dev/eaas-backend/internal/types"
)

type RubricHandler struct {
	rubrics services.RubricsService
}

func NewRubricHandler(rubrics services.RubricsService) *RubricHandler {
	return &RubricHandler{rubrics: rubrics}
}

func (rh *RubricHandler) List(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()

	if category := c.Query("category"); category != "" {
		RespondOK(c, rh.rubrics.GetByCategory(ctx, user.ID, types.RubricCategory(category)))
		return
	}
	if c.Query("active") == "true" {
		RespondOK(c, rh.rubrics.GetActive(ctx, user.ID))
		return
	}
	RespondOK(c, rh.rubrics.List(ctx, user.ID))
}

func (rh *RubricHandler) Templates(c *gin.Context) {
	user := currentUser(c)
	RespondOK(c, rh.rubrics.GetTemplates(c.Request.Context(), user.ID))
}

func (rh *RubricHandler) Create(c *gin.Context) {
	user := currentUser(c)

	var input types.CreateRubricInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := validateRubricInput(input); err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}
	if input.CreatedBy == "" {
		input.CreatedBy = user.ID
	}
	RespondCreated(c, rh.rubrics.Create(c.Request.Context(), user.ID, input))
}

func (rh *RubricHandler) Get(c *gin.Context) {
	user := currentUser(c)
	rubric := rh.rubrics.Get(c.Request.Context(), user.ID, c.Param("id"))
	if rubric == nil {
		RespondError(c, http.StatusNotFound, fmt.Errorf("rubric not found"))
		return
	}
	RespondOK(c, rubric)
}

// Update applies a partial update. Weight balance is a form-level rule, so a
// partial criteria update is stored as sent.
func (rh *RubricHandler) Update(c *gin.Context) {
	user := currentUser(c)

	var update types.RubricUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}
	rubric := rh.rubrics.Update(c.Request.Context(), user.ID, c.Param("id"), update)
	if rubric == nil {
		RespondError(c, http.StatusNotFound, fmt.Errorf("rubric not found"))
		return
	}
	RespondOK(c, rubric)
}

func (rh *RubricHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	if !rh.rubrics.Delete(c.Request.Context(), user.ID, c.Param("id")) {
		RespondError(c, http.StatusNotFound, fmt.Errorf("rubric not found"))
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (rh *RubricHandler) Clone(c *gin.Context) {
	user := currentUser(c)

	var body struct {
		Name string `json:"name"`
	}
	_ = c.ShouldBindJSON(&body)

	clone := rh.rubrics.Clone(c.Request.Context(), user.ID, c.Param("id"), body.Name)
	if clone == nil {
		RespondError(c, http.StatusNotFound, fmt.Errorf("rubric not found"))
		return
	}
	RespondCreated(c, clone)
}
