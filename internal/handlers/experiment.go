package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eaas-dev/eaas-backend/internal/services"
	"github.com/eaas-dev/eaas-backend/internal/types"
)

type ExperimentHandler struct {
	experiments services.ExperimentService
}

func NewExperimentHandler(experiments services.ExperimentService) *ExperimentHandler {
	return &ExperimentHandler{experiments: experiments}
}

func (eh *ExperimentHandler) List(c *gin.Context) {
	user := currentUser(c)
	RespondOK(c, eh.experiments.List(c.Request.Context(), user.ID))
}

func (eh *ExperimentHandler) Create(c *gin.Context) {
	user := currentUser(c)

	var input types.CreateExperimentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := validateExperimentInput(input); err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}
	RespondCreated(c, eh.experiments.Create(c.Request.Context(), user.ID, input))
}

func (eh *ExperimentHandler) Get(c *gin.Context) {
	user := currentUser(c)
	exp := eh.experiments.Get(c.Request.Context(), user.ID, c.Param("id"))
	if exp == nil {
		RespondError(c, http.StatusNotFound, fmt.Errorf("experiment not found"))
		return
	}
	RespondOK(c, exp)
}

func (eh *ExperimentHandler) Update(c *gin.Context) {
	user := currentUser(c)

	var update types.ExperimentUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}
	probe := types.CreateExperimentInput{Name: "unchanged"}
	if update.Name != nil {
		probe.Name = *update.Name
	}
	if update.Description != nil {
		probe.Description = *update.Description
	}
	if err := validateExperimentInput(probe); err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}

	exp := eh.experiments.Update(c.Request.Context(), user.ID, c.Param("id"), update)
	if exp == nil {
		RespondError(c, http.StatusNotFound, fmt.Errorf("experiment not found"))
		return
	}
	RespondOK(c, exp)
}

func (eh *ExperimentHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	if !eh.experiments.Delete(c.Request.Context(), user.ID, c.Param("id")) {
		RespondError(c, http.StatusNotFound, fmt.Errorf("experiment not found"))
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

// Run records an evaluation run against the experiment. There is no engine
// behind it; only the counter moves.
func (eh *ExperimentHandler) Run(c *gin.Context) {
	user := currentUser(c)
	id := c.Param("id")

	if eh.experiments.Get(c.Request.Context(), user.ID, id) == nil {
		RespondError(c, http.StatusNotFound, fmt.Errorf("experiment not found"))
		return
	}
	eh.experiments.IncrementRunCount(c.Request.Context(), user.ID, id)
	RespondOK(c, eh.experiments.Get(c.Request.Context(), user.ID, id))
}
