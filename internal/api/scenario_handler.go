package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/red11scout/blueallygenaiwebsite/internal/services"
)

// ScenarioHandler serves the authenticated user's scenarios
type ScenarioHandler struct {
	scenarios services.ScenarioService
}

// NewScenarioHandler creates a new scenario handler
func NewScenarioHandler(scenarios services.ScenarioService) *ScenarioHandler {
	return &ScenarioHandler{scenarios: scenarios}
}

func (h *ScenarioHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.scenarios.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scenarios": list, "count": len(list)})
}

func (h *ScenarioHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.ScenarioRequest
	if !bindJSON(c, &req) {
		return
	}

	scenario, err := h.scenarios.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, scenario)
}

func (h *ScenarioHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	scenario, err := h.scenarios.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scenario)
}

func (h *ScenarioHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req services.ScenarioRequest
	if !bindJSON(c, &req) {
		return
	}

	scenario, err := h.scenarios.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scenario)
}

func (h *ScenarioHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.scenarios.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Recalculate reruns the engine over the scenario's stored assumptions
func (h *ScenarioHandler) Recalculate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	scenario, err := h.scenarios.Recalculate(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scenario)
}
