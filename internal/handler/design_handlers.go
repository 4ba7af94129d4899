package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"greenbuilder/internal/intake"
	"greenbuilder/internal/models"
)

// listDesigns returns the sidebar snapshot, newest first.
func (h *DesignHandler) listDesigns(c *gin.Context) {
	summaries, err := h.repo.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"designs": summaries})
}

// submitDesign consumes the draft and dispatches it to generation. Ответ
// приходит синхронно: клиент держит модалку "Creating design" закрытой по
// завершении запроса.
func (h *DesignHandler) submitDesign(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	design, err := ctrl.SubmitDesign(c.Request.Context())
	if err != nil {
		submissionsTotal.WithLabelValues("failure").Inc()
		handleServiceError(c, err, h.logger)
		return
	}
	submissionsTotal.WithLabelValues("success").Inc()

	h.feed.Refresh()
	c.JSON(http.StatusCreated, design)
}

func (h *DesignHandler) setDraftField(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	field := intake.TextField(c.Param("field"))
	if !knownTextField(field) {
		c.JSON(http.StatusBadRequest, APIError{Message: "unknown draft field"})
		return
	}

	var req setFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "invalid request body"})
		return
	}

	if err := ctrl.SetField(field, req.Value); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, toViewResponse(ctrl.View()))
}

func (h *DesignHandler) adjustRoom(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	kind := models.RoomKind(c.Param("kind"))
	if !knownRoomKind(kind) {
		c.JSON(http.StatusBadRequest, APIError{Message: "unknown room kind"})
		return
	}

	var req adjustRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "delta is required"})
		return
	}

	if err := ctrl.AdjustRoom(kind, req.Delta); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, toViewResponse(ctrl.View()))
}

func (h *DesignHandler) toggleWindow(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	side := models.WindowSide(c.Param("side"))
	if !knownWindowSide(side) {
		c.JSON(http.StatusBadRequest, APIError{Message: "unknown window side"})
		return
	}

	if err := ctrl.ToggleWindow(side); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, toViewResponse(ctrl.View()))
}

// startNewDesign clears the current view. A dirty form without confirmed=true
// comes back as 409 confirmation_required; клиент показывает диалог и
// повторяет запрос с подтверждением.
func (h *DesignHandler) startNewDesign(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	var req startNewDesignRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, APIError{Message: "invalid request body"})
			return
		}
	}

	if err := ctrl.StartNewDesign(req.Confirmed); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, toViewResponse(ctrl.View()))
}

func (h *DesignHandler) selectDesign(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	if _, err := ctrl.SelectDesign(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, toViewResponse(ctrl.View()))
}

func (h *DesignHandler) view(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toViewResponse(ctrl.View()))
}

func (h *DesignHandler) selectConfiguration(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	var req selectConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "index is required"})
		return
	}

	active, err := ctrl.SelectConfiguration(req.Index)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, selectConfigurationResponse{ActiveIndex: active})
}

func knownTextField(field intake.TextField) bool {
	switch field {
	case intake.FieldDesignName, intake.FieldLength, intake.FieldWidth, intake.FieldSpecialRequest:
		return true
	}
	return false
}

func knownRoomKind(kind models.RoomKind) bool {
	for _, known := range models.RoomKinds {
		if kind == known {
			return true
		}
	}
	return false
}

func knownWindowSide(side models.WindowSide) bool {
	for _, known := range models.WindowSides {
		if side == known {
			return true
		}
	}
	return false
}
