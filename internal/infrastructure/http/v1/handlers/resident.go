package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"osiedle/internal/core/apperror"
	appctx "osiedle/internal/core/context"
	"osiedle/internal/domain/residents"
)

// ResidentHandler serves the resident portal. Path-scoped routes are guarded
// by the apartment-access middleware; the repair submission checks the body
// id against the token claim here.
type ResidentHandler struct {
	BaseHandler
	service *residents.Service
}

// NewResidentHandler creates a new resident handler.
func NewResidentHandler(service *residents.Service) *ResidentHandler {
	return &ResidentHandler{service: service}
}

// MyData handles GET /resident/my-data/:apt.
func (h *ResidentHandler) MyData(c *gin.Context) {
	apt, ok := h.ParseIDParam(c, "apt")
	if !ok {
		return
	}
	data, err := h.service.MyData(c.Request.Context(), apt)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, data)
}

// Payments handles GET /resident/payments/:apt.
func (h *ResidentHandler) Payments(c *gin.Context) {
	apt, ok := h.ParseIDParam(c, "apt")
	if !ok {
		return
	}
	records, err := h.service.Payments(c.Request.Context(), apt)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, records)
}

// Repairs handles GET /resident/repairs/:apt.
func (h *ResidentHandler) Repairs(c *gin.Context) {
	apt, ok := h.ParseIDParam(c, "apt")
	if !ok {
		return
	}
	records, err := h.service.Repairs(c.Request.Context(), apt)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, records)
}

// Meetings handles GET /resident/meetings.
func (h *ResidentHandler) Meetings(c *gin.Context) {
	records, err := h.service.Meetings(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, records)
}

// Consumption handles GET /resident/consumption/:apt.
func (h *ResidentHandler) Consumption(c *gin.Context) {
	apt, ok := h.ParseIDParam(c, "apt")
	if !ok {
		return
	}
	records, err := h.service.Consumption(c.Request.Context(), apt)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, records)
}

type repairRequest struct {
	ApartmentID int64  `json:"id_mieszkania"`
	Description string `json:"opis" binding:"required"`
}

// SubmitRepair handles POST /resident/repairs.
func (h *ResidentHandler) SubmitRepair(c *gin.Context) {
	var req repairRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if !appctx.HasApartmentAccess(c.Request.Context(), req.ApartmentID) {
		h.Error(c, apperror.NewForbidden("brak dostępu do tego mieszkania"))
		return
	}

	result, err := h.service.SubmitRepair(c.Request.Context(), req.ApartmentID, req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"id_naprawy": result.RepairID,
		"message":    result.Message,
	})
}
