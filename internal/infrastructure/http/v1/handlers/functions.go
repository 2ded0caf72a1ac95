package handlers

import (
	"github.com/gin-gonic/gin"

	"osiedle/internal/domain/fees"
	"osiedle/internal/domain/reports"
)

// FunctionHandler serves the scalar lookup functions.
type FunctionHandler struct {
	BaseHandler
	reports *reports.Service
	fees    *fees.Service
}

// NewFunctionHandler creates a new function handler.
func NewFunctionHandler(reports *reports.Service, fees *fees.Service) *FunctionHandler {
	return &FunctionHandler{reports: reports, fees: fees}
}

// MembersOfBuilding handles GET /functions/members-of-building/:id.
func (h *FunctionHandler) MembersOfBuilding(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	members, err := h.reports.MembersOfBuilding(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"building_id": id, "members": members})
}

// ApartmentFees handles GET /functions/apartment-fees/:id.
func (h *FunctionHandler) ApartmentFees(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	total, err := h.fees.ApartmentTotal(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"apartment_id": id, "total": total})
}

// WorkerRepairs handles GET /functions/worker-repairs/:id.
func (h *FunctionHandler) WorkerRepairs(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	count, err := h.reports.WorkerRepairs(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"worker_id": id, "repairs_count": count})
}

// CountRecords handles GET /functions/count-records/:table.
func (h *FunctionHandler) CountRecords(c *gin.Context) {
	table := c.Param("table")
	count, err := h.reports.CountRecords(c.Request.Context(), table)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"table": table, "count": count})
}
