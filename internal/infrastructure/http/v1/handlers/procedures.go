package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"osiedle/internal/domain/fees"
)

// ProcedureHandler serves the fee procedures.
type ProcedureHandler struct {
	BaseHandler
	fees *fees.Service
}

// NewProcedureHandler creates a new procedure handler.
func NewProcedureHandler(fees *fees.Service) *ProcedureHandler {
	return &ProcedureHandler{fees: fees}
}

type addFeeRequest struct {
	ApartmentID int64   `json:"id_mieszkania"`
	ServiceID   int64   `json:"id_uslugi"`
	Consumption float64 `json:"zuzycie"`
}

// AddFee handles POST /procedures/add-fee.
func (h *ProcedureHandler) AddFee(c *gin.Context) {
	var req addFeeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.fees.AddFee(c.Request.Context(), req.ApartmentID, req.ServiceID, req.Consumption)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": result.Message})
}

type increaseFeesRequest struct {
	Percent float64 `json:"procent"`
}

// IncreaseFees handles POST /procedures/increase-fees.
func (h *ProcedureHandler) IncreaseFees(c *gin.Context) {
	var req increaseFeesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	message, err := h.fees.IncreaseFees(c.Request.Context(), req.Percent)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}
