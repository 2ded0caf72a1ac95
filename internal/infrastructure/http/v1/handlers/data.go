package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"osiedle/internal/domain/members"
	"osiedle/internal/infrastructure/storage/postgres"
	"osiedle/internal/schema"
)

// idValueOf types the path id so the driver binds a numeric parameter
// against numeric key columns.
func idValueOf(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	return raw
}

// DataHandler serves the generic per-table CRUD. Mutations of the member
// table route through the members service so the change log stays complete.
type DataHandler struct {
	BaseHandler
	repo    *postgres.TableRepo
	members *members.Service
}

// NewDataHandler creates a new data handler.
func NewDataHandler(repo *postgres.TableRepo, members *members.Service) *DataHandler {
	return &DataHandler{repo: repo, members: members}
}

type recordEnvelope struct {
	Data *schema.Record `json:"data" binding:"required"`
}

// List handles GET /data/:table.
func (h *DataHandler) List(c *gin.Context) {
	records, err := h.repo.List(c.Request.Context(), c.Param("table"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, records)
}

// Search handles GET /data/:table/search?q=.
func (h *DataHandler) Search(c *gin.Context) {
	records, err := h.repo.Search(c.Request.Context(), c.Param("table"), c.Query("q"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, records)
}

// Insert handles POST /data/:table.
func (h *DataHandler) Insert(c *gin.Context) {
	var req recordEnvelope
	if !h.BindJSON(c, &req) {
		return
	}

	table := c.Param("table")
	var err error
	if table == "czlonek" {
		err = h.members.Create(c.Request.Context(), req.Data)
	} else {
		err = h.repo.Insert(c.Request.Context(), table, req.Data)
	}
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Rekord dodany")
}

// Update handles PUT /data/:table/:idField/:idValue.
func (h *DataHandler) Update(c *gin.Context) {
	var req recordEnvelope
	if !h.BindJSON(c, &req) {
		return
	}

	table := c.Param("table")
	idField := c.Param("idField")
	idValue := idValueOf(c.Param("idValue"))

	var err error
	if table == "czlonek" {
		err = h.members.Update(c.Request.Context(), idField, idValue, req.Data)
	} else {
		err = h.repo.Update(c.Request.Context(), table, idField, idValue, req.Data)
	}
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Rekord zaktualizowany")
}

// Delete handles DELETE /data/:table/:idField/:idValue.
func (h *DataHandler) Delete(c *gin.Context) {
	table := c.Param("table")
	idField := c.Param("idField")
	idValue := idValueOf(c.Param("idValue"))

	var err error
	if table == "czlonek" {
		err = h.members.Delete(c.Request.Context(), idField, idValue)
	} else {
		err = h.repo.Delete(c.Request.Context(), table, idField, idValue)
	}
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Rekord usunięty")
}
