package handlers

import (
	"github.com/gin-gonic/gin"

	"osiedle/internal/domain/members"
)

// SystemHandler serves the maintenance endpoints.
type SystemHandler struct {
	BaseHandler
	members *members.Service
}

// NewSystemHandler creates a new system handler.
func NewSystemHandler(members *members.Service) *SystemHandler {
	return &SystemHandler{members: members}
}

// AuditLogs handles GET /system/audit-logs.
func (h *SystemHandler) AuditLogs(c *gin.Context) {
	entries, err := h.members.AuditLogs(c.Request.Context(), 100)
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"id_logu":     e.ID.String(),
			"id_czlonka":  e.MemberID,
			"operacja":    string(e.Action),
			"stare_dane":  rawOrNil(e.OldState),
			"nowe_dane":   rawOrNil(e.NewState),
			"uzytkownik":  e.ChangedBy,
			"data_zmiany": e.ChangedAt.Format("2006-01-02 15:04:05"),
		})
	}
	h.OK(c, out)
}

func rawOrNil(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
