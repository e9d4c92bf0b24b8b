package handler

import (
	"net/http"

	"github.com/desslyhub/platform/internal/api/request"
	"github.com/desslyhub/platform/internal/api/response"
	"github.com/desslyhub/platform/internal/core"
	"github.com/desslyhub/platform/internal/model"
)

// Audit handles audit trail endpoints.
type Audit struct {
	audit *core.AuditService
}

// NewAudit creates a new Audit handler.
func NewAudit(audit *core.AuditService) *Audit {
	return &Audit{audit: audit}
}

// List returns audit records, newest first, with offset pagination.
func (h *Audit) List(w http.ResponseWriter, r *http.Request) {
	pg := request.ParsePagination(r)

	records, err := h.audit.List(r.Context(), pg.Offset, pg.Limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if records == nil {
		records = []model.AuditRecord{}
	}

	response.WriteJSON(w, http.StatusOK, records)
}
