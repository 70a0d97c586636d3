package admin

import (
	"strconv"
	"time"

	"github.com/pashumitra/internal/http/response"
	"github.com/pashumitra/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs 获取审计日志
func (h *Handler) ListAuditLogs(c *gin.Context) {
	page, pageSize := queryPagination(c)
	filter := repository.AuditLogListFilter{
		Page:       page,
		PageSize:   pageSize,
		ActorType:  c.Query("actor_type"),
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
	}
	if raw := c.Query("actor_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.ActorID = uint(id)
		}
	}
	if raw := c.Query("entity_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.EntityID = uint(id)
		}
	}
	if raw := c.Query("created_from"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedFrom = &ts
		}
	}
	if raw := c.Query("created_to"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedTo = &ts
		}
	}

	entries, total, err := h.AuditService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "audit fetch failed", err)
		return
	}
	response.SuccessWithPage(c, entries, response.NewPagination(page, pageSize, total))
}
