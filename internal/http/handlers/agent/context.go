package agent

import (
	"strconv"

	handlershared "github.com/pashumitra/internal/http/handlers/shared"
	"github.com/pashumitra/internal/http/response"

	"github.com/gin-gonic/gin"
)

func getAgentID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "agent_id")
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid id", nil)
		return 0, false
	}
	return uint(id), true
}

func queryPagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return handlershared.NormalizePagination(page, pageSize)
}
