package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/service"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/response"
)

// StatsHandler 管理员看板
type StatsHandler struct {
	statsSvc service.StatsService
	logger   *zap.Logger
}

func NewStatsHandler(statsSvc service.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc, logger: logger}
}

// Overview 统计概览 GET /api/admin/stats
func (h *StatsHandler) Overview(c *gin.Context) {
	stats, err := h.statsSvc.Overview(c.Request.Context())
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, stats)
}
