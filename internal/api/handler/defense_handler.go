package handler

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/dto"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/service"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/response"
)

// DefenseHandler 答辩排期与评审团处理器
type DefenseHandler struct {
	defenseSvc service.DefenseService
	jurySvc    service.JuryService
	logger     *zap.Logger
}

// NewDefenseHandler 创建 DefenseHandler
func NewDefenseHandler(defenseSvc service.DefenseService, jurySvc service.JuryService, logger *zap.Logger) *DefenseHandler {
	return &DefenseHandler{defenseSvc: defenseSvc, jurySvc: jurySvc, logger: logger}
}

// Create 创建答辩 POST /api/admin/defenses
func (h *DefenseHandler) Create(c *gin.Context) {
	var req dto.CreateDefenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	defense, err := h.defenseSvc.Schedule(c.Request.Context(), &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.Created(c, defense)
}

// Get 答辩详情 GET /api/admin/defenses/:id
func (h *DefenseHandler) Get(c *gin.Context) {
	id, ok := pathID(c, service.ErrDefenseNotFound)
	if !ok {
		return
	}

	defense, err := h.defenseSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, defense)
}

// List 答辩列表 GET /api/admin/defenses 与 GET /api/admin/schedule
func (h *DefenseHandler) List(c *gin.Context) {
	var req dto.DefenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	defenses, total, err := h.defenseSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OKPage(c, defenses, total, req.GetPage(), req.GetPageSize())
}

// Update 修改答辩 PUT /api/admin/defenses/:id
func (h *DefenseHandler) Update(c *gin.Context) {
	id, ok := pathID(c, service.ErrDefenseNotFound)
	if !ok {
		return
	}

	var req dto.UpdateDefenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	defense, err := h.defenseSvc.Reschedule(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, defense)
}

// Delete 删除答辩 DELETE /api/admin/defenses/:id
func (h *DefenseHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, service.ErrDefenseNotFound)
	if !ok {
		return
	}

	if err := h.defenseSvc.Remove(c.Request.Context(), id); err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, nil)
}

// GetJury 查看评审团 GET /api/admin/defenses/:id/jury
func (h *DefenseHandler) GetJury(c *gin.Context) {
	id, ok := pathID(c, service.ErrDefenseNotFound)
	if !ok {
		return
	}

	jury, err := h.jurySvc.List(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, jury)
}

// AssignJury 整体替换评审团 PUT /api/admin/defenses/:id/jury
func (h *DefenseHandler) AssignJury(c *gin.Context) {
	id, ok := pathID(c, service.ErrDefenseNotFound)
	if !ok {
		return
	}

	var req dto.AssignJuryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	for i, m := range req.Members {
		if !isUUID(strings.TrimSpace(m.ProfessorID)) {
			handleError(c, h.logger, service.ErrJuryProfessorAbsent.WithField(
				fmt.Sprintf("members.%d.professor_id", i), "must be a valid id"))
			return
		}
	}

	defense, err := h.jurySvc.Assign(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, defense)
}

// MyDefense 我的答辩 GET /api/students/defense
//
// 尚未排期时 data 为 null
func (h *DefenseHandler) MyDefense(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	defense, err := h.defenseSvc.GetForStudent(c.Request.Context(), userID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, defense)
}

// JuryDefenses 我参与评审的答辩 GET /api/professors/jury-defenses
func (h *DefenseHandler) JuryDefenses(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	defenses, err := h.defenseSvc.ListForJuryMember(c.Request.Context(), userID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, defenses)
}
