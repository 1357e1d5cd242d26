package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/dto"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/service"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/response"
)

// ProfessorHandler 教师管理与教师名下学生
type ProfessorHandler struct {
	professorSvc service.ProfessorService
	logger       *zap.Logger
}

// NewProfessorHandler 创建 ProfessorHandler
func NewProfessorHandler(professorSvc service.ProfessorService, logger *zap.Logger) *ProfessorHandler {
	return &ProfessorHandler{professorSvc: professorSvc, logger: logger}
}

// Create 创建教师 POST /api/admin/professors
func (h *ProfessorHandler) Create(c *gin.Context) {
	var req dto.CreateProfessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.professorSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.Created(c, result)
}

// Get 教师详情 GET /api/admin/professors/:id
func (h *ProfessorHandler) Get(c *gin.Context) {
	id, ok := pathID(c, service.ErrProfessorNotFound)
	if !ok {
		return
	}

	professor, err := h.professorSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, professor)
}

// List 教师列表 GET /api/admin/professors
func (h *ProfessorHandler) List(c *gin.Context) {
	var req dto.ProfessorListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	professors, total, err := h.professorSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OKPage(c, professors, total, req.GetPage(), req.GetPageSize())
}

// Update 修改教师 PUT /api/admin/professors/:id
func (h *ProfessorHandler) Update(c *gin.Context) {
	id, ok := pathID(c, service.ErrProfessorNotFound)
	if !ok {
		return
	}

	var req dto.UpdateProfessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	professor, err := h.professorSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, professor)
}

// Delete 删除教师 DELETE /api/admin/professors/:id
func (h *ProfessorHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, service.ErrProfessorNotFound)
	if !ok {
		return
	}

	if err := h.professorSvc.Delete(c.Request.Context(), id); err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, nil)
}

// MyStudents 我指导或评阅的学生 GET /api/professors/students
func (h *ProfessorHandler) MyStudents(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	students, err := h.professorSvc.MyStudents(c.Request.Context(), userID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, students)
}
