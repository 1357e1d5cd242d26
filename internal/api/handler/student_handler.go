package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/dto"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/service"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/response"
)

// StudentHandler 学生管理
type StudentHandler struct {
	studentSvc service.StudentService
	logger     *zap.Logger
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService, logger *zap.Logger) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc, logger: logger}
}

// Create 创建学生 POST /api/admin/students
func (h *StudentHandler) Create(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.studentSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.Created(c, result)
}

// Get 学生详情 GET /api/admin/students/:id
func (h *StudentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, service.ErrStudentNotFound)
	if !ok {
		return
	}

	student, err := h.studentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, student)
}

// List 学生列表 GET /api/admin/students
func (h *StudentHandler) List(c *gin.Context) {
	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	students, total, err := h.studentSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OKPage(c, students, total, req.GetPage(), req.GetPageSize())
}

// Update 修改学生 PUT /api/admin/students/:id
func (h *StudentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, service.ErrStudentNotFound)
	if !ok {
		return
	}

	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	student, err := h.studentSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, student)
}

// Delete 删除学生 DELETE /api/admin/students/:id
func (h *StudentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, service.ErrStudentNotFound)
	if !ok {
		return
	}

	if err := h.studentSvc.Delete(c.Request.Context(), id); err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, nil)
}

// Import 批量导入学生 POST /api/admin/students/import（multipart 字段 "file"，xlsx）
//
// 先逐行校验，合法行一次性创建，被拒绝的行附带表格行号返回
func (h *StudentHandler) Import(c *gin.Context) {
	upload, closeFile, err := formUpload(c)
	defer closeFile()
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	if upload == nil {
		handleError(c, h.logger, service.ErrImportFileMissing.WithField(uploadField, "required"))
		return
	}

	rows, err := h.studentSvc.ParseImportFile(upload.Content)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	result, err := h.studentSvc.ImportStudents(c.Request.Context(), rows)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}
