package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/dto"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/service"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/response"
)

// ContactHandler 联系表单与管理员留言箱
type ContactHandler struct {
	contactSvc service.ContactService
	logger     *zap.Logger
}

// NewContactHandler 创建 ContactHandler
func NewContactHandler(contactSvc service.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{contactSvc: contactSvc, logger: logger}
}

// Submit 提交留言 POST /api/contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	msg, err := h.contactSvc.Submit(c.Request.Context(), &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.Created(c, msg)
}

// List 留言列表 GET /api/admin/contact-messages
func (h *ContactHandler) List(c *gin.Context) {
	var req dto.ContactListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	msgs, total, err := h.contactSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OKPage(c, msgs, total, req.GetPage(), req.GetPageSize())
}

// UnreadCount 未读留言数 GET /api/admin/contact-messages/unread-count
func (h *ContactHandler) UnreadCount(c *gin.Context) {
	n, err := h.contactSvc.UnreadCount(c.Request.Context())
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"count": n})
}

// MarkRead 标记已读 PUT /api/admin/contact-messages/:id/read
func (h *ContactHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c, service.ErrContactMessageNotFound)
	if !ok {
		return
	}

	if err := h.contactSvc.MarkRead(c.Request.Context(), id); err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, nil)
}

// Delete 删除留言 DELETE /api/admin/contact-messages/:id
func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, service.ErrContactMessageNotFound)
	if !ok {
		return
	}

	if err := h.contactSvc.Delete(c.Request.Context(), id); err != nil {
		handleError(c, h.logger, err)
		return
	}
	response.OK(c, nil)
}
