package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/service"
)

const uploadField = "file"

// formUpload 读取 multipart 请求中的 "file" 字段
// 缺少文件时返回 nil Upload，由 service 报校验错误；返回的关闭函数永不为 nil
func formUpload(c *gin.Context) (*service.Upload, func(), error) {
	file, header, err := c.Request.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge), errors.Is(err, multipart.ErrMessageTooLarge):
			return nil, func() {}, service.ErrFileTooLarge.WithField(uploadField, "request body too large")
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return nil, func() {}, nil
		default:
			return nil, func() {}, service.ErrFileRequired.WithField(uploadField, "malformed multipart body")
		}
	}
	return &service.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	}, func() { file.Close() }, nil
}
