package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/dto"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/model"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/repository"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/clock"
	pkgerrors "github.com/SouhailBechchari/Emsoutenance-sub000/pkg/errors"
)

var ErrContactMessageNotFound = pkgerrors.NotFound(17001, "contact message not found")

// ContactService 联系留言业务接口
type ContactService interface {
	Submit(ctx context.Context, req *dto.ContactRequest) (*dto.ContactMessageResponse, error)
	List(ctx context.Context, req *dto.ContactListRequest) ([]dto.ContactMessageResponse, int64, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	UnreadCount(ctx context.Context) (int64, error)
}

type contactService struct {
	repo   *repository.Repository
	clock  clock.Clock
	logger *zap.Logger
}

// NewContactService 创建 ContactService 实例
func NewContactService(repo *repository.Repository, clk clock.Clock, logger *zap.Logger) ContactService {
	return &contactService{repo: repo, clock: clk, logger: logger}
}

func (s *contactService) Submit(ctx context.Context, req *dto.ContactRequest) (*dto.ContactMessageResponse, error) {
	msg := &model.ContactMessage{
		Name:      strings.TrimSpace(req.Name),
		Email:     normalizeEmail(req.Email),
		Subject:   strings.TrimSpace(req.Subject),
		Message:   strings.TrimSpace(req.Message),
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.ContactMessage.Create(ctx, msg); err != nil {
		s.logger.Error("store contact message failed", zap.Error(err))
		return nil, err
	}
	resp := toContactMessageResponse(msg)
	return &resp, nil
}

func (s *contactService) List(ctx context.Context, req *dto.ContactListRequest) ([]dto.ContactMessageResponse, int64, error) {
	msgs, total, err := s.repo.ContactMessage.List(ctx, req.UnreadOnly, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list contact messages failed", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.ContactMessageResponse, 0, len(msgs))
	for i := range msgs {
		result = append(result, toContactMessageResponse(&msgs[i]))
	}
	return result, total, nil
}

func (s *contactService) MarkRead(ctx context.Context, id string) error {
	if err := s.exists(ctx, id); err != nil {
		return err
	}
	return s.repo.ContactMessage.MarkRead(ctx, id)
}

func (s *contactService) Delete(ctx context.Context, id string) error {
	if err := s.exists(ctx, id); err != nil {
		return err
	}
	return s.repo.ContactMessage.Delete(ctx, id)
}

func (s *contactService) UnreadCount(ctx context.Context) (int64, error) {
	return s.repo.ContactMessage.CountUnread(ctx)
}

func (s *contactService) exists(ctx context.Context, id string) error {
	if _, err := s.repo.ContactMessage.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContactMessageNotFound
		}
		return err
	}
	return nil
}

func toContactMessageResponse(m *model.ContactMessage) dto.ContactMessageResponse {
	return dto.ContactMessageResponse{
		ID:        m.ContactMessageID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}
