package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/model"
)

// ContactMessageRepository 留言数据访问接口
type ContactMessageRepository interface {
	Create(ctx context.Context, msg *model.ContactMessage) error
	GetByID(ctx context.Context, id string) (*model.ContactMessage, error)
	List(ctx context.Context, unreadOnly bool, offset, limit int) ([]model.ContactMessage, int64, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	CountUnread(ctx context.Context) (int64, error)
}

type contactMessageRepo struct {
	db *gorm.DB
}

// NewContactMessageRepo 创建 ContactMessageRepository 实例
func NewContactMessageRepo(db *gorm.DB) ContactMessageRepository {
	return &contactMessageRepo{db: db}
}

func (r *contactMessageRepo) Create(ctx context.Context, msg *model.ContactMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *contactMessageRepo) GetByID(ctx context.Context, id string) (*model.ContactMessage, error) {
	var msg model.ContactMessage
	err := r.db.WithContext(ctx).
		Where("contact_message_id = ?", id).
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *contactMessageRepo) List(ctx context.Context, unreadOnly bool, offset, limit int) ([]model.ContactMessage, int64, error) {
	var msgs []model.ContactMessage
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ContactMessage{})
	if unreadOnly {
		db = db.Where("is_read = ?", false)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&msgs).Error; err != nil {
		return nil, 0, err
	}

	return msgs, total, nil
}

func (r *contactMessageRepo) MarkRead(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.ContactMessage{}).
		Where("contact_message_id = ?", id).
		Update("is_read", true).Error
}

func (r *contactMessageRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("contact_message_id = ?", id).
		Delete(&model.ContactMessage{}).Error
}

func (r *contactMessageRepo) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ContactMessage{}).
		Where("is_read = ?", false).
		Count(&count).Error
	return count, err
}
