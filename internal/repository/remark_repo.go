package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/model"
)

// RemarkRepository 批注数据访问接口（批注只增不改）
type RemarkRepository interface {
	Create(ctx context.Context, remark *model.Remark) error
	ListByReport(ctx context.Context, reportID string) ([]model.Remark, error)
}

type remarkRepo struct {
	db *gorm.DB
}

// NewRemarkRepo 创建 RemarkRepository 实例
func NewRemarkRepo(db *gorm.DB) RemarkRepository {
	return &remarkRepo{db: db}
}

func (r *remarkRepo) Create(ctx context.Context, remark *model.Remark) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(remark).Error
}

func (r *remarkRepo) ListByReport(ctx context.Context, reportID string) ([]model.Remark, error) {
	var remarks []model.Remark
	err := r.db.WithContext(ctx).
		Preload("Professor").Preload("Professor.User").
		Where("report_id = ?", reportID).
		Order("created_at ASC").
		Find(&remarks).Error
	return remarks, err
}
