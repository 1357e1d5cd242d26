package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/model"
)

// JuryRepository 评审席位数据访问接口
// 评审团只整体替换：同一事务内先 DeleteByDefense 再 BatchCreate
type JuryRepository interface {
	DeleteByDefense(ctx context.Context, defenseID string) error
	BatchCreate(ctx context.Context, assignments []model.JuryAssignment) error
	ListByDefense(ctx context.Context, defenseID string) ([]model.JuryAssignment, error)
}

type juryRepo struct {
	db *gorm.DB
}

// NewJuryRepo 创建 JuryRepository 实例
func NewJuryRepo(db *gorm.DB) JuryRepository {
	return &juryRepo{db: db}
}

func (r *juryRepo) DeleteByDefense(ctx context.Context, defenseID string) error {
	return r.db.WithContext(ctx).
		Where("defense_id = ?", defenseID).
		Delete(&model.JuryAssignment{}).Error
}

func (r *juryRepo) BatchCreate(ctx context.Context, assignments []model.JuryAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&assignments).Error
}

func (r *juryRepo) ListByDefense(ctx context.Context, defenseID string) ([]model.JuryAssignment, error) {
	var assignments []model.JuryAssignment
	err := r.db.WithContext(ctx).
		Preload("Professor").Preload("Professor.User").
		Where("defense_id = ?", defenseID).
		Order("created_at ASC").
		Find(&assignments).Error
	return assignments, err
}
