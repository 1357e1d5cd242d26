package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/model"
)

// ProfessorRepository 教师数据访问接口
type ProfessorRepository interface {
	Create(ctx context.Context, professor *model.Professor) error
	GetByID(ctx context.Context, id string) (*model.Professor, error)
	GetByUserID(ctx context.Context, userID string) (*model.Professor, error)
	List(ctx context.Context, keyword string, offset, limit int) ([]model.Professor, int64, error)
	// CountExisting 返回 ids 中实际存在的教师数量
	CountExisting(ctx context.Context, ids []string) (int64, error)
	Update(ctx context.Context, professor *model.Professor) error
}

type professorRepo struct {
	db *gorm.DB
}

// NewProfessorRepo 创建 ProfessorRepository 实例
func NewProfessorRepo(db *gorm.DB) ProfessorRepository {
	return &professorRepo{db: db}
}

func (r *professorRepo) Create(ctx context.Context, professor *model.Professor) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(professor).Error
}

func (r *professorRepo) GetByID(ctx context.Context, id string) (*model.Professor, error) {
	var professor model.Professor
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("professor_id = ?", id).
		First(&professor).Error
	if err != nil {
		return nil, err
	}
	return &professor, nil
}

func (r *professorRepo) GetByUserID(ctx context.Context, userID string) (*model.Professor, error) {
	var professor model.Professor
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		First(&professor).Error
	if err != nil {
		return nil, err
	}
	return &professor, nil
}

func (r *professorRepo) List(ctx context.Context, keyword string, offset, limit int) ([]model.Professor, int64, error) {
	var professors []model.Professor
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Professor{}).
		Joins("JOIN users ON users.user_id = professors.user_id")
	if keyword != "" {
		like := "%" + keyword + "%"
		db = db.Where("users.name ILIKE ? OR users.email ILIKE ? OR professors.specialite ILIKE ?", like, like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("User").
		Offset(offset).Limit(limit).
		Order("users.name ASC").
		Find(&professors).Error; err != nil {
		return nil, 0, err
	}

	return professors, total, nil
}

func (r *professorRepo) CountExisting(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Professor{}).
		Where("professor_id IN ?", ids).
		Count(&count).Error
	return count, err
}

func (r *professorRepo) Update(ctx context.Context, professor *model.Professor) error {
	return r.db.WithContext(ctx).
		Model(&model.Professor{}).
		Where("professor_id = ?", professor.ProfessorID).
		Updates(map[string]interface{}{
			"specialite": professor.Specialite,
			"phone":      professor.Phone,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}
