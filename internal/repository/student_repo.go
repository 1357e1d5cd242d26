package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/model"
)

// StudentFilter 学生列表可选筛选
type StudentFilter struct {
	Keyword   string
	Filiere   string
	StageType model.StageType
}

// StudentRepository 学生数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	GetByUserID(ctx context.Context, userID string) (*model.Student, error)
	GetByMatricule(ctx context.Context, matricule string) (*model.Student, error)
	// LockByID 对学生行加锁，直到事务结束
	LockByID(ctx context.Context, id string) (*model.Student, error)
	List(ctx context.Context, filter StudentFilter, offset, limit int) ([]model.Student, int64, error)
	ListByProfessor(ctx context.Context, professorID string) ([]model.Student, error)
	Update(ctx context.Context, student *model.Student) error
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("Encadrant").Preload("Encadrant.User").
		Preload("Rapporteur").Preload("Rapporteur.User")
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.preloaded(ctx).
		Where("student_id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByUserID(ctx context.Context, userID string) (*model.Student, error) {
	var student model.Student
	err := r.preloaded(ctx).
		Where("user_id = ?", userID).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByMatricule(ctx context.Context, matricule string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("matricule = ?", matricule).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) LockByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) List(ctx context.Context, filter StudentFilter, offset, limit int) ([]model.Student, int64, error) {
	var students []model.Student
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Student{}).
		Joins("JOIN users ON users.user_id = students.user_id")

	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Where("users.name ILIKE ? OR users.email ILIKE ? OR students.matricule ILIKE ?", like, like, like)
	}
	if filter.Filiere != "" {
		db = db.Where("students.filiere = ?", filter.Filiere)
	}
	if filter.StageType != "" {
		db = db.Where("students.stage_type = ?", filter.StageType)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.
		Preload("User").
		Preload("Encadrant").Preload("Encadrant.User").
		Preload("Rapporteur").Preload("Rapporteur.User").
		Offset(offset).Limit(limit).
		Order("users.name ASC").
		Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

func (r *studentRepo) ListByProfessor(ctx context.Context, professorID string) ([]model.Student, error) {
	var students []model.Student
	err := r.preloaded(ctx).
		Where("encadrant_id = ? OR rapporteur_id = ?", professorID, professorID).
		Order("created_at DESC").
		Find(&students).Error
	return students, err
}

func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("student_id = ?", student.StudentID).
		Updates(map[string]interface{}{
			"matricule":     student.Matricule,
			"filiere":       student.Filiere,
			"stage_type":    student.StageType,
			"phone":         student.Phone,
			"encadrant_id":  student.EncadrantID,
			"rapporteur_id": student.RapporteurID,
			"updated_at":    gorm.Expr("NOW()"),
		}).Error
}
