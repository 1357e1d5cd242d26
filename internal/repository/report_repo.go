package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/model"
	pkgerrors "github.com/SouhailBechchari/Emsoutenance-sub000/pkg/errors"
)

// ReportFilter 管理员报告列表可选筛选
type ReportFilter struct {
	StudentID string
	Status    model.ReportStatus
	Version   model.ReportVersion
}

// ReportRepository 报告数据访问接口
type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	GetByID(ctx context.Context, id string) (*model.Report, error)
	CountByStudentAndVersion(ctx context.Context, studentID string, version model.ReportVersion) (int64, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Report, error)
	ListByStudents(ctx context.Context, studentIDs []string) ([]model.Report, error)
	List(ctx context.Context, filter ReportFilter, offset, limit int) ([]model.Report, int64, error)
	// UpdateStatus 写入 status 与 validated_at，记录已被修改时返回 ErrOptimisticLock
	UpdateStatus(ctx context.Context, report *model.Report) error
	CountByStatus(ctx context.Context) (map[model.ReportStatus]int64, error)
}

type reportRepo struct {
	db *gorm.DB
}

// NewReportRepo 创建 ReportRepository 实例
func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) Create(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(report).Error
}

func (r *reportRepo) GetByID(ctx context.Context, id string) (*model.Report, error) {
	var report model.Report
	err := r.db.WithContext(ctx).
		Preload("Student").Preload("Student.User").
		Where("report_id = ?", id).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepo) CountByStudentAndVersion(ctx context.Context, studentID string, version model.ReportVersion) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("student_id = ? AND version = ?", studentID, version).
		Count(&count).Error
	return count, err
}

func (r *reportRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Report, error) {
	var reports []model.Report
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&reports).Error
	return reports, err
}

func (r *reportRepo) ListByStudents(ctx context.Context, studentIDs []string) ([]model.Report, error) {
	var reports []model.Report
	if len(studentIDs) == 0 {
		return reports, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Student").Preload("Student.User").
		Where("student_id IN ?", studentIDs).
		Order("submitted_at DESC").
		Find(&reports).Error
	return reports, err
}

func (r *reportRepo) List(ctx context.Context, filter ReportFilter, offset, limit int) ([]model.Report, int64, error) {
	var reports []model.Report
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Report{})
	if filter.StudentID != "" {
		db = db.Where("student_id = ?", filter.StudentID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Version != "" {
		db = db.Where("version = ?", filter.Version)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Student").Preload("Student.User").
		Offset(offset).Limit(limit).
		Order("submitted_at DESC").
		Find(&reports).Error; err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

func (r *reportRepo) UpdateStatus(ctx context.Context, report *model.Report) error {
	oldVersion := report.LockVersion
	result := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("report_id = ? AND lock_version = ?", report.ReportID, oldVersion).
		Updates(map[string]interface{}{
			"status":       report.Status,
			"validated_at": report.ValidatedAt,
			"lock_version": oldVersion + 1,
			"updated_at":   gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	report.LockVersion = oldVersion + 1
	return nil
}

func (r *reportRepo) CountByStatus(ctx context.Context) (map[model.ReportStatus]int64, error) {
	var rows []struct {
		Status model.ReportStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[model.ReportStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
