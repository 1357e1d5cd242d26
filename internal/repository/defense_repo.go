package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/model"
)

// DefenseFilter 答辩列表可选筛选
type DefenseFilter struct {
	Status model.DefenseStatus
	From   *time.Time
	To     *time.Time
}

// DefenseRepository 答辩数据访问接口
type DefenseRepository interface {
	Create(ctx context.Context, defense *model.Defense) error
	GetByID(ctx context.Context, id string) (*model.Defense, error)
	// LockByID 对答辩行加锁（SELECT ... FOR UPDATE），直到事务结束
	LockByID(ctx context.Context, id string) (*model.Defense, error)
	List(ctx context.Context, filter DefenseFilter, offset, limit int) ([]model.Defense, int64, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Defense, error)
	ListByJuryMember(ctx context.Context, professorID string) ([]model.Defense, error)
	Update(ctx context.Context, defense *model.Defense) error
	Delete(ctx context.Context, id string) error
	// CompleteElapsed 将时间早于 now 的 scheduled 答辩全部置为 completed，返回影响行数
	CompleteElapsed(ctx context.Context, now time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[model.DefenseStatus]int64, error)
}

type defenseRepo struct {
	db *gorm.DB
}

// NewDefenseRepo 创建 DefenseRepository 实例
func NewDefenseRepo(db *gorm.DB) DefenseRepository {
	return &defenseRepo{db: db}
}

func (r *defenseRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Student").Preload("Student.User").
		Preload("Report").
		Preload("Jury", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Jury.Professor").Preload("Jury.Professor.User")
}

func (r *defenseRepo) Create(ctx context.Context, defense *model.Defense) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(defense).Error
}

func (r *defenseRepo) GetByID(ctx context.Context, id string) (*model.Defense, error) {
	var defense model.Defense
	err := r.preloaded(ctx).
		Where("defense_id = ?", id).
		First(&defense).Error
	if err != nil {
		return nil, err
	}
	return &defense, nil
}

func (r *defenseRepo) LockByID(ctx context.Context, id string) (*model.Defense, error) {
	var defense model.Defense
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("defense_id = ?", id).
		First(&defense).Error
	if err != nil {
		return nil, err
	}
	return &defense, nil
}

func (r *defenseRepo) List(ctx context.Context, filter DefenseFilter, offset, limit int) ([]model.Defense, int64, error) {
	var defenses []model.Defense
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Defense{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		db = db.Where("scheduled_at >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("scheduled_at < ?", *filter.To)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := db.
		Preload("Student").Preload("Student.User").
		Preload("Report").
		Preload("Jury").Preload("Jury.Professor").Preload("Jury.Professor.User").
		Order("scheduled_at ASC")
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}
	if err := query.Find(&defenses).Error; err != nil {
		return nil, 0, err
	}

	return defenses, total, nil
}

func (r *defenseRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Defense, error) {
	var defenses []model.Defense
	err := r.preloaded(ctx).
		Where("student_id = ?", studentID).
		Order("scheduled_at DESC").
		Find(&defenses).Error
	return defenses, err
}

func (r *defenseRepo) ListByJuryMember(ctx context.Context, professorID string) ([]model.Defense, error) {
	var defenses []model.Defense
	err := r.preloaded(ctx).
		Where("defense_id IN (?)",
			r.db.Model(&model.JuryAssignment{}).Select("defense_id").Where("professor_id = ?", professorID),
		).
		Order("scheduled_at ASC").
		Find(&defenses).Error
	return defenses, err
}

func (r *defenseRepo) Update(ctx context.Context, defense *model.Defense) error {
	return r.db.WithContext(ctx).
		Model(&model.Defense{}).
		Where("defense_id = ?", defense.DefenseID).
		Updates(map[string]interface{}{
			"report_id":    defense.ReportID,
			"scheduled_at": defense.ScheduledAt,
			"salle":        defense.Salle,
			"status":       defense.Status,
			"updated_at":   gorm.Expr("NOW()"),
		}).Error
}

// Delete 物理删除答辩，评审席位级联删除
func (r *defenseRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("defense_id = ?", id).
		Delete(&model.Defense{}).Error
}

func (r *defenseRepo) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Defense{}).
		Where("status = ? AND scheduled_at < ?", model.DefenseStatusScheduled, now).
		Updates(map[string]interface{}{
			"status":     model.DefenseStatusCompleted,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *defenseRepo) CountByStatus(ctx context.Context) (map[model.DefenseStatus]int64, error) {
	var rows []struct {
		Status model.DefenseStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Defense{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[model.DefenseStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
