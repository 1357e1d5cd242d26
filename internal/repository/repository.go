package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 聚合所有数据访问接口
type Repository struct {
	db *gorm.DB

	User           UserRepository
	Student        StudentRepository
	Professor      ProfessorRepository
	Report         ReportRepository
	Remark         RemarkRepository
	Defense        DefenseRepository
	Jury           JuryRepository
	ContactMessage ContactMessageRepository
}

// NewRepository 基于 db 创建聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:             db,
		User:           NewUserRepo(db),
		Student:        NewStudentRepo(db),
		Professor:      NewProfessorRepo(db),
		Report:         NewReportRepo(db),
		Remark:         NewRemarkRepo(db),
		Defense:        NewDefenseRepo(db),
		Jury:           NewJuryRepo(db),
		ContactMessage: NewContactMessageRepo(db),
	}
}

// BeginTx 开启事务；聚合没有数据库时（单测使用 mock）返回 nil tx
// 调用方在 Commit/Rollback 前判空，WithTx(nil) 返回 r 本身
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回运行在 tx 内的聚合
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// RunInTx 在事务中执行 fn：返回 nil 时提交，出错或 panic 时回滚
func (r *Repository) RunInTx(ctx context.Context, fn func(txRepo *Repository) error) (err error) {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(p)
		}
	}()

	if err := fn(r.WithTx(tx)); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if tx != nil {
		return tx.Commit().Error
	}
	return nil
}
