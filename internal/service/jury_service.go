package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/dto"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/model"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/repository"
	pkgerrors "github.com/SouhailBechchari/Emsoutenance-sub000/pkg/errors"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/storage"
)

// MinJurySize 评审团最少人数
const MinJurySize = 2

var (
	ErrJuryTooSmall        = pkgerrors.Validation(16001, "jury needs at least 2 members")
	ErrInvalidJuryRole     = pkgerrors.Validation(16002, "invalid jury role")
	ErrJuryProfessorAbsent = pkgerrors.Validation(16003, "unknown professor in jury")
)

// JuryService 评审团业务接口
type JuryService interface {
	// Assign 整体替换评审团，全部成员校验通过才写入
	Assign(ctx context.Context, defenseID string, req *dto.AssignJuryRequest) (*dto.DefenseResponse, error)
	List(ctx context.Context, defenseID string) ([]dto.JuryMemberResponse, error)
}

type juryService struct {
	repo   *repository.Repository
	store  storage.Store
	logger *zap.Logger
}

// NewJuryService 创建 JuryService 实例
func NewJuryService(repo *repository.Repository, store storage.Store, logger *zap.Logger) JuryService {
	return &juryService{repo: repo, store: store, logger: logger}
}

func (s *juryService) Assign(ctx context.Context, defenseID string, req *dto.AssignJuryRequest) (*dto.DefenseResponse, error) {
	if len(req.Members) < MinJurySize {
		return nil, ErrJuryTooSmall.WithField("members", fmt.Sprintf("at least %d required", MinJurySize))
	}

	assignments := make([]model.JuryAssignment, 0, len(req.Members))
	unique := make(map[string]struct{}, len(req.Members))
	ids := make([]string, 0, len(req.Members))
	roleCount := make(map[model.JuryRole]int, 4)
	for i, m := range req.Members {
		professorID := strings.TrimSpace(m.ProfessorID)
		if professorID == "" {
			return nil, ErrJuryProfessorAbsent.WithField(fmt.Sprintf("members.%d.professor_id", i), "required")
		}
		role := model.JuryRole(m.Role)
		if !role.Valid() {
			return nil, ErrInvalidJuryRole.WithField(fmt.Sprintf("members.%d.role", i),
				"must be encadrant, rapporteur, examinateur or president")
		}
		roleCount[role]++
		if _, seen := unique[professorID]; !seen {
			unique[professorID] = struct{}{}
			ids = append(ids, professorID)
		}
		assignments = append(assignments, model.JuryAssignment{
			DefenseID:   defenseID,
			ProfessorID: professorID,
			Role:        role,
		})
	}

	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		// 锁住答辩行，串行化同一评审团的并发替换
		if _, err := tx.Defense.LockByID(ctx, defenseID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDefenseNotFound
			}
			return err
		}

		found, err := tx.Professor.CountExisting(ctx, ids)
		if err != nil {
			return err
		}
		if found != int64(len(ids)) {
			return ErrJuryProfessorAbsent.WithField("members", "every professor_id must reference an existing professor")
		}

		if err := tx.Jury.DeleteByDefense(ctx, defenseID); err != nil {
			return err
		}
		return tx.Jury.BatchCreate(ctx, assignments)
	})
	if err != nil {
		if pkgerrors.KindOf(err) == pkgerrors.KindInternal {
			s.logger.Error("assign jury failed", zap.String("defense_id", defenseID), zap.Error(err))
		}
		return nil, err
	}

	for role, n := range roleCount {
		if n > 1 {
			s.logger.Warn("jury role held by several professors",
				zap.String("defense_id", defenseID),
				zap.String("role", string(role)),
				zap.Int("count", n),
			)
		}
	}
	s.logger.Info("jury assigned", zap.String("defense_id", defenseID), zap.Int("members", len(assignments)))

	defense, err := s.repo.Defense.GetByID(ctx, defenseID)
	if err != nil {
		return nil, err
	}
	resp := toDefenseResponse(defense, s.store)
	return &resp, nil
}

func (s *juryService) List(ctx context.Context, defenseID string) ([]dto.JuryMemberResponse, error) {
	if _, err := s.repo.Defense.GetByID(ctx, defenseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDefenseNotFound
		}
		return nil, err
	}

	seats, err := s.repo.Jury.ListByDefense(ctx, defenseID)
	if err != nil {
		s.logger.Error("list jury failed", zap.String("defense_id", defenseID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.JuryMemberResponse, 0, len(seats))
	for i := range seats {
		result = append(result, toJuryMemberResponse(&seats[i]))
	}
	return result, nil
}
