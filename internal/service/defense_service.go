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
	pkgerrors "github.com/SouhailBechchari/Emsoutenance-sub000/pkg/errors"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/storage"
)

var (
	ErrReportStudentMismatch = pkgerrors.Validation(15002, "report/student mismatch")
	ErrInvalidDefenseStatus  = pkgerrors.Validation(15003, "invalid defense status")
	ErrSalleRequired         = pkgerrors.Validation(15004, "salle is required")
)

// DefenseService 答辩排期业务接口
type DefenseService interface {
	Schedule(ctx context.Context, req *dto.CreateDefenseRequest) (*dto.DefenseResponse, error)
	Reschedule(ctx context.Context, id string, req *dto.UpdateDefenseRequest) (*dto.DefenseResponse, error)
	Remove(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*dto.DefenseResponse, error)
	List(ctx context.Context, req *dto.DefenseListRequest) ([]dto.DefenseResponse, int64, error)
	// GetForStudent 当前学生最近的答辩，未排期时返回 nil
	GetForStudent(ctx context.Context, userID string) (*dto.DefenseResponse, error)
	ListForJuryMember(ctx context.Context, userID string) ([]dto.JuryDefenseResponse, error)
}

type defenseService struct {
	repo      *repository.Repository
	lifecycle *Lifecycle
	store     storage.Store
	logger    *zap.Logger
}

// NewDefenseService 创建 DefenseService 实例
func NewDefenseService(repo *repository.Repository, lifecycle *Lifecycle, store storage.Store, logger *zap.Logger) DefenseService {
	return &defenseService{
		repo:      repo,
		lifecycle: lifecycle,
		store:     store,
		logger:    logger,
	}
}

func (s *defenseService) Schedule(ctx context.Context, req *dto.CreateDefenseRequest) (*dto.DefenseResponse, error) {
	salle := strings.TrimSpace(req.Salle)
	if salle == "" {
		return nil, ErrSalleRequired.WithField("salle", "required")
	}

	var defenseID string
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		if _, err := tx.Student.GetByID(ctx, req.StudentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return err
		}

		if req.ReportID != nil && *req.ReportID != "" {
			report, err := tx.Report.GetByID(ctx, *req.ReportID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrReportNotFound
				}
				return err
			}
			if report.StudentID != req.StudentID {
				return ErrReportStudentMismatch.WithField("report_id", "report belongs to another student")
			}
		}

		defense := &model.Defense{
			StudentID:   req.StudentID,
			ScheduledAt: req.ScheduledAt,
			Salle:       salle,
			Status:      model.DefenseStatusScheduled,
		}
		if req.ReportID != nil && *req.ReportID != "" {
			reportID := *req.ReportID
			defense.ReportID = &reportID
		}
		if err := tx.Defense.Create(ctx, defense); err != nil {
			return err
		}
		defenseID = defense.DefenseID
		return nil
	})
	if err != nil {
		if pkgerrors.KindOf(err) == pkgerrors.KindInternal {
			s.logger.Error("schedule defense failed", zap.String("student_id", req.StudentID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("defense scheduled",
		zap.String("defense_id", defenseID),
		zap.String("student_id", req.StudentID),
		zap.Time("scheduled_at", req.ScheduledAt),
	)
	return s.GetByID(ctx, defenseID)
}

func (s *defenseService) Reschedule(ctx context.Context, id string, req *dto.UpdateDefenseRequest) (*dto.DefenseResponse, error) {
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		defense, err := tx.Defense.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDefenseNotFound
			}
			return err
		}

		if req.ScheduledAt != nil {
			defense.ScheduledAt = *req.ScheduledAt
		}
		if req.Salle != nil {
			salle := strings.TrimSpace(*req.Salle)
			if salle == "" {
				return ErrSalleRequired.WithField("salle", "must not be blank")
			}
			defense.Salle = salle
		}
		if req.Status != nil {
			status := model.DefenseStatus(*req.Status)
			if !status.Valid() {
				return ErrInvalidDefenseStatus.WithField("status", "must be scheduled, completed or cancelled")
			}
			if status != defense.Status {
				s.logger.Info("defense status override",
					zap.String("defense_id", id),
					zap.String("from", string(defense.Status)),
					zap.String("to", string(status)),
				)
			}
			defense.Status = status
		}

		return tx.Defense.Update(ctx, defense)
	})
	if err != nil {
		if pkgerrors.KindOf(err) == pkgerrors.KindInternal {
			s.logger.Error("update defense failed", zap.String("defense_id", id), zap.Error(err))
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *defenseService) Remove(ctx context.Context, id string) error {
	if _, err := s.repo.Defense.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDefenseNotFound
		}
		return err
	}
	if err := s.repo.Defense.Delete(ctx, id); err != nil {
		s.logger.Error("delete defense failed", zap.String("defense_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("defense deleted", zap.String("defense_id", id))
	return nil
}

func (s *defenseService) GetByID(ctx context.Context, id string) (*dto.DefenseResponse, error) {
	s.lifecycle.beforeRead(ctx)

	defense, err := s.repo.Defense.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDefenseNotFound
		}
		return nil, err
	}
	resp := toDefenseResponse(defense, s.store)
	return &resp, nil
}

func (s *defenseService) List(ctx context.Context, req *dto.DefenseListRequest) ([]dto.DefenseResponse, int64, error) {
	s.lifecycle.beforeRead(ctx)

	filter := repository.DefenseFilter{
		Status: model.DefenseStatus(req.Status),
		From:   req.From,
		To:     req.To,
	}
	defenses, total, err := s.repo.Defense.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list defenses failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.DefenseResponse, 0, len(defenses))
	for i := range defenses {
		result = append(result, toDefenseResponse(&defenses[i], s.store))
	}
	return result, total, nil
}

func (s *defenseService) GetForStudent(ctx context.Context, userID string) (*dto.DefenseResponse, error) {
	s.lifecycle.beforeRead(ctx)

	student, err := s.repo.Student.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	defenses, err := s.repo.Defense.ListByStudent(ctx, student.StudentID)
	if err != nil {
		s.logger.Error("list student defenses failed", zap.String("student_id", student.StudentID), zap.Error(err))
		return nil, err
	}
	if len(defenses) == 0 {
		return nil, nil
	}

	// ListByStudent 按 scheduled_at 倒序返回
	resp := toDefenseResponse(&defenses[0], s.store)
	return &resp, nil
}

func (s *defenseService) ListForJuryMember(ctx context.Context, userID string) ([]dto.JuryDefenseResponse, error) {
	s.lifecycle.beforeRead(ctx)

	professor, err := s.repo.Professor.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfessorNotFound
		}
		return nil, err
	}

	defenses, err := s.repo.Defense.ListByJuryMember(ctx, professor.ProfessorID)
	if err != nil {
		s.logger.Error("list jury defenses failed", zap.String("professor_id", professor.ProfessorID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.JuryDefenseResponse, 0, len(defenses))
	for i := range defenses {
		item := dto.JuryDefenseResponse{
			DefenseResponse: toDefenseResponse(&defenses[i], s.store),
			MyRoles:         []string{},
		}
		for _, seat := range defenses[i].Jury {
			if seat.ProfessorID == professor.ProfessorID {
				item.MyRoles = append(item.MyRoles, string(seat.Role))
			}
		}
		result = append(result, item)
	}
	return result, nil
}
