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

// ProfessorService 教师管理业务接口（含教师名下学生）
type ProfessorService interface {
	Create(ctx context.Context, req *dto.CreateProfessorRequest) (*dto.CreateProfessorResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ProfessorResponse, error)
	List(ctx context.Context, req *dto.ProfessorListRequest) ([]dto.ProfessorResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateProfessorRequest) (*dto.ProfessorResponse, error)
	Delete(ctx context.Context, id string) error
	// MyStudents 当前教师指导或评阅的学生及其最新报告
	MyStudents(ctx context.Context, userID string) ([]dto.SupervisedStudentResponse, error)
}

type professorService struct {
	repo   *repository.Repository
	store  storage.Store
	logger *zap.Logger
}

// NewProfessorService 创建 ProfessorService 实例
func NewProfessorService(repo *repository.Repository, store storage.Store, logger *zap.Logger) ProfessorService {
	return &professorService{repo: repo, store: store, logger: logger}
}

func (s *professorService) Create(ctx context.Context, req *dto.CreateProfessorRequest) (*dto.CreateProfessorResponse, error) {
	email := normalizeEmail(req.Email)
	profType := model.ProfessorType(req.Type)
	if profType == "" {
		profType = model.ProfessorTypeNone
	}

	password, tempPassword := req.Password, ""
	if password == "" {
		generated, err := generateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, err
		}
		password, tempPassword = generated, generated
	}
	hash, err := hashPassword(password)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	var professorID string
	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		if err := ensureEmailFree(ctx, tx, email, ""); err != nil {
			return err
		}
		user := &model.User{
			Name:         strings.TrimSpace(req.Name),
			Email:        email,
			PasswordHash: hash,
			Role:         model.RoleProfessor,
			Type:         profType,
		}
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}
		professor := &model.Professor{
			UserID:     user.UserID,
			Specialite: strings.TrimSpace(req.Specialite),
			Phone:      strings.TrimSpace(req.Phone),
		}
		if err := tx.Professor.Create(ctx, professor); err != nil {
			return err
		}
		professorID = professor.ProfessorID
		return nil
	})
	if err != nil {
		if pkgerrors.KindOf(err) == pkgerrors.KindInternal {
			s.logger.Error("create professor failed", zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("professor created", zap.String("professor_id", professorID))
	created, err := s.GetByID(ctx, professorID)
	if err != nil {
		return nil, err
	}
	return &dto.CreateProfessorResponse{Professor: *created, TempPassword: tempPassword}, nil
}

func (s *professorService) GetByID(ctx context.Context, id string) (*dto.ProfessorResponse, error) {
	professor, err := s.repo.Professor.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfessorNotFound
		}
		return nil, err
	}
	resp := toProfessorResponse(professor)
	return &resp, nil
}

func (s *professorService) List(ctx context.Context, req *dto.ProfessorListRequest) ([]dto.ProfessorResponse, int64, error) {
	professors, total, err := s.repo.Professor.List(ctx, strings.TrimSpace(req.Keyword), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list professors failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ProfessorResponse, 0, len(professors))
	for i := range professors {
		result = append(result, toProfessorResponse(&professors[i]))
	}
	return result, total, nil
}

func (s *professorService) Update(ctx context.Context, id string, req *dto.UpdateProfessorRequest) (*dto.ProfessorResponse, error) {
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		professor, err := tx.Professor.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfessorNotFound
			}
			return err
		}

		if req.Name != nil || req.Email != nil || req.Type != nil {
			user, err := tx.User.GetByID(ctx, professor.UserID)
			if err != nil {
				return err
			}
			if req.Name != nil {
				user.Name = strings.TrimSpace(*req.Name)
			}
			if req.Email != nil {
				email := normalizeEmail(*req.Email)
				if err := ensureEmailFree(ctx, tx, email, user.UserID); err != nil {
					return err
				}
				user.Email = email
			}
			if req.Type != nil {
				user.Type = model.ProfessorType(*req.Type)
			}
			if err := tx.User.Update(ctx, user); err != nil {
				return err
			}
		}

		if req.Specialite == nil && req.Phone == nil {
			return nil
		}
		if req.Specialite != nil {
			professor.Specialite = strings.TrimSpace(*req.Specialite)
		}
		if req.Phone != nil {
			professor.Phone = strings.TrimSpace(*req.Phone)
		}
		return tx.Professor.Update(ctx, professor)
	})
	if err != nil {
		if pkgerrors.KindOf(err) == pkgerrors.KindInternal {
			s.logger.Error("update professor failed", zap.String("professor_id", id), zap.Error(err))
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *professorService) Delete(ctx context.Context, id string) error {
	professor, err := s.repo.Professor.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProfessorNotFound
		}
		return err
	}
	// 名下学生保留，外键置为 NULL
	if err := s.repo.User.Delete(ctx, professor.UserID); err != nil {
		s.logger.Error("delete professor failed", zap.String("professor_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("professor deleted", zap.String("professor_id", id))
	return nil
}

func (s *professorService) MyStudents(ctx context.Context, userID string) ([]dto.SupervisedStudentResponse, error) {
	professor, err := s.repo.Professor.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfessorNotFound
		}
		return nil, err
	}

	students, err := s.repo.Student.ListByProfessor(ctx, professor.ProfessorID)
	if err != nil {
		s.logger.Error("list supervised students failed", zap.String("professor_id", professor.ProfessorID), zap.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(students))
	for i := range students {
		ids = append(ids, students[i].StudentID)
	}

	// 每个学生的最新报告仅作补充信息，查询失败时 LatestReport 留空
	latest := make(map[string]*model.Report, len(students))
	reports, err := s.repo.Report.ListByStudents(ctx, ids)
	if err != nil {
		s.logger.Warn("load latest reports failed", zap.String("professor_id", professor.ProfessorID), zap.Error(err))
	}
	for i := range reports {
		if _, ok := latest[reports[i].StudentID]; !ok {
			latest[reports[i].StudentID] = &reports[i]
		}
	}

	result := make([]dto.SupervisedStudentResponse, 0, len(students))
	for i := range students {
		item := dto.SupervisedStudentResponse{
			StudentResponse: toStudentResponse(&students[i]),
			IsEncadrant:     students[i].IsSupervisedBy(professor.ProfessorID),
			IsRapporteur:    students[i].IsReviewedBy(professor.ProfessorID),
		}
		if r, ok := latest[students[i].StudentID]; ok {
			rr := toReportResponse(r, s.store)
			item.LatestReport = &rr
		}
		result = append(result, item)
	}
	return result, nil
}
