package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/dto"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/model"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/repository"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/clock"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/storage"
)

const upcomingLimit = 5

// StatsService 管理员看板统计业务接口
type StatsService interface {
	Overview(ctx context.Context) (*dto.StatsResponse, error)
}

type statsService struct {
	repo      *repository.Repository
	lifecycle *Lifecycle
	store     storage.Store
	clock     clock.Clock
	logger    *zap.Logger
}

// NewStatsService 创建 StatsService 实例
func NewStatsService(repo *repository.Repository, lifecycle *Lifecycle, store storage.Store, clk clock.Clock, logger *zap.Logger) StatsService {
	return &statsService{repo: repo, lifecycle: lifecycle, store: store, clock: clk, logger: logger}
}

func (s *statsService) Overview(ctx context.Context) (*dto.StatsResponse, error) {
	s.lifecycle.beforeRead(ctx)

	students, err := s.repo.User.CountByRole(ctx, model.RoleStudent)
	if err != nil {
		s.logger.Error("count students failed", zap.Error(err))
		return nil, err
	}
	professors, err := s.repo.User.CountByRole(ctx, model.RoleProfessor)
	if err != nil {
		s.logger.Error("count professors failed", zap.Error(err))
		return nil, err
	}
	defenseCounts, err := s.repo.Defense.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("count defenses failed", zap.Error(err))
		return nil, err
	}
	reportCounts, err := s.repo.Report.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("count reports failed", zap.Error(err))
		return nil, err
	}
	unread, err := s.repo.ContactMessage.CountUnread(ctx)
	if err != nil {
		s.logger.Error("count unread messages failed", zap.Error(err))
		return nil, err
	}

	resp := &dto.StatsResponse{
		Students:         students,
		Professors:       professors,
		Defenses:         map[string]int64{},
		Reports:          map[string]int64{},
		UnreadMessages:   unread,
		UpcomingDefenses: []dto.DefenseResponse{},
	}
	for _, st := range []model.DefenseStatus{model.DefenseStatusScheduled, model.DefenseStatusCompleted, model.DefenseStatusCancelled} {
		resp.Defenses[string(st)] = defenseCounts[st]
	}
	for _, st := range []model.ReportStatus{
		model.ReportStatusPending, model.ReportStatusValidated,
		model.ReportStatusNeedCorrection, model.ReportStatusRejected,
	} {
		resp.Reports[string(st)] = reportCounts[st]
	}

	// 近期答辩仅作补充，查询失败时留空
	now := s.clock.Now()
	upcoming, _, err := s.repo.Defense.List(ctx, repository.DefenseFilter{
		Status: model.DefenseStatusScheduled,
		From:   &now,
	}, 0, upcomingLimit)
	if err != nil {
		s.logger.Warn("load upcoming defenses failed", zap.Error(err))
		return resp, nil
	}
	for i := range upcoming {
		resp.UpcomingDefenses = append(resp.UpcomingDefenses, toDefenseResponse(&upcoming[i], s.store))
	}
	return resp, nil
}
