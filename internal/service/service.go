package service

import (
	"go.uber.org/zap"

	"github.com/SouhailBechchari/Emsoutenance-sub000/config"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/repository"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/clock"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/jwt"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/storage"
)

// Service 聚合所有业务接口
type Service struct {
	Auth      AuthService
	Student   StudentService
	Professor ProfessorService
	Report    ReportService
	Defense   DefenseService
	Jury      JuryService
	Contact   ContactService
	Export    ExportService
	Stats     StatsService

	Lifecycle *Lifecycle
}

// NewService 创建 Service 聚合；未启用 Redis 时 blacklist 为 nil
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	store storage.Store,
	blacklist TokenBlacklist,
	clk clock.Clock,
	logger *zap.Logger,
) *Service {
	lifecycle := NewLifecycle(repo, clk, cfg.Lifecycle.ReconcileOnRead, logger)

	return &Service{
		Auth:      NewAuthService(&cfg.Auth, repo, jwtMgr, blacklist, logger),
		Student:   NewStudentService(repo, logger),
		Professor: NewProfessorService(repo, store, logger),
		Report:    NewReportService(&cfg.Storage, repo, store, clk, logger),
		Defense:   NewDefenseService(repo, lifecycle, store, logger),
		Jury:      NewJuryService(repo, store, logger),
		Contact:   NewContactService(repo, clk, logger),
		Export:    NewExportService(repo, lifecycle, clk, logger),
		Stats:     NewStatsService(repo, lifecycle, store, clk, logger),
		Lifecycle: lifecycle,
	}
}
