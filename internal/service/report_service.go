package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SouhailBechchari/Emsoutenance-sub000/config"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/dto"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/model"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/repository"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/clock"
	pkgerrors "github.com/SouhailBechchari/Emsoutenance-sub000/pkg/errors"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/storage"
)

// reportDir 报告文件存储目录
const reportDir = "reports"

var (
	ErrFileRequired        = pkgerrors.Validation(14002, "a report file is required")
	ErrFileTooLarge        = pkgerrors.Validation(14003, "report file is too large")
	ErrFileType            = pkgerrors.Validation(14004, "report must be a PDF or DOCX file")
	ErrReportNotValidated  = pkgerrors.Validation(14005, "rapporteur must validate first")
	ErrInvalidReportStatus = pkgerrors.Validation(14006, "invalid report status")
	ErrRemarkEmpty         = pkgerrors.Validation(14007, "remark content is required")
)

// sniffedTypes 各扩展名对应的 http.DetectContentType 结果（DOCX 为 zip 容器）
var sniffedTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/zip",
}

// Upload multipart 表单上传的文件
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// ReportService 报告业务接口（版本、批注、评阅状态）
type ReportService interface {
	Submit(ctx context.Context, userID string, file *Upload) (*dto.ReportResponse, error)
	ListMine(ctx context.Context, userID string) ([]dto.ReportResponse, error)
	ListRemarks(ctx context.Context, userID string, role model.Role, reportID string) ([]dto.RemarkResponse, error)

	ListForProfessor(ctx context.Context, userID string) ([]dto.ReportResponse, error)
	AddRemark(ctx context.Context, userID, reportID string, req *dto.AddRemarkRequest) (*dto.RemarkResponse, error)
	Validate(ctx context.Context, userID, reportID string) (*dto.ReportResponse, error)

	List(ctx context.Context, req *dto.ReportListRequest) ([]dto.ReportResponse, int64, error)
	// Finalize 仅确认 rapporteur 已评阅通过
	Finalize(ctx context.Context, reportID string) (*dto.ReportResponse, error)
	// SetStatus 管理员强制修改状态，rejected 只能经此设置
	SetStatus(ctx context.Context, reportID string, req *dto.SetReportStatusRequest) (*dto.ReportResponse, error)
}

type reportService struct {
	cfg    *config.StorageConfig
	repo   *repository.Repository
	store  storage.Store
	clock  clock.Clock
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(
	cfg *config.StorageConfig,
	repo *repository.Repository,
	store storage.Store,
	clk clock.Clock,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		cfg:    cfg,
		repo:   repo,
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// ── 学生 ──

func (s *reportService) Submit(ctx context.Context, userID string, file *Upload) (*dto.ReportResponse, error) {
	student, err := s.repo.Student.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if err := CanSubmitReport(Actor{UserID: userID, Role: model.RoleStudent}, student); err != nil {
		return nil, err
	}

	content, err := s.checkUpload(file)
	if err != nil {
		return nil, err
	}

	relPath, err := s.store.Save(ctx, reportDir, file.Filename, content)
	if err != nil {
		s.logger.Error("store report file failed", zap.String("student_id", student.StudentID), zap.Error(err))
		return nil, err
	}

	report := &model.Report{
		StudentID:        student.StudentID,
		FilePath:         relPath,
		OriginalFilename: filepath.Base(file.Filename),
		Status:           model.ReportStatusPending,
		SubmittedAt:      s.clock.Now(),
	}
	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		// 锁学生行，避免并发首次提交都成为 initial
		if _, err := tx.Student.LockByID(ctx, student.StudentID); err != nil {
			return err
		}
		initials, err := tx.Report.CountByStudentAndVersion(ctx, student.StudentID, model.ReportVersionInitial)
		if err != nil {
			return err
		}
		report.Version = model.ReportVersionInitial
		if initials > 0 {
			report.Version = model.ReportVersionCorrige
		}
		return tx.Report.Create(ctx, report)
	})
	if err != nil {
		if rmErr := s.store.Remove(ctx, relPath); rmErr != nil {
			s.logger.Warn("remove orphan report file failed", zap.String("path", relPath), zap.Error(rmErr))
		}
		s.logger.Error("create report failed", zap.String("student_id", student.StudentID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("report submitted",
		zap.String("report_id", report.ReportID),
		zap.String("student_id", student.StudentID),
		zap.String("version", string(report.Version)),
	)
	resp := toReportResponse(report, s.store)
	return &resp, nil
}

// checkUpload 校验文件存在、大小、扩展名与内容类型，返回定位到文件开头的 reader
func (s *reportService) checkUpload(file *Upload) (io.Reader, error) {
	if file == nil || file.Content == nil || file.Filename == "" {
		return nil, ErrFileRequired.WithField("file", "required")
	}
	if file.Size <= 0 {
		return nil, ErrFileRequired.WithField("file", "file is empty")
	}
	if file.Size > s.cfg.MaxUploadBytes {
		return nil, ErrFileTooLarge.WithField("file", fmt.Sprintf("must not exceed %d bytes", s.cfg.MaxUploadBytes))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := false
	for _, a := range s.cfg.AllowedExtensions {
		if strings.EqualFold(a, ext) {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrFileType.WithField("file", "accepted types: "+strings.Join(s.cfg.AllowedExtensions, ", "))
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	head = head[:n]
	if want, ok := sniffedTypes[ext]; ok {
		got := http.DetectContentType(head)
		if !strings.HasPrefix(got, want) {
			return nil, ErrFileType.WithField("file", "content does not match "+ext)
		}
	}

	return io.LimitReader(io.MultiReader(bytes.NewReader(head), file.Content), s.cfg.MaxUploadBytes), nil
}

func (s *reportService) ListMine(ctx context.Context, userID string) ([]dto.ReportResponse, error) {
	student, err := s.repo.Student.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	reports, err := s.repo.Report.ListByStudent(ctx, student.StudentID)
	if err != nil {
		s.logger.Error("list student reports failed", zap.String("student_id", student.StudentID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		result = append(result, toReportResponse(&reports[i], s.store))
	}
	return result, nil
}

func (s *reportService) ListRemarks(ctx context.Context, userID string, role model.Role, reportID string) ([]dto.RemarkResponse, error) {
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	actor, err := s.actor(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	if err := CanReadRemarks(actor, report.Student); err != nil {
		return nil, err
	}

	remarks, err := s.repo.Remark.ListByReport(ctx, reportID)
	if err != nil {
		s.logger.Error("list remarks failed", zap.String("report_id", reportID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.RemarkResponse, 0, len(remarks))
	for i := range remarks {
		result = append(result, toRemarkResponse(&remarks[i]))
	}
	return result, nil
}

// ── 教师 ──

func (s *reportService) ListForProfessor(ctx context.Context, userID string) ([]dto.ReportResponse, error) {
	professor, err := s.professorOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	students, err := s.repo.Student.ListByProfessor(ctx, professor.ProfessorID)
	if err != nil {
		s.logger.Error("list professor students failed", zap.String("professor_id", professor.ProfessorID), zap.Error(err))
		return nil, err
	}
	ids := make([]string, 0, len(students))
	for i := range students {
		ids = append(ids, students[i].StudentID)
	}

	reports, err := s.repo.Report.ListByStudents(ctx, ids)
	if err != nil {
		s.logger.Error("list professor reports failed", zap.String("professor_id", professor.ProfessorID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		result = append(result, toReportResponse(&reports[i], s.store))
	}
	return result, nil
}

func (s *reportService) AddRemark(ctx context.Context, userID, reportID string, req *dto.AddRemarkRequest) (*dto.RemarkResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrRemarkEmpty.WithField("content", "required")
	}

	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	actor, err := s.actor(ctx, userID, model.RoleProfessor)
	if err != nil {
		return nil, err
	}
	if err := CanRemark(actor, report.Student); err != nil {
		return nil, err
	}

	remark := &model.Remark{
		ReportID:    report.ReportID,
		ProfessorID: actor.ProfessorID,
		Content:     content,
		CreatedAt:   s.clock.Now(),
	}
	from := report.Status
	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Remark.Create(ctx, remark); err != nil {
			return err
		}
		if report.Status != model.ReportStatusPending && report.Status != model.ReportStatusValidated {
			return nil
		}
		report.Status = model.ReportStatusNeedCorrection
		return tx.Report.UpdateStatus(ctx, report)
	})
	if err != nil {
		if pkgerrors.KindOf(err) == pkgerrors.KindInternal {
			s.logger.Error("add remark failed", zap.String("report_id", reportID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("remark added",
		zap.String("report_id", reportID),
		zap.String("professor_id", actor.ProfessorID),
		zap.String("status_from", string(from)),
		zap.String("status_to", string(report.Status)),
	)

	if remark.Professor, err = s.repo.Professor.GetByID(ctx, actor.ProfessorID); err != nil {
		s.logger.Debug("load remark author failed", zap.String("remark_id", remark.RemarkID), zap.Error(err))
	}
	resp := toRemarkResponse(remark)
	return &resp, nil
}

func (s *reportService) Validate(ctx context.Context, userID, reportID string) (*dto.ReportResponse, error) {
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	actor, err := s.actor(ctx, userID, model.RoleProfessor)
	if err != nil {
		return nil, err
	}
	if err := CanValidate(actor, report.Student); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	report.Status = model.ReportStatusValidated
	report.ValidatedAt = &now
	if err := s.repo.Report.UpdateStatus(ctx, report); err != nil {
		if pkgerrors.KindOf(err) == pkgerrors.KindInternal {
			s.logger.Error("validate report failed", zap.String("report_id", reportID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("report validated", zap.String("report_id", reportID), zap.String("professor_id", actor.ProfessorID))
	resp := toReportResponse(report, s.store)
	return &resp, nil
}

// ── 管理员 ──

func (s *reportService) List(ctx context.Context, req *dto.ReportListRequest) ([]dto.ReportResponse, int64, error) {
	filter := repository.ReportFilter{
		StudentID: req.StudentID,
		Status:    model.ReportStatus(req.Status),
		Version:   model.ReportVersion(req.Version),
	}
	reports, total, err := s.repo.Report.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list reports failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		result = append(result, toReportResponse(&reports[i], s.store))
	}
	return result, total, nil
}

func (s *reportService) Finalize(ctx context.Context, reportID string) (*dto.ReportResponse, error) {
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != model.ReportStatusValidated {
		return nil, ErrReportNotValidated.WithField("status", string(report.Status))
	}
	resp := toReportResponse(report, s.store)
	return &resp, nil
}

func (s *reportService) SetStatus(ctx context.Context, reportID string, req *dto.SetReportStatusRequest) (*dto.ReportResponse, error) {
	status := model.ReportStatus(req.Status)
	if !status.Valid() {
		return nil, ErrInvalidReportStatus.WithField("status", "must be pending, validated, rejected or need_correction")
	}

	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	from := report.Status
	report.Status = status
	if status == model.ReportStatusValidated {
		now := s.clock.Now()
		report.ValidatedAt = &now
	} else {
		report.ValidatedAt = nil
	}
	if err := s.repo.Report.UpdateStatus(ctx, report); err != nil {
		if pkgerrors.KindOf(err) == pkgerrors.KindInternal {
			s.logger.Error("set report status failed", zap.String("report_id", reportID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("report status override",
		zap.String("report_id", reportID),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
	)
	resp := toReportResponse(report, s.store)
	return &resp, nil
}

// ── 辅助函数 ──

func (s *reportService) getReport(ctx context.Context, id string) (*model.Report, error) {
	report, err := s.repo.Report.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		s.logger.Error("get report failed", zap.String("report_id", id), zap.Error(err))
		return nil, err
	}
	return report, nil
}

// professorOf 没有教师档案的调用者按无权限处理（而非 404）
func (s *reportService) professorOf(ctx context.Context, userID string) (*model.Professor, error) {
	professor, err := s.repo.Professor.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccessDenied
		}
		return nil, err
	}
	return professor, nil
}

func (s *reportService) actor(ctx context.Context, userID string, role model.Role) (Actor, error) {
	actor := Actor{UserID: userID, Role: role}
	if role != model.RoleProfessor {
		return actor, nil
	}
	professor, err := s.professorOf(ctx, userID)
	if err != nil {
		return Actor{}, err
	}
	actor.ProfessorID = professor.ProfessorID
	return actor, nil
}
