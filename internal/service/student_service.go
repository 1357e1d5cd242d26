package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/dto"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/model"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/repository"
	pkgerrors "github.com/SouhailBechchari/Emsoutenance-sub000/pkg/errors"
)

const maxImportRows = 500

var (
	ErrUnknownSupervisor = pkgerrors.Validation(12003, "unknown professor")
	ErrImportNoData      = pkgerrors.Validation(12004, "the spreadsheet has no data rows")
	ErrImportTooManyRows = pkgerrors.Validationf(12005, "at most %d rows per import", maxImportRows)
	ErrImportBadHeader   = pkgerrors.Validation(12006, "header must contain name, email, matricule, filiere and stage_type")
	ErrImportUnreadable  = pkgerrors.Validation(12007, "file is not a readable xlsx workbook")
	ErrImportFileMissing = pkgerrors.Validation(12008, "an xlsx file is required")
)

// ImportStudentRow 解析后的一行表格数据
type ImportStudentRow struct {
	Row       int
	Name      string
	Email     string
	Matricule string
	Filiere   string
	StageType string
	Phone     string
}

// StudentService 学生管理业务接口
type StudentService interface {
	Create(ctx context.Context, req *dto.CreateStudentRequest) (*dto.CreateStudentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.StudentResponse, error)
	List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error)
	// Delete 删除学生账号，档案、报告与答辩级联删除
	Delete(ctx context.Context, id string) error

	ParseImportFile(reader io.Reader) ([]ImportStudentRow, error)
	ImportStudents(ctx context.Context, rows []ImportStudentRow) (*dto.ImportStudentResponse, error)
}

type studentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, logger: logger}
}

func (s *studentService) Create(ctx context.Context, req *dto.CreateStudentRequest) (*dto.CreateStudentResponse, error) {
	email := normalizeEmail(req.Email)
	matricule := strings.TrimSpace(req.Matricule)

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

	var studentID string
	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		if err := ensureEmailFree(ctx, tx, email, ""); err != nil {
			return err
		}
		if err := ensureMatriculeFree(ctx, tx, matricule, ""); err != nil {
			return err
		}
		if err := s.checkProfessor(ctx, tx, "encadrant_id", req.EncadrantID); err != nil {
			return err
		}
		if err := s.checkProfessor(ctx, tx, "rapporteur_id", req.RapporteurID); err != nil {
			return err
		}

		user := &model.User{
			Name:         strings.TrimSpace(req.Name),
			Email:        email,
			PasswordHash: hash,
			Role:         model.RoleStudent,
			Type:         model.ProfessorTypeNone,
		}
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}
		student := &model.Student{
			UserID:       user.UserID,
			Matricule:    matricule,
			Filiere:      strings.TrimSpace(req.Filiere),
			StageType:    model.StageType(req.StageType),
			Phone:        strings.TrimSpace(req.Phone),
			EncadrantID:  optionalID(req.EncadrantID),
			RapporteurID: optionalID(req.RapporteurID),
		}
		if err := tx.Student.Create(ctx, student); err != nil {
			return err
		}
		studentID = student.StudentID
		return nil
	})
	if err != nil {
		if pkgerrors.KindOf(err) == pkgerrors.KindInternal {
			s.logger.Error("create student failed", zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("student created", zap.String("student_id", studentID))
	created, err := s.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return &dto.CreateStudentResponse{Student: *created, TempPassword: tempPassword}, nil
}

func (s *studentService) GetByID(ctx context.Context, id string) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	resp := toStudentResponse(student)
	return &resp, nil
}

func (s *studentService) List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error) {
	filter := repository.StudentFilter{
		Keyword:   strings.TrimSpace(req.Keyword),
		Filiere:   strings.TrimSpace(req.Filiere),
		StageType: model.StageType(req.StageType),
	}
	students, total, err := s.repo.Student.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list students failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, toStudentResponse(&students[i]))
	}
	return result, total, nil
}

func (s *studentService) Update(ctx context.Context, id string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error) {
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		student, err := tx.Student.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return err
		}

		if req.Name != nil || req.Email != nil {
			user, err := tx.User.GetByID(ctx, student.UserID)
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
			if err := tx.User.Update(ctx, user); err != nil {
				return err
			}
		}

		if req.Matricule != nil {
			matricule := strings.TrimSpace(*req.Matricule)
			if err := ensureMatriculeFree(ctx, tx, matricule, student.StudentID); err != nil {
				return err
			}
			student.Matricule = matricule
		}
		if req.Filiere != nil {
			student.Filiere = strings.TrimSpace(*req.Filiere)
		}
		if req.StageType != nil {
			student.StageType = model.StageType(*req.StageType)
		}
		if req.Phone != nil {
			student.Phone = strings.TrimSpace(*req.Phone)
		}
		if req.EncadrantID != nil {
			if err := s.checkProfessor(ctx, tx, "encadrant_id", req.EncadrantID); err != nil {
				return err
			}
			student.EncadrantID = optionalID(req.EncadrantID)
		}
		if req.RapporteurID != nil {
			if err := s.checkProfessor(ctx, tx, "rapporteur_id", req.RapporteurID); err != nil {
				return err
			}
			student.RapporteurID = optionalID(req.RapporteurID)
		}
		return tx.Student.Update(ctx, student)
	})
	if err != nil {
		if pkgerrors.KindOf(err) == pkgerrors.KindInternal {
			s.logger.Error("update student failed", zap.String("student_id", id), zap.Error(err))
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *studentService) Delete(ctx context.Context, id string) error {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}
	if err := s.repo.User.Delete(ctx, student.UserID); err != nil {
		s.logger.Error("delete student failed", zap.String("student_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("student deleted", zap.String("student_id", id))
	return nil
}

// ── 批量导入 ──

func (s *studentService) ParseImportFile(reader io.Reader) ([]ImportStudentRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, ErrImportUnreadable
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	col := parseStudentHeader(excelRows[0])
	for _, key := range []string{"name", "email", "matricule", "filiere", "stage_type"} {
		if col[key] < 0 {
			return nil, ErrImportBadHeader
		}
	}

	cell := func(row []string, key string) string {
		if idx := col[key]; idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var rows []ImportStudentRow
	for i := 1; i < len(excelRows); i++ {
		item := ImportStudentRow{
			Row:       i + 1,
			Name:      cell(excelRows[i], "name"),
			Email:     cell(excelRows[i], "email"),
			Matricule: cell(excelRows[i], "matricule"),
			Filiere:   cell(excelRows[i], "filiere"),
			StageType: cell(excelRows[i], "stage_type"),
			Phone:     cell(excelRows[i], "phone"),
		}
		if item.Name == "" && item.Email == "" && item.Matricule == "" && item.Filiere == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

func parseStudentHeader(header []string) map[string]int {
	idx := map[string]int{
		"name":       -1,
		"email":      -1,
		"matricule":  -1,
		"filiere":    -1,
		"stage_type": -1,
		"phone":      -1,
	}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name", "nom":
			idx["name"] = i
		case "email":
			idx["email"] = i
		case "matricule":
			idx["matricule"] = i
		case "filiere", "filière":
			idx["filiere"] = i
		case "stage_type", "type de stage":
			idx["stage_type"] = i
		case "phone", "telephone", "téléphone":
			idx["phone"] = i
		}
	}
	return idx
}

// ImportStudents 先校验全部行，再在同一事务中写入所有合法行，写入失败整体回滚
// 导入的账号初始密码为 "Soutenance-<matricule>"
func (s *studentService) ImportStudents(ctx context.Context, rows []ImportStudentRow) (*dto.ImportStudentResponse, error) {
	resp := &dto.ImportStudentResponse{Total: len(rows)}
	reject := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportStudentError{Row: row, Reason: reason})
	}

	type validatedRow struct {
		row  ImportStudentRow
		hash string
	}
	var valid []validatedRow
	seenEmail := make(map[string]bool, len(rows))
	seenMatricule := make(map[string]bool, len(rows))

	for _, row := range rows {
		row.Email = normalizeEmail(row.Email)
		if row.Name == "" || row.Email == "" || row.Matricule == "" || row.Filiere == "" {
			reject(row.Row, "missing required field")
			continue
		}
		if !model.StageType(row.StageType).Valid() {
			reject(row.Row, fmt.Sprintf("invalid stage_type %q", row.StageType))
			continue
		}
		if seenEmail[row.Email] || seenMatricule[row.Matricule] {
			reject(row.Row, "duplicate row in file")
			continue
		}
		if err := ensureEmailFree(ctx, s.repo, row.Email, ""); err != nil {
			reject(row.Row, fmt.Sprintf("email already in use: %s", row.Email))
			continue
		}
		if err := ensureMatriculeFree(ctx, s.repo, row.Matricule, ""); err != nil {
			reject(row.Row, fmt.Sprintf("matricule already in use: %s", row.Matricule))
			continue
		}
		hash, err := hashPassword("Soutenance-" + row.Matricule)
		if err != nil {
			reject(row.Row, "password hashing failed")
			continue
		}
		seenEmail[row.Email] = true
		seenMatricule[row.Matricule] = true
		valid = append(valid, validatedRow{row: row, hash: hash})
	}

	if len(valid) == 0 {
		return resp, nil
	}

	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		for _, v := range valid {
			user := &model.User{
				Name:         v.row.Name,
				Email:        v.row.Email,
				PasswordHash: v.hash,
				Role:         model.RoleStudent,
				Type:         model.ProfessorTypeNone,
			}
			if err := tx.User.Create(ctx, user); err != nil {
				return fmt.Errorf("row %d: %w", v.row.Row, err)
			}
			student := &model.Student{
				UserID:    user.UserID,
				Matricule: v.row.Matricule,
				Filiere:   v.row.Filiere,
				StageType: model.StageType(v.row.StageType),
				Phone:     v.row.Phone,
			}
			if err := tx.Student.Create(ctx, student); err != nil {
				return fmt.Errorf("row %d: %w", v.row.Row, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("student import rolled back", zap.Error(err))
		return nil, err
	}

	resp.Success = len(valid)
	s.logger.Info("students imported", zap.Int("success", resp.Success), zap.Int("failed", resp.Failed))
	return resp, nil
}

// ── 辅助函数 ──

func (s *studentService) checkProfessor(ctx context.Context, repo *repository.Repository, field string, id *string) error {
	if id == nil || *id == "" {
		return nil
	}
	if _, err := repo.Professor.GetByID(ctx, *id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnknownSupervisor.WithField(field, "professor does not exist")
		}
		return err
	}
	return nil
}

// optionalID 空 ID 映射为 NULL
func optionalID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	v := *id
	return &v
}
