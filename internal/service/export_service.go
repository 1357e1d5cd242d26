package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/dto"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/model"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/repository"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/clock"
)

// defenseDuration 日历中单场答辩的时长
const defenseDuration = time.Hour

const calendarProductID = "-//soutenance//defense schedule//FR"

var ErrExportGenerateFail = errors.New("failed to generate export file")

// ExportService 答辩排期导出业务接口
//
// 导出内容在内存中生成并附带建议文件名，下载响应头由 handler 设置
type ExportService interface {
	// ScheduleWorkbook 按筛选条件导出 .xlsx 排期表
	ScheduleWorkbook(ctx context.Context, req *dto.DefenseListRequest) (*bytes.Buffer, string, error)
	// ScheduleCalendar 按筛选条件导出 iCalendar 日历
	ScheduleCalendar(ctx context.Context, req *dto.DefenseListRequest) ([]byte, string, error)
	// JuryCalendar 教师参与评审的答辩日历
	JuryCalendar(ctx context.Context, userID string) ([]byte, string, error)
}

type exportService struct {
	repo      *repository.Repository
	lifecycle *Lifecycle
	clock     clock.Clock
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, lifecycle *Lifecycle, clk clock.Clock, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, lifecycle: lifecycle, clock: clk, logger: logger}
}

func (s *exportService) schedule(ctx context.Context, req *dto.DefenseListRequest) ([]model.Defense, error) {
	s.lifecycle.beforeRead(ctx)

	filter := repository.DefenseFilter{
		Status: model.DefenseStatus(req.Status),
		From:   req.From,
		To:     req.To,
	}
	defenses, _, err := s.repo.Defense.List(ctx, filter, 0, 0)
	if err != nil {
		s.logger.Error("load defense schedule failed", zap.Error(err))
		return nil, err
	}
	return defenses, nil
}

// ── Excel 导出 ──

var scheduleHeader = []string{"Date", "Heure", "Salle", "Étudiant", "Matricule", "Filière", "Statut", "Jury"}

func (s *exportService) ScheduleWorkbook(ctx context.Context, req *dto.DefenseListRequest) (*bytes.Buffer, string, error) {
	defenses, err := s.schedule(ctx, req)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Soutenances"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	widths := []float64{12, 8, 14, 26, 14, 18, 12, 60}
	for i, w := range widths {
		f.SetColWidth(sheet, colName(i), colName(i), w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	title := fmt.Sprintf("Planning des soutenances (%s)", s.clock.Now().Format("2006-01-02"))
	f.SetCellValue(sheet, "A1", title)
	f.MergeCell(sheet, "A1", cell(colName(len(scheduleHeader)-1), 1))
	f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	for i, h := range scheduleHeader {
		f.SetCellValue(sheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheet, "A2", cell(colName(len(scheduleHeader)-1), 2), headerStyle)

	row := 3
	for i := range defenses {
		d := &defenses[i]
		values := []interface{}{
			d.ScheduledAt.Format("2006-01-02"),
			d.ScheduledAt.Format("15:04"),
			d.Salle,
			studentName(d.Student),
			"",
			"",
			string(d.Status),
			juryLine(d.Jury),
		}
		if d.Student != nil {
			values[4] = d.Student.Matricule
			values[5] = d.Student.Filiere
		}
		for c, v := range values {
			f.SetCellValue(sheet, cell(colName(c), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write schedule workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, fmt.Sprintf("soutenances_%s.xlsx", s.clock.Now().Format("20060102")), nil
}

// ── iCalendar 导出 ──

func (s *exportService) ScheduleCalendar(ctx context.Context, req *dto.DefenseListRequest) ([]byte, string, error) {
	defenses, err := s.schedule(ctx, req)
	if err != nil {
		return nil, "", err
	}
	body := buildCalendar("Soutenances", defenses, s.clock.Now())
	return []byte(body), "soutenances.ics", nil
}

func (s *exportService) JuryCalendar(ctx context.Context, userID string) ([]byte, string, error) {
	s.lifecycle.beforeRead(ctx)

	professor, err := s.repo.Professor.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrProfessorNotFound
		}
		return nil, "", err
	}
	defenses, err := s.repo.Defense.ListByJuryMember(ctx, professor.ProfessorID)
	if err != nil {
		s.logger.Error("load jury defenses failed", zap.String("professor_id", professor.ProfessorID), zap.Error(err))
		return nil, "", err
	}
	body := buildCalendar("Mes jurys", defenses, s.clock.Now())
	return []byte(body), "jury.ics", nil
}

// buildCalendar 每场答辩一个 VEVENT，以答辩 ID 为 UID，重复导入时覆盖而不重复
func buildCalendar(name string, defenses []model.Defense, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(name)

	for i := range defenses {
		d := &defenses[i]
		evt := cal.AddEvent(d.DefenseID + "@soutenance")
		evt.SetDtStampTime(now)
		evt.SetStartAt(d.ScheduledAt)
		evt.SetEndAt(d.ScheduledAt.Add(defenseDuration))
		evt.SetSummary("Soutenance: " + studentName(d.Student))
		evt.SetLocation(d.Salle)
		if jury := juryLine(d.Jury); jury != "" {
			evt.SetDescription("Jury: " + jury)
		}
		switch d.Status {
		case model.DefenseStatusCancelled:
			evt.SetStatus(ics.ObjectStatusCancelled)
		default:
			evt.SetStatus(ics.ObjectStatusConfirmed)
		}
		for _, seat := range d.Jury {
			if seat.Professor != nil && seat.Professor.User != nil {
				evt.AddAttendee(seat.Professor.User.Email, ics.WithCN(seat.Professor.User.Name))
			}
		}
	}
	return cal.Serialize()
}

// ── 辅助函数 ──

func studentName(s *model.Student) string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.Name
}

// juryLine 格式为 "姓名 (角色), 姓名 (角色)"
func juryLine(seats []model.JuryAssignment) string {
	parts := make([]string, 0, len(seats))
	for _, seat := range seats {
		name := seat.ProfessorID
		if seat.Professor != nil && seat.Professor.User != nil {
			name = seat.Professor.User.Name
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", name, seat.Role))
	}
	return strings.Join(parts, ", ")
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
