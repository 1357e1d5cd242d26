package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/model"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/repository"
	pkgerrors "github.com/SouhailBechchari/Emsoutenance-sub000/pkg/errors"
)

// ── 所有 mock repository 共用的内存表 ──
//
// 查询返回填充好关联的副本，service 只能通过显式的 Create/Update 修改存储状态，与真实数据库一致

type memDB struct {
	mu sync.Mutex
	id int

	users      map[string]*model.User
	students   map[string]*model.Student
	professors map[string]*model.Professor
	reports    map[string]*model.Report
	remarks    []model.Remark
	defenses   map[string]*model.Defense
	jury       []model.JuryAssignment
	messages   map[string]*model.ContactMessage

	// 报告创建顺序，用于“最新优先”排序
	reportSeq map[string]int
}

func newMemDB() *memDB {
	return &memDB{
		users:      make(map[string]*model.User),
		students:   make(map[string]*model.Student),
		professors: make(map[string]*model.Professor),
		reports:    make(map[string]*model.Report),
		defenses:   make(map[string]*model.Defense),
		messages:   make(map[string]*model.ContactMessage),
		reportSeq:  make(map[string]int),
	}
}

func (db *memDB) nextID(prefix string) string {
	db.id++
	return fmt.Sprintf("%s-%d", prefix, db.id)
}

func newTestRepo() (*repository.Repository, *memDB) {
	db := newMemDB()
	return &repository.Repository{
		User:           &mockUserRepo{db},
		Student:        &mockStudentRepo{db},
		Professor:      &mockProfessorRepo{db},
		Report:         &mockReportRepo{db},
		Remark:         &mockRemarkRepo{db},
		Defense:        &mockDefenseRepo{db},
		Jury:           &mockJuryRepo{db},
		ContactMessage: &mockContactRepo{db},
	}, db
}

// ── hydration (callers hold db.mu) ──

func (db *memDB) user(id string) *model.User {
	if u, ok := db.users[id]; ok {
		c := *u
		return &c
	}
	return nil
}

func (db *memDB) professor(id string) *model.Professor {
	p, ok := db.professors[id]
	if !ok {
		return nil
	}
	c := *p
	c.User = db.user(p.UserID)
	return &c
}

func (db *memDB) student(id string) *model.Student {
	s, ok := db.students[id]
	if !ok {
		return nil
	}
	c := *s
	c.User = db.user(s.UserID)
	if s.EncadrantID != nil {
		c.Encadrant = db.professor(*s.EncadrantID)
	}
	if s.RapporteurID != nil {
		c.Rapporteur = db.professor(*s.RapporteurID)
	}
	return &c
}

func (db *memDB) report(id string) *model.Report {
	r, ok := db.reports[id]
	if !ok {
		return nil
	}
	c := *r
	c.Student = db.student(r.StudentID)
	return &c
}

func (db *memDB) seats(defenseID string) []model.JuryAssignment {
	var out []model.JuryAssignment
	for _, a := range db.jury {
		if a.DefenseID == defenseID {
			a.Professor = db.professor(a.ProfessorID)
			out = append(out, a)
		}
	}
	return out
}

func (db *memDB) defense(id string) *model.Defense {
	d, ok := db.defenses[id]
	if !ok {
		return nil
	}
	c := *d
	c.Student = db.student(d.StudentID)
	if d.ReportID != nil {
		if r, ok := db.reports[*d.ReportID]; ok {
			rc := *r
			c.Report = &rc
		}
	}
	c.Jury = db.seats(id)
	return &c
}

func (db *memDB) sortedDefenses(keep func(*model.Defense) bool) []model.Defense {
	var out []model.Defense
	for id, d := range db.defenses {
		if keep(d) {
			out = append(out, *db.defense(id))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out
}

func page[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		return items
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ── users ──

type mockUserRepo struct{ db *memDB }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if user.UserID == "" {
		user.UserID = m.db.nextID("user")
	}
	c := *user
	m.db.users[user.UserID] = &c
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if u := m.db.user(id); u != nil {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for id, u := range m.db.users {
		if strings.EqualFold(u.Email, email) {
			return m.db.user(id), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c := *user
	m.db.users[user.UserID] = &c
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	delete(m.db.users, id)
	for sid, s := range m.db.students {
		if s.UserID == id {
			delete(m.db.students, sid)
			for rid, r := range m.db.reports {
				if r.StudentID == sid {
					delete(m.db.reports, rid)
				}
			}
			for did, d := range m.db.defenses {
				if d.StudentID == sid {
					delete(m.db.defenses, did)
				}
			}
		}
	}
	for pid, p := range m.db.professors {
		if p.UserID == id {
			delete(m.db.professors, pid)
			for _, s := range m.db.students {
				if s.EncadrantID != nil && *s.EncadrantID == pid {
					s.EncadrantID = nil
				}
				if s.RapporteurID != nil && *s.RapporteurID == pid {
					s.RapporteurID = nil
				}
			}
		}
	}
	return nil
}

func (m *mockUserRepo) CountByRole(_ context.Context, role model.Role) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var n int64
	for _, u := range m.db.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// ── 学生模块 DTO ──

type mockStudentRepo struct{ db *memDB }

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if student.StudentID == "" {
		student.StudentID = m.db.nextID("student")
	}
	c := *student
	c.User, c.Encadrant, c.Rapporteur = nil, nil, nil
	m.db.students[student.StudentID] = &c
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if s := m.db.student(id); s != nil {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByUserID(_ context.Context, userID string) (*model.Student, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for id, s := range m.db.students {
		if s.UserID == userID {
			return m.db.student(id), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByMatricule(_ context.Context, matricule string) (*model.Student, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for id, s := range m.db.students {
		if s.Matricule == matricule {
			return m.db.student(id), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) LockByID(ctx context.Context, id string) (*model.Student, error) {
	return m.GetByID(ctx, id)
}

func (m *mockStudentRepo) List(_ context.Context, filter repository.StudentFilter, offset, limit int) ([]model.Student, int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []model.Student
	for id, s := range m.db.students {
		if filter.Filiere != "" && s.Filiere != filter.Filiere {
			continue
		}
		if filter.StageType != "" && s.StageType != filter.StageType {
			continue
		}
		hydrated := m.db.student(id)
		if filter.Keyword != "" {
			kw := strings.ToLower(filter.Keyword)
			name := ""
			if hydrated.User != nil {
				name = strings.ToLower(hydrated.User.Name)
			}
			if !strings.Contains(name, kw) && !strings.Contains(strings.ToLower(s.Matricule), kw) {
				continue
			}
		}
		out = append(out, *hydrated)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Matricule < out[j].Matricule })
	return page(out, offset, limit), int64(len(out)), nil
}

func (m *mockStudentRepo) ListByProfessor(_ context.Context, professorID string) ([]model.Student, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []model.Student
	for id, s := range m.db.students {
		if s.IsSupervisedBy(professorID) || s.IsReviewedBy(professorID) {
			out = append(out, *m.db.student(id))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Matricule < out[j].Matricule })
	return out, nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	stored, ok := m.db.students[student.StudentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Matricule = student.Matricule
	stored.Filiere = student.Filiere
	stored.StageType = student.StageType
	stored.Phone = student.Phone
	stored.EncadrantID = student.EncadrantID
	stored.RapporteurID = student.RapporteurID
	return nil
}

// ── 教师模块 DTO ──

type mockProfessorRepo struct{ db *memDB }

func (m *mockProfessorRepo) Create(_ context.Context, professor *model.Professor) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if professor.ProfessorID == "" {
		professor.ProfessorID = m.db.nextID("prof")
	}
	c := *professor
	c.User = nil
	m.db.professors[professor.ProfessorID] = &c
	return nil
}

func (m *mockProfessorRepo) GetByID(_ context.Context, id string) (*model.Professor, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if p := m.db.professor(id); p != nil {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfessorRepo) GetByUserID(_ context.Context, userID string) (*model.Professor, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for id, p := range m.db.professors {
		if p.UserID == userID {
			return m.db.professor(id), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfessorRepo) List(_ context.Context, keyword string, offset, limit int) ([]model.Professor, int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []model.Professor
	for id := range m.db.professors {
		p := m.db.professor(id)
		if keyword != "" && (p.User == nil || !strings.Contains(strings.ToLower(p.User.Name), strings.ToLower(keyword))) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProfessorID < out[j].ProfessorID })
	return page(out, offset, limit), int64(len(out)), nil
}

func (m *mockProfessorRepo) CountExisting(_ context.Context, ids []string) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := m.db.professors[id]; ok {
			n++
		}
	}
	return n, nil
}

func (m *mockProfessorRepo) Update(_ context.Context, professor *model.Professor) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	stored, ok := m.db.professors[professor.ProfessorID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Specialite = professor.Specialite
	stored.Phone = professor.Phone
	return nil
}

// ── 报告模块 DTO ──

type mockReportRepo struct{ db *memDB }

func (m *mockReportRepo) Create(_ context.Context, report *model.Report) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if report.ReportID == "" {
		report.ReportID = m.db.nextID("report")
	}
	if report.LockVersion == 0 {
		report.LockVersion = 1
	}
	c := *report
	c.Student, c.Remarks = nil, nil
	m.db.reports[report.ReportID] = &c
	m.db.id++
	m.db.reportSeq[report.ReportID] = m.db.id
	return nil
}

func (m *mockReportRepo) GetByID(_ context.Context, id string) (*model.Report, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if r := m.db.report(id); r != nil {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReportRepo) CountByStudentAndVersion(_ context.Context, studentID string, version model.ReportVersion) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var n int64
	for _, r := range m.db.reports {
		if r.StudentID == studentID && r.Version == version {
			n++
		}
	}
	return n, nil
}

// latestFirst 调用方需持有 db.mu
func (m *mockReportRepo) latestFirst(keep func(*model.Report) bool) []model.Report {
	var out []model.Report
	for id, r := range m.db.reports {
		if keep(r) {
			out = append(out, *m.db.report(id))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return m.db.reportSeq[out[i].ReportID] > m.db.reportSeq[out[j].ReportID]
	})
	return out
}

func (m *mockReportRepo) ListByStudent(_ context.Context, studentID string) ([]model.Report, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	return m.latestFirst(func(r *model.Report) bool { return r.StudentID == studentID }), nil
}

func (m *mockReportRepo) ListByStudents(_ context.Context, studentIDs []string) ([]model.Report, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	set := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		set[id] = true
	}
	return m.latestFirst(func(r *model.Report) bool { return set[r.StudentID] }), nil
}

func (m *mockReportRepo) List(_ context.Context, filter repository.ReportFilter, offset, limit int) ([]model.Report, int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := m.latestFirst(func(r *model.Report) bool {
		return (filter.StudentID == "" || r.StudentID == filter.StudentID) &&
			(filter.Status == "" || r.Status == filter.Status) &&
			(filter.Version == "" || r.Version == filter.Version)
	})
	return page(out, offset, limit), int64(len(out)), nil
}

func (m *mockReportRepo) UpdateStatus(_ context.Context, report *model.Report) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	stored, ok := m.db.reports[report.ReportID]
	if !ok || stored.LockVersion != report.LockVersion {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = report.Status
	stored.ValidatedAt = report.ValidatedAt
	stored.LockVersion++
	report.LockVersion = stored.LockVersion
	return nil
}

func (m *mockReportRepo) CountByStatus(_ context.Context) (map[model.ReportStatus]int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := make(map[model.ReportStatus]int64)
	for _, r := range m.db.reports {
		out[r.Status]++
	}
	return out, nil
}

// ── remarks ──

type mockRemarkRepo struct{ db *memDB }

func (m *mockRemarkRepo) Create(_ context.Context, remark *model.Remark) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if remark.RemarkID == "" {
		remark.RemarkID = m.db.nextID("remark")
	}
	c := *remark
	c.Professor = nil
	m.db.remarks = append(m.db.remarks, c)
	return nil
}

func (m *mockRemarkRepo) ListByReport(_ context.Context, reportID string) ([]model.Remark, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []model.Remark
	for _, r := range m.db.remarks {
		if r.ReportID == reportID {
			r.Professor = m.db.professor(r.ProfessorID)
			out = append(out, r)
		}
	}
	return out, nil
}

// ── 答辩模块 DTO ──

type mockDefenseRepo struct{ db *memDB }

func (m *mockDefenseRepo) Create(_ context.Context, defense *model.Defense) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if defense.DefenseID == "" {
		defense.DefenseID = m.db.nextID("defense")
	}
	c := *defense
	c.Student, c.Report, c.Jury = nil, nil, nil
	m.db.defenses[defense.DefenseID] = &c
	return nil
}

func (m *mockDefenseRepo) GetByID(_ context.Context, id string) (*model.Defense, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if d := m.db.defense(id); d != nil {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDefenseRepo) LockByID(ctx context.Context, id string) (*model.Defense, error) {
	return m.GetByID(ctx, id)
}

func (m *mockDefenseRepo) List(_ context.Context, filter repository.DefenseFilter, offset, limit int) ([]model.Defense, int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := m.db.sortedDefenses(func(d *model.Defense) bool {
		if filter.Status != "" && d.Status != filter.Status {
			return false
		}
		if filter.From != nil && d.ScheduledAt.Before(*filter.From) {
			return false
		}
		if filter.To != nil && !d.ScheduledAt.Before(*filter.To) {
			return false
		}
		return true
	})
	return page(out, offset, limit), int64(len(out)), nil
}

func (m *mockDefenseRepo) ListByStudent(_ context.Context, studentID string) ([]model.Defense, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := m.db.sortedDefenses(func(d *model.Defense) bool { return d.StudentID == studentID })
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (m *mockDefenseRepo) ListByJuryMember(_ context.Context, professorID string) ([]model.Defense, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	member := make(map[string]bool)
	for _, a := range m.db.jury {
		if a.ProfessorID == professorID {
			member[a.DefenseID] = true
		}
	}
	return m.db.sortedDefenses(func(d *model.Defense) bool { return member[d.DefenseID] }), nil
}

func (m *mockDefenseRepo) Update(_ context.Context, defense *model.Defense) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	stored, ok := m.db.defenses[defense.DefenseID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.ReportID = defense.ReportID
	stored.ScheduledAt = defense.ScheduledAt
	stored.Salle = defense.Salle
	stored.Status = defense.Status
	return nil
}

func (m *mockDefenseRepo) Delete(_ context.Context, id string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	delete(m.db.defenses, id)
	kept := m.db.jury[:0]
	for _, a := range m.db.jury {
		if a.DefenseID != id {
			kept = append(kept, a)
		}
	}
	m.db.jury = kept
	return nil
}

func (m *mockDefenseRepo) CompleteElapsed(_ context.Context, now time.Time) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var n int64
	for _, d := range m.db.defenses {
		if d.Status == model.DefenseStatusScheduled && d.ScheduledAt.Before(now) {
			d.Status = model.DefenseStatusCompleted
			n++
		}
	}
	return n, nil
}

func (m *mockDefenseRepo) CountByStatus(_ context.Context) (map[model.DefenseStatus]int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := make(map[model.DefenseStatus]int64)
	for _, d := range m.db.defenses {
		out[d.Status]++
	}
	return out, nil
}

// ── 评审团 ──

type mockJuryRepo struct{ db *memDB }

func (m *mockJuryRepo) DeleteByDefense(_ context.Context, defenseID string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	kept := m.db.jury[:0]
	for _, a := range m.db.jury {
		if a.DefenseID != defenseID {
			kept = append(kept, a)
		}
	}
	m.db.jury = kept
	return nil
}

func (m *mockJuryRepo) BatchCreate(_ context.Context, assignments []model.JuryAssignment) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, a := range assignments {
		if a.JuryAssignmentID == "" {
			a.JuryAssignmentID = m.db.nextID("seat")
		}
		a.Professor = nil
		m.db.jury = append(m.db.jury, a)
	}
	return nil
}

func (m *mockJuryRepo) ListByDefense(_ context.Context, defenseID string) ([]model.JuryAssignment, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	return m.db.seats(defenseID), nil
}

// ── contact messages ──

type mockContactRepo struct{ db *memDB }

func (m *mockContactRepo) Create(_ context.Context, msg *model.ContactMessage) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if msg.ContactMessageID == "" {
		msg.ContactMessageID = m.db.nextID("msg")
	}
	c := *msg
	m.db.messages[msg.ContactMessageID] = &c
	return nil
}

func (m *mockContactRepo) GetByID(_ context.Context, id string) (*model.ContactMessage, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if msg, ok := m.db.messages[id]; ok {
		c := *msg
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockContactRepo) List(_ context.Context, unreadOnly bool, offset, limit int) ([]model.ContactMessage, int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []model.ContactMessage
	for _, msg := range m.db.messages {
		if unreadOnly && msg.IsRead {
			continue
		}
		out = append(out, *msg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContactMessageID < out[j].ContactMessageID })
	return page(out, offset, limit), int64(len(out)), nil
}

func (m *mockContactRepo) MarkRead(_ context.Context, id string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if msg, ok := m.db.messages[id]; ok {
		msg.IsRead = true
	}
	return nil
}

func (m *mockContactRepo) Delete(_ context.Context, id string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	delete(m.db.messages, id)
	return nil
}

func (m *mockContactRepo) CountUnread(_ context.Context) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var n int64
	for _, msg := range m.db.messages {
		if !msg.IsRead {
			n++
		}
	}
	return n, nil
}
