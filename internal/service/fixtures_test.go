package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SouhailBechchari/Emsoutenance-sub000/config"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/model"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/repository"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/clock"
)

// ── mock file store ──

type mockStore struct {
	mu      sync.Mutex
	n       int
	files   map[string][]byte
	removed []string
	saveErr error
}

func newMockStore() *mockStore {
	return &mockStore{files: make(map[string][]byte)}
}

func (m *mockStore) Save(_ context.Context, dir, originalName string, r io.Reader) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	rel := fmt.Sprintf("%s/file-%d%s", dir, m.n, strings.ToLower(filepath.Ext(originalName)))
	m.files[rel] = data
	return rel, nil
}

func (m *mockStore) Remove(_ context.Context, relPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, relPath)
	m.removed = append(m.removed, relPath)
	return nil
}

func (m *mockStore) URL(relPath string) string {
	return "http://test.local/storage/" + relPath
}

// ── test environment ──

var testNow = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	repo  *repository.Repository
	db    *memDB
	clock *clock.Fixed
	store *mockStore
	cfg   *config.Config

	lifecycle *Lifecycle
	reports   ReportService
	defenses  DefenseService
	jury      JuryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo, db := newTestRepo()
	cfg := &config.Config{
		Storage: config.StorageConfig{
			MaxUploadBytes:    10 << 20,
			AllowedExtensions: []string{".pdf", ".docx"},
		},
		Lifecycle: config.LifecycleConfig{ReconcileOnRead: true},
	}
	clk := clock.NewFixed(testNow)
	store := newMockStore()
	logger := zap.NewNop()
	lifecycle := NewLifecycle(repo, clk, true, logger)

	return &testEnv{
		repo:      repo,
		db:        db,
		clock:     clk,
		store:     store,
		cfg:       cfg,
		lifecycle: lifecycle,
		reports:   NewReportService(&cfg.Storage, repo, store, clk, logger),
		defenses:  NewDefenseService(repo, lifecycle, store, logger),
		jury:      NewJuryService(repo, store, logger),
	}
}

// seedProfessor 返回 (userID, professorID)
func (e *testEnv) seedProfessor(t *testing.T, name string) (string, string) {
	t.Helper()
	ctx := context.Background()
	user := &model.User{
		Name:  name,
		Email: strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@ecole.test",
		Role:  model.RoleProfessor,
		Type:  model.ProfessorTypeNone,
	}
	if err := e.repo.User.Create(ctx, user); err != nil {
		t.Fatalf("seed professor user: %v", err)
	}
	prof := &model.Professor{UserID: user.UserID, Specialite: "Informatique"}
	if err := e.repo.Professor.Create(ctx, prof); err != nil {
		t.Fatalf("seed professor: %v", err)
	}
	return user.UserID, prof.ProfessorID
}

// seedStudent 返回 (userID, studentID)，导师 ID 为空时保持 NULL
func (e *testEnv) seedStudent(t *testing.T, name, encadrantID, rapporteurID string) (string, string) {
	t.Helper()
	ctx := context.Background()
	user := &model.User{
		Name:  name,
		Email: strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@etu.test",
		Role:  model.RoleStudent,
		Type:  model.ProfessorTypeNone,
	}
	if err := e.repo.User.Create(ctx, user); err != nil {
		t.Fatalf("seed student user: %v", err)
	}
	student := &model.Student{
		UserID:       user.UserID,
		Matricule:    "M-" + user.UserID,
		Filiere:      "GI",
		StageType:    model.StageTypePFE,
		EncadrantID:  optionalID(&encadrantID),
		RapporteurID: optionalID(&rapporteurID),
	}
	if err := e.repo.Student.Create(ctx, student); err != nil {
		t.Fatalf("seed student: %v", err)
	}
	return user.UserID, student.StudentID
}

// seedDefense 直接写入答辩，绕过 Schedule
func (e *testEnv) seedDefense(t *testing.T, studentID string, at time.Time, status model.DefenseStatus) string {
	t.Helper()
	d := &model.Defense{StudentID: studentID, ScheduledAt: at, Salle: "Salle 1", Status: status}
	if err := e.repo.Defense.Create(context.Background(), d); err != nil {
		t.Fatalf("seed defense: %v", err)
	}
	return d.DefenseID
}

func (e *testEnv) defenseStatus(id string) model.DefenseStatus {
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	return e.db.defenses[id].Status
}

func (e *testEnv) reportStatus(id string) model.ReportStatus {
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	return e.db.reports[id].Status
}

// pdfUpload 能被识别为 application/pdf 的最小文件
func pdfUpload(name string) *Upload {
	content := []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n")
	return &Upload{Filename: name, Size: int64(len(content)), Content: bytes.NewReader(content)}
}
