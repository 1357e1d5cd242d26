package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/dto"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/model"
	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/service"
	apperrors "github.com/SouhailBechchari/Emsoutenance-sub000/pkg/errors"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testReportID  = "9d2f6c4a-3b1e-4f7a-8c5d-0e1f2a3b4c5d"
	testDefenseID = "5e8a1b2c-7d3f-4a6e-9b0c-1d2e3f4a5b6c"
	testStudentID = "a1b2c3d4-e5f6-4789-8abc-def012345678"
)

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	logoutJTI     string
	logoutExp     time.Time
	profileResult *dto.ProfileResponse
	profileErr    error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, jti string, exp time.Time) error {
	m.logoutJTI, m.logoutExp = jti, exp
	return nil
}
func (m *mockAuthService) GetCurrentUser(_ context.Context, userID string) (*dto.UserResponse, error) {
	return &dto.UserResponse{ID: userID}, nil
}
func (m *mockAuthService) GetProfile(_ context.Context, _ string) (*dto.ProfileResponse, error) {
	return m.profileResult, m.profileErr
}
func (m *mockAuthService) UpdateProfile(_ context.Context, _ string, _ *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	return m.profileResult, m.profileErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return nil
}
func (m *mockAuthService) EnsureAdmin(_ context.Context) error { return nil }

// ── Mock ReportService ──

type mockReportService struct {
	gotUpload  *service.Upload
	gotContent []byte
	gotRole    model.Role
	submitErr  error
	remarksErr error
}

func (m *mockReportService) Submit(_ context.Context, _ string, file *service.Upload) (*dto.ReportResponse, error) {
	m.gotUpload = file
	if file != nil {
		m.gotContent, _ = io.ReadAll(file.Content)
	}
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	if file == nil {
		return nil, service.ErrFileRequired.WithField("file", "required")
	}
	return &dto.ReportResponse{ID: "r-1", OriginalFilename: file.Filename, Version: "initial", Status: "pending"}, nil
}
func (m *mockReportService) ListMine(_ context.Context, _ string) ([]dto.ReportResponse, error) {
	return []dto.ReportResponse{}, nil
}
func (m *mockReportService) ListRemarks(_ context.Context, _ string, role model.Role, _ string) ([]dto.RemarkResponse, error) {
	m.gotRole = role
	return []dto.RemarkResponse{}, m.remarksErr
}
func (m *mockReportService) ListForProfessor(_ context.Context, _ string) ([]dto.ReportResponse, error) {
	return nil, nil
}
func (m *mockReportService) AddRemark(_ context.Context, _, _ string, _ *dto.AddRemarkRequest) (*dto.RemarkResponse, error) {
	return nil, nil
}
func (m *mockReportService) Validate(_ context.Context, _, _ string) (*dto.ReportResponse, error) {
	return nil, nil
}
func (m *mockReportService) List(_ context.Context, _ *dto.ReportListRequest) ([]dto.ReportResponse, int64, error) {
	return nil, 0, nil
}
func (m *mockReportService) Finalize(_ context.Context, _ string) (*dto.ReportResponse, error) {
	return nil, service.ErrReportNotValidated
}
func (m *mockReportService) SetStatus(_ context.Context, _ string, _ *dto.SetReportStatusRequest) (*dto.ReportResponse, error) {
	return nil, apperrors.ErrOptimisticLock
}

// ── Mock DefenseService / JuryService ──

type mockDefenseService struct {
	forStudent *dto.DefenseResponse
	listResult []dto.DefenseResponse
	listTotal  int64
	gotList    *dto.DefenseListRequest
}

func (m *mockDefenseService) Schedule(_ context.Context, _ *dto.CreateDefenseRequest) (*dto.DefenseResponse, error) {
	return nil, service.ErrReportStudentMismatch
}
func (m *mockDefenseService) Reschedule(_ context.Context, _ string, _ *dto.UpdateDefenseRequest) (*dto.DefenseResponse, error) {
	return nil, nil
}
func (m *mockDefenseService) Remove(_ context.Context, _ string) error {
	return service.ErrDefenseNotFound
}
func (m *mockDefenseService) GetByID(_ context.Context, _ string) (*dto.DefenseResponse, error) {
	return nil, errors.New("connection reset")
}
func (m *mockDefenseService) List(_ context.Context, req *dto.DefenseListRequest) ([]dto.DefenseResponse, int64, error) {
	m.gotList = req
	return m.listResult, m.listTotal, nil
}
func (m *mockDefenseService) GetForStudent(_ context.Context, _ string) (*dto.DefenseResponse, error) {
	return m.forStudent, nil
}
func (m *mockDefenseService) ListForJuryMember(_ context.Context, _ string) ([]dto.JuryDefenseResponse, error) {
	return nil, nil
}

type mockJuryService struct {
	assignCalls int
}

func (m *mockJuryService) Assign(_ context.Context, _ string, _ *dto.AssignJuryRequest) (*dto.DefenseResponse, error) {
	m.assignCalls++
	return nil, service.ErrJuryTooSmall.WithField("members", "at least 2 members required")
}
func (m *mockJuryService) List(_ context.Context, _ string) ([]dto.JuryMemberResponse, error) {
	return []dto.JuryMemberResponse{}, nil
}

// ── Mock StudentService ──

type mockStudentService struct {
	parsed   []service.ImportStudentRow
	parseErr error
}

func (m *mockStudentService) Create(_ context.Context, _ *dto.CreateStudentRequest) (*dto.CreateStudentResponse, error) {
	return nil, service.ErrEmailExists
}
func (m *mockStudentService) GetByID(_ context.Context, _ string) (*dto.StudentResponse, error) {
	return nil, service.ErrStudentNotFound
}
func (m *mockStudentService) List(_ context.Context, _ *dto.StudentListRequest) ([]dto.StudentResponse, int64, error) {
	return nil, 0, nil
}
func (m *mockStudentService) Update(_ context.Context, _ string, _ *dto.UpdateStudentRequest) (*dto.StudentResponse, error) {
	return nil, nil
}
func (m *mockStudentService) Delete(_ context.Context, _ string) error { return nil }
func (m *mockStudentService) ParseImportFile(_ io.Reader) ([]service.ImportStudentRow, error) {
	return m.parsed, m.parseErr
}
func (m *mockStudentService) ImportStudents(_ context.Context, rows []service.ImportStudentRow) (*dto.ImportStudentResponse, error) {
	return &dto.ImportStudentResponse{Total: len(rows), Success: len(rows)}, nil
}

// ── Mock ExportService ──

type mockExportService struct {
	body     []byte
	filename string
	err      error
}

func (m *mockExportService) ScheduleWorkbook(_ context.Context, _ *dto.DefenseListRequest) (*bytes.Buffer, string, error) {
	return bytes.NewBuffer(m.body), m.filename, m.err
}
func (m *mockExportService) ScheduleCalendar(_ context.Context, _ *dto.DefenseListRequest) ([]byte, string, error) {
	return m.body, m.filename, m.err
}
func (m *mockExportService) JuryCalendar(_ context.Context, _ string) ([]byte, string, error) {
	return m.body, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context, role model.Role) {
	c.Set(CtxUserID, "test-user-id")
	c.Set(CtxRole, string(role))
	c.Set(CtxTokenJTI, "test-jti")
	c.Set(CtxTokenExp, time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC))
}

// serve 注册单个路由并执行一次请求
func serve(method, path, route string, body io.Reader, contentType string, role model.Role, h gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	r := gin.New()
	r.Handle(method, route, func(c *gin.Context) {
		if role != "" {
			setAuth(c, role)
		}
		h(c)
	})
	r.ServeHTTP(w, req)
	return w
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func multipartBody(t *testing.T, field, filename string, content []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(content)
	} else {
		mw.WriteField("note", "no file")
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

var nop = zap.NewNop()

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{loginResult: &dto.TokenResponse{AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 3600}}
	h := NewAuthHandler(mock, nop)

	w := serve("POST", "/api/login", "/api/login",
		jsonBody(dto.LoginRequest{Email: "a@b.ma", Password: "secret123"}), "application/json", "", h.Login)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nop)

	w := serve("POST", "/api/login", "/api/login", bytes.NewReader([]byte("invalid json")), "application/json", "", h.Login)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != codeBadRequest {
		t.Errorf("expected code %d, got %d", codeBadRequest, resp.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials}, nop)

	w := serve("POST", "/api/login", "/api/login",
		jsonBody(dto.LoginRequest{Email: "a@b.ma", Password: "wrong-one"}), "application/json", "", h.Login)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Logout_PassesTokenIdentity(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock, nop)

	w := serve("POST", "/api/logout", "/api/logout", nil, "", model.RoleStudent, h.Logout)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.logoutJTI != "test-jti" {
		t.Errorf("expected jti test-jti, got %q", mock.logoutJTI)
	}
	if mock.logoutExp.IsZero() {
		t.Error("expected token expiry to be forwarded")
	}
}

func TestAuthHandler_GetProfile_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nop)

	w := serve("GET", "/api/profile", "/api/profile", nil, "", "", h.GetProfile)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_UpdateProfile_EmailTaken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{profileErr: service.ErrEmailExists}, nop)

	email := "taken@b.ma"
	w := serve("PUT", "/api/profile", "/api/profile",
		jsonBody(dto.UpdateProfileRequest{Email: &email}), "application/json", model.RoleProfessor, h.UpdateProfile)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ReportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestReportHandler_Submit_Multipart(t *testing.T) {
	mock := &mockReportService{}
	h := NewReportHandler(mock, nop)
	content := []byte("%PDF-1.7 report body")
	body, ct := multipartBody(t, "file", "rapport.pdf", content)

	w := serve("POST", "/api/students/reports", "/api/students/reports", body, ct, model.RoleStudent, h.Submit)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if mock.gotUpload == nil || mock.gotUpload.Filename != "rapport.pdf" {
		t.Fatalf("expected upload rapport.pdf, got %+v", mock.gotUpload)
	}
	if mock.gotUpload.Size != int64(len(content)) {
		t.Errorf("expected size %d, got %d", len(content), mock.gotUpload.Size)
	}
	if !bytes.Equal(mock.gotContent, content) {
		t.Error("upload content not forwarded intact")
	}
}

func TestReportHandler_Submit_MissingFile(t *testing.T) {
	mock := &mockReportService{}
	h := NewReportHandler(mock, nop)
	body, ct := multipartBody(t, "", "", nil)

	w := serve("POST", "/api/students/reports", "/api/students/reports", body, ct, model.RoleStudent, h.Submit)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14002 {
		t.Errorf("expected code 14002, got %d", resp.Code)
	}
	if resp.Errors["file"] == "" {
		t.Error("expected a field error on file")
	}
}

func TestReportHandler_Submit_BodyOverLimit(t *testing.T) {
	mock := &mockReportService{}
	h := NewReportHandler(mock, nop)
	body, ct := multipartBody(t, "file", "rapport.pdf", bytes.Repeat([]byte("%PDF"), 4096))

	r := gin.New()
	r.POST("/api/students/reports", func(c *gin.Context) {
		setAuth(c, model.RoleStudent)
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 1024)
		h.Submit(c)
	})
	req := httptest.NewRequest("POST", "/api/students/reports", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	if resp := parseResponse(w); resp.Code != 14003 {
		t.Errorf("expected code 14003, got %d", resp.Code)
	}
	if mock.gotUpload != nil {
		t.Error("service must not receive a truncated upload")
	}
}

func TestReportHandler_Submit_TooManyParts(t *testing.T) {
	h := NewReportHandler(&mockReportService{}, nop)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i := 0; i < 1100; i++ {
		mw.WriteField("note", "x")
	}
	mw.Close()

	w := serve("POST", "/api/students/reports", "/api/students/reports", &buf, mw.FormDataContentType(), model.RoleStudent, h.Submit)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 14003 {
		t.Errorf("expected code 14003, got %d", resp.Code)
	}
}

func TestReportHandler_Submit_AccessDenied(t *testing.T) {
	h := NewReportHandler(&mockReportService{submitErr: service.ErrAccessDenied}, nop)
	body, ct := multipartBody(t, "file", "rapport.pdf", []byte("%PDF-1.7"))

	w := serve("POST", "/api/students/reports", "/api/students/reports", body, ct, model.RoleStudent, h.Submit)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Message != "access denied" {
		t.Errorf("expected message %q, got %q", "access denied", resp.Message)
	}
}

func TestReportHandler_ListRemarks_ForwardsRole(t *testing.T) {
	mock := &mockReportService{}
	h := NewReportHandler(mock, nop)

	w := serve("GET", "/api/professors/reports/"+testReportID+"/remarks", "/api/professors/reports/:id/remarks",
		nil, "", model.RoleProfessor, h.ListRemarks)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.gotRole != model.RoleProfessor {
		t.Errorf("expected role professor, got %q", mock.gotRole)
	}
}

func TestReportHandler_Finalize_NotValidated(t *testing.T) {
	h := NewReportHandler(&mockReportService{}, nop)

	w := serve("POST", "/api/admin/reports/"+testReportID+"/finalize", "/api/admin/reports/:id/finalize",
		nil, "", model.RoleAdmin, h.Finalize)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Message != "rapporteur must validate first" {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestReportHandler_SetStatus_OptimisticLock(t *testing.T) {
	h := NewReportHandler(&mockReportService{}, nop)

	w := serve("PUT", "/api/admin/reports/"+testReportID+"/status", "/api/admin/reports/:id/status",
		jsonBody(dto.SetReportStatusRequest{Status: "rejected"}), "application/json", model.RoleAdmin, h.SetStatus)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestReportHandler_SetStatus_InvalidStatus(t *testing.T) {
	h := NewReportHandler(&mockReportService{}, nop)

	w := serve("PUT", "/api/admin/reports/"+testReportID+"/status", "/api/admin/reports/:id/status",
		jsonBody(map[string]string{"status": "archived"}), "application/json", model.RoleAdmin, h.SetStatus)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// DefenseHandler Tests
// ═══════════════════════════════════════════════════════════

func TestDefenseHandler_MyDefense_NoneScheduled(t *testing.T) {
	h := NewDefenseHandler(&mockDefenseService{}, &mockJuryService{}, nop)

	w := serve("GET", "/api/students/defense", "/api/students/defense", nil, "", model.RoleStudent, h.MyDefense)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Data != nil {
		t.Errorf("expected null data, got %v", resp.Data)
	}
}

func TestDefenseHandler_Create_Mismatch(t *testing.T) {
	h := NewDefenseHandler(&mockDefenseService{}, &mockJuryService{}, nop)
	reportID := "7b7c1f2e-5a1d-4c1b-9c55-1f0a4cf2d9b1"

	w := serve("POST", "/api/admin/defenses", "/api/admin/defenses", jsonBody(dto.CreateDefenseRequest{
		StudentID:   "0f8fad5b-d9cb-469f-a165-70867728950e",
		ReportID:    &reportID,
		ScheduledAt: time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC),
		Salle:       "B12",
	}), "application/json", model.RoleAdmin, h.Create)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	if resp := parseResponse(w); resp.Message != "report/student mismatch" {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestDefenseHandler_Delete_NotFound(t *testing.T) {
	h := NewDefenseHandler(&mockDefenseService{}, &mockJuryService{}, nop)

	w := serve("DELETE", "/api/admin/defenses/"+testDefenseID, "/api/admin/defenses/:id", nil, "", model.RoleAdmin, h.Delete)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestDefenseHandler_Get_InternalError(t *testing.T) {
	h := NewDefenseHandler(&mockDefenseService{}, &mockJuryService{}, nop)

	w := serve("GET", "/api/admin/defenses/"+testDefenseID, "/api/admin/defenses/:id", nil, "", model.RoleAdmin, h.Get)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestDefenseHandler_AssignJury_TooSmall(t *testing.T) {
	h := NewDefenseHandler(&mockDefenseService{}, &mockJuryService{}, nop)

	w := serve("PUT", "/api/admin/defenses/"+testDefenseID+"/jury", "/api/admin/defenses/:id/jury", jsonBody(dto.AssignJuryRequest{
		Members: []dto.JuryMemberRequest{{ProfessorID: "0f8fad5b-d9cb-469f-a165-70867728950e", Role: "president"}},
	}), "application/json", model.RoleAdmin, h.AssignJury)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Errors["members"] == "" {
		t.Error("expected a field error on members")
	}
}

func TestDefenseHandler_AssignJury_MalformedDefenseID(t *testing.T) {
	jury := &mockJuryService{}
	h := NewDefenseHandler(&mockDefenseService{}, jury, nop)

	w := serve("PUT", "/api/admin/defenses/x/jury", "/api/admin/defenses/:id/jury", jsonBody(dto.AssignJuryRequest{
		Members: []dto.JuryMemberRequest{
			{ProfessorID: "0f8fad5b-d9cb-469f-a165-70867728950e", Role: "president"},
			{ProfessorID: "7b7c1f2e-5a1d-4c1b-9c55-1f0a4cf2d9b1", Role: "rapporteur"},
		},
	}), "application/json", model.RoleAdmin, h.AssignJury)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
	if resp := parseResponse(w); resp.Code != 15001 {
		t.Errorf("expected code 15001, got %d", resp.Code)
	}
	if jury.assignCalls != 0 {
		t.Errorf("service must not be reached, got %d calls", jury.assignCalls)
	}
}

func TestDefenseHandler_AssignJury_MalformedProfessorID(t *testing.T) {
	jury := &mockJuryService{}
	h := NewDefenseHandler(&mockDefenseService{}, jury, nop)

	w := serve("PUT", "/api/admin/defenses/"+testDefenseID+"/jury", "/api/admin/defenses/:id/jury", jsonBody(dto.AssignJuryRequest{
		Members: []dto.JuryMemberRequest{
			{ProfessorID: "0f8fad5b-d9cb-469f-a165-70867728950e", Role: "president"},
			{ProfessorID: "abc", Role: "rapporteur"},
		},
	}), "application/json", model.RoleAdmin, h.AssignJury)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp.Code != 16003 {
		t.Errorf("expected code 16003, got %d", resp.Code)
	}
	if resp.Errors["members.1.professor_id"] == "" {
		t.Errorf("expected a field error on members.1.professor_id, got %v", resp.Errors)
	}
	if jury.assignCalls != 0 {
		t.Errorf("service must not be reached, got %d calls", jury.assignCalls)
	}
}

func TestReportHandler_Finalize_MalformedID(t *testing.T) {
	h := NewReportHandler(&mockReportService{}, nop)

	for _, id := range []string{"r-1", "abc", "zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz"} {
		w := serve("POST", "/api/admin/reports/"+id+"/finalize", "/api/admin/reports/:id/finalize",
			nil, "", model.RoleAdmin, h.Finalize)

		if w.Code != http.StatusNotFound {
			t.Errorf("id %q: expected 404, got %d", id, w.Code)
		}
	}
}

func TestDefenseHandler_List_Paginated(t *testing.T) {
	mock := &mockDefenseService{listResult: []dto.DefenseResponse{{ID: "d-1"}}, listTotal: 41}
	h := NewDefenseHandler(mock, &mockJuryService{}, nop)

	w := serve("GET", "/api/admin/defenses?status=scheduled&page=2&page_size=20", "/api/admin/defenses",
		nil, "", model.RoleAdmin, h.List)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.gotList == nil || mock.gotList.Status != "scheduled" {
		t.Fatalf("status filter not bound: %+v", mock.gotList)
	}
	var body struct {
		Data response.PageData `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.Pagination.TotalPages != 3 || body.Data.Pagination.Page != 2 {
		t.Errorf("unexpected pagination %+v", body.Data.Pagination)
	}
}

// ═══════════════════════════════════════════════════════════
// StudentHandler Tests
// ═══════════════════════════════════════════════════════════

func TestStudentHandler_Import_MissingFile(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{}, nop)
	body, ct := multipartBody(t, "", "", nil)

	w := serve("POST", "/api/admin/students/import", "/api/admin/students/import", body, ct, model.RoleAdmin, h.Import)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 12008 {
		t.Errorf("expected code 12008, got %d", resp.Code)
	}
}

func TestStudentHandler_Import_Success(t *testing.T) {
	mock := &mockStudentService{parsed: []service.ImportStudentRow{{Row: 2}, {Row: 3}}}
	h := NewStudentHandler(mock, nop)
	body, ct := multipartBody(t, "file", "students.xlsx", []byte("PK fake"))

	w := serve("POST", "/api/admin/students/import", "/api/admin/students/import", body, ct, model.RoleAdmin, h.Import)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data, _ := parseResponse(w).Data.(map[string]interface{})
	if data["success"] != float64(2) {
		t.Errorf("expected 2 imported, got %v", data["success"])
	}
}

func TestStudentHandler_Import_Unreadable(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{parseErr: service.ErrImportUnreadable}, nop)
	body, ct := multipartBody(t, "file", "students.xlsx", []byte("nope"))

	w := serve("POST", "/api/admin/students/import", "/api/admin/students/import", body, ct, model.RoleAdmin, h.Import)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
}

func TestStudentHandler_Get_NotFound(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{}, nop)

	w := serve("GET", "/api/admin/students/"+testStudentID, "/api/admin/students/:id", nil, "", model.RoleAdmin, h.Get)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ScheduleWorkbook_Headers(t *testing.T) {
	mock := &mockExportService{body: []byte("xlsx-bytes"), filename: "soutenances_20260615.xlsx"}
	h := NewExportHandler(mock, nop)

	w := serve("GET", "/api/admin/schedule/export", "/api/admin/schedule/export", nil, "", model.RoleAdmin, h.ScheduleWorkbook)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != contentTypeXLSX {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != "attachment; filename*=UTF-8''soutenances_20260615.xlsx" {
		t.Errorf("unexpected disposition %q", cd)
	}
	if w.Body.String() != "xlsx-bytes" {
		t.Error("body not written")
	}
}

func TestExportHandler_JuryCalendar_NotAProfessor(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrProfessorNotFound}, nop)

	w := serve("GET", "/api/professors/jury-defenses/calendar", "/api/professors/jury-defenses/calendar",
		nil, "", model.RoleProfessor, h.JuryCalendar)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestExportHandler_GenerateFailure(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportGenerateFail}, nop)

	w := serve("GET", "/api/admin/schedule/calendar", "/api/admin/schedule/calendar", nil, "", model.RoleAdmin, h.ScheduleCalendar)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}
