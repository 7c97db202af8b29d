package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"lifeblood/backend/internal/dto"
	"lifeblood/backend/internal/model"
	"lifeblood/backend/internal/repository"
	"lifeblood/backend/internal/service"
	pkgerrors "lifeblood/backend/pkg/errors"
	"lifeblood/backend/pkg/jwt"
	"lifeblood/backend/pkg/response"
	"lifeblood/backend/pkg/validate"
)

func init() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validate.Register(v); err != nil {
			panic(err)
		}
	}
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	registerResult *dto.RegisterResponse
	registerErr    error
	staffResult    *dto.TokenResponse
	staffErr       error
	loginResult    *dto.TokenResponse
	loginErr       error
	refreshResult  *dto.TokenResponse
	refreshErr     error
	logoutErr      error
	logoutClaims   *jwt.Claims
	sessionResult  *dto.AccountResponse
	sessionErr     error
	forgotResult   *dto.ForgotPasswordResponse
	forgotErr      error
}

func (m *mockAuthService) RegisterDonor(_ context.Context, _ *dto.RegisterDonorRequest) (*dto.RegisterResponse, error) {
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) RegisterStaff(_ context.Context, _ *dto.RegisterStaffRequest) (*dto.TokenResponse, error) {
	return m.staffResult, m.staffErr
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, claims *jwt.Claims) error {
	m.logoutClaims = claims
	return m.logoutErr
}
func (m *mockAuthService) GetSession(_ context.Context, _ model.Session) (*dto.AccountResponse, error) {
	return m.sessionResult, m.sessionErr
}
func (m *mockAuthService) ForgotPassword(_ context.Context, _ string) (*dto.ForgotPasswordResponse, error) {
	return m.forgotResult, m.forgotErr
}

// ── Mock DonorService ──

type mockDonorService struct {
	profileResult *dto.DonorProfileResponse
	profileErr    error
	updateErr     error
	changePassErr error
	deactivateErr error
	deleteErr     error
	lastDonorID   string
}

func (m *mockDonorService) GetProfile(_ context.Context, donorID string) (*dto.DonorProfileResponse, error) {
	m.lastDonorID = donorID
	return m.profileResult, m.profileErr
}
func (m *mockDonorService) UpdateProfile(_ context.Context, donorID string, _ *dto.UpdateProfileRequest) (*dto.DonorProfileResponse, error) {
	m.lastDonorID = donorID
	return m.profileResult, m.updateErr
}
func (m *mockDonorService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}
func (m *mockDonorService) Deactivate(_ context.Context, _ string, _ *jwt.Claims) error {
	return m.deactivateErr
}
func (m *mockDonorService) DeleteAccount(_ context.Context, _ string, _ *jwt.Claims) error {
	return m.deleteErr
}

// ── Mock BloodRequestService ──

type mockBloodRequestService struct {
	result         *dto.BloodRequestResponse
	err            error
	listResult     []dto.BloodRequestResponse
	listTotal      int64
	listErr        error
	lastList       *dto.ListBloodRequestsRequest
	scheduleResult *dto.ScheduleDonorResponse
	scheduleErr    error
	deleteErr      error
	cleared        int64
}

func (m *mockBloodRequestService) Create(_ context.Context, _ *dto.CreateBloodRequestRequest) (*dto.BloodRequestResponse, error) {
	return m.result, m.err
}
func (m *mockBloodRequestService) Get(_ context.Context, _ string) (*dto.BloodRequestResponse, error) {
	return m.result, m.err
}
func (m *mockBloodRequestService) List(_ context.Context, req *dto.ListBloodRequestsRequest) ([]dto.BloodRequestResponse, int64, error) {
	m.lastList = req
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockBloodRequestService) ScheduleDonor(_ context.Context, _ string, _ *dto.ScheduleDonorRequest) (*dto.ScheduleDonorResponse, error) {
	return m.scheduleResult, m.scheduleErr
}
func (m *mockBloodRequestService) MarkFulfilled(_ context.Context, _ string) (*dto.BloodRequestResponse, error) {
	return m.result, m.err
}
func (m *mockBloodRequestService) Cancel(_ context.Context, _ string) (*dto.BloodRequestResponse, error) {
	return m.result, m.err
}
func (m *mockBloodRequestService) Delete(_ context.Context, _ string) error {
	return m.deleteErr
}
func (m *mockBloodRequestService) Clear(_ context.Context) (int64, error) {
	return m.cleared, nil
}

// ── Mock AppointmentService ──

type mockAppointmentService struct {
	result     *dto.AppointmentResponse
	err        error
	listResult []dto.AppointmentResponse
	listErr    error
	cleared    int64
}

func (m *mockAppointmentService) Schedule(_ context.Context, _ string, _ *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	return m.result, m.err
}
func (m *mockAppointmentService) ListMine(_ context.Context, _ string) ([]dto.AppointmentResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockAppointmentService) List(_ context.Context, _ *dto.ListAppointmentsRequest) ([]dto.AppointmentResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockAppointmentService) Confirm(_ context.Context, _ string) (*dto.AppointmentResponse, error) {
	return m.result, m.err
}
func (m *mockAppointmentService) Reject(_ context.Context, _ string) (*dto.AppointmentResponse, error) {
	return m.result, m.err
}
func (m *mockAppointmentService) Complete(_ context.Context, _ string) (*dto.AppointmentResponse, error) {
	return m.result, m.err
}
func (m *mockAppointmentService) Delete(_ context.Context, _ string) error {
	return m.err
}
func (m *mockAppointmentService) ClearHistory(_ context.Context) (int64, error) {
	return m.cleared, nil
}

// ── Mock NotificationService ──

type mockNotificationService struct {
	listResult *dto.NotificationListResponse
	listErr    error
	result     *dto.NotificationResponse
	err        error
	lastAction string
}

func (m *mockNotificationService) ListMine(_ context.Context, _ string) (*dto.NotificationListResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockNotificationService) Respond(_ context.Context, _, _, action string) (*dto.NotificationResponse, error) {
	m.lastAction = action
	return m.result, m.err
}
func (m *mockNotificationService) MarkRead(_ context.Context, _, _ string) (*dto.NotificationResponse, error) {
	return m.result, m.err
}

// ── Mock LeaderboardService ──

type mockLeaderboardService struct {
	topResult      []dto.TopDonorResponse
	lastLimit      int
	featuredResult *dto.TopDonorResponse
	featuredErr    error
}

func (m *mockLeaderboardService) TrackDonation(_ context.Context, _ *repository.Repository, _ service.DonationRecord) error {
	return nil
}
func (m *mockLeaderboardService) TopDonors(_ context.Context, limit int) ([]dto.TopDonorResponse, error) {
	m.lastLimit = limit
	return m.topResult, nil
}
func (m *mockLeaderboardService) FeaturedDonor(_ context.Context) (*dto.TopDonorResponse, error) {
	return m.featuredResult, m.featuredErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportRequests(_ context.Context) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) DonorCalendar(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set(ContextKeySession, model.Session{AccountID: "test-donor-id", AccountType: model.AccountTypeDonor})
	c.Set(ContextKeyClaims, &jwt.Claims{AccountID: "test-donor-id", AccountType: model.AccountTypeDonor})
}

func setStaffAuth(c *gin.Context) {
	c.Set(ContextKeySession, model.Session{AccountID: "test-staff-id", AccountType: model.AccountTypeStaff, HospitalCode: "08230101"})
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(method, path, target string, body io.Reader, handle gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r := gin.New()
	r.Handle(method, path, handle)
	r.ServeHTTP(w, req)
	return w
}

func withAuth(setter func(*gin.Context), h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		setter(c)
		h(c)
	}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status, code int) {
	t.Helper()
	if w.Code != status {
		t.Errorf("expected %d, got %d (body=%s)", status, w.Code, w.Body.String())
	}
	if resp := parseResponse(w); resp.Code != code {
		t.Errorf("expected code %d, got %d", code, resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{AccessToken: "test-access-token", RefreshToken: "test-refresh-token", ExpiresIn: 900},
	}
	h := NewAuthHandler(mock)

	w := serve("POST", "/auth/login", "/auth/login", jsonBody(dto.LoginRequest{
		Identifier: "karma@example.com",
		Password:   "secret1",
	}), h.Login)

	expectStatus(t, w, http.StatusOK, 0)
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := serve("POST", "/auth/login", "/auth/login", bytes.NewReader([]byte("invalid json")), h.Login)

	expectStatus(t, w, http.StatusBadRequest, 10001)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	w := serve("POST", "/auth/login", "/auth/login", jsonBody(dto.LoginRequest{
		Identifier: "08230101",
		Password:   "wrong",
	}), h.Login)

	expectStatus(t, w, http.StatusUnauthorized, 11001)
}

func TestAuthHandler_RegisterDonor_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   int
	}{
		{"email taken", service.ErrEmailTaken, http.StatusConflict, 11002},
		{"phone taken", service.ErrPhoneTaken, http.StatusConflict, 11003},
		{"missing fields", service.ErrMissingFields, http.StatusBadRequest, 11005},
		{"password mismatch", service.ErrPasswordMismatch, http.StatusBadRequest, 11007},
		{"password too short", service.ErrPasswordTooShort, http.StatusBadRequest, 11008},
		{"terms", service.ErrTermsNotAccepted, http.StatusBadRequest, 11009},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthService{registerErr: tt.err})
			w := serve("POST", "/auth/register/donor", "/auth/register/donor", jsonBody(map[string]string{"email": "a@b.com"}), h.RegisterDonor)
			expectStatus(t, w, tt.status, tt.code)
		})
	}
}

func TestAuthHandler_RegisterDonor_Created(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{registerResult: &dto.RegisterResponse{ID: "donor-1", Name: "Karma Dorji"}})

	w := serve("POST", "/auth/register/donor", "/auth/register/donor", jsonBody(map[string]string{"email": "a@b.com"}), h.RegisterDonor)

	expectStatus(t, w, http.StatusCreated, 0)
}

func TestAuthHandler_RegisterStaff_CapacityReached(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{staffErr: service.ErrStaffCapacityReached})

	w := serve("POST", "/auth/register/staff", "/auth/register/staff", jsonBody(map[string]string{"hospital_code": "08230101"}), h.RegisterStaff)

	expectStatus(t, w, http.StatusConflict, 11012)
}

func TestAuthHandler_RegisterStaff_InvalidCode(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{staffErr: service.ErrInvalidHospitalCode})

	w := serve("POST", "/auth/register/staff", "/auth/register/staff", jsonBody(map[string]string{"hospital_code": "123"}), h.RegisterStaff)

	expectStatus(t, w, http.StatusBadRequest, 11010)
}

func TestAuthHandler_RefreshToken_MissingToken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := serve("POST", "/auth/refresh", "/auth/refresh", jsonBody(map[string]string{}), h.RefreshToken)

	expectStatus(t, w, http.StatusBadRequest, 10001)
}

func TestAuthHandler_RefreshToken_Invalid(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{refreshErr: service.ErrInvalidRefreshToken})

	w := serve("POST", "/auth/refresh", "/auth/refresh", jsonBody(dto.RefreshTokenRequest{RefreshToken: "old"}), h.RefreshToken)

	expectStatus(t, w, http.StatusUnauthorized, 11013)
}

func TestAuthHandler_Logout_PassesClaims(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	w := serve("POST", "/auth/logout", "/auth/logout", nil, withAuth(setAuth, h.Logout))

	expectStatus(t, w, http.StatusOK, 0)
	if mock.logoutClaims == nil || mock.logoutClaims.AccountID != "test-donor-id" {
		t.Errorf("expected claims of current session, got %+v", mock.logoutClaims)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := serve("GET", "/auth/me", "/auth/me", nil, h.Me)

	expectStatus(t, w, http.StatusUnauthorized, 10002)
}

func TestAuthHandler_ForgotPassword_Success(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{forgotResult: &dto.ForgotPasswordResponse{Exists: true, AccountType: "donor"}})

	w := serve("POST", "/auth/forgot-password", "/auth/forgot-password", jsonBody(dto.ForgotPasswordRequest{Email: "karma@example.com"}), h.ForgotPassword)

	expectStatus(t, w, http.StatusOK, 0)
}

// ═══════════════════════════════════════════════════════════
// DonorHandler Tests
// ═══════════════════════════════════════════════════════════

func TestDonorHandler_GetProfile_Success(t *testing.T) {
	mock := &mockDonorService{profileResult: &dto.DonorProfileResponse{ID: "test-donor-id"}}
	h := NewDonorHandler(mock)

	w := serve("GET", "/donors/me", "/donors/me", nil, withAuth(setAuth, h.GetProfile))

	expectStatus(t, w, http.StatusOK, 0)
	if mock.lastDonorID != "test-donor-id" {
		t.Errorf("expected donor id from session, got %q", mock.lastDonorID)
	}
}

func TestDonorHandler_GetProfile_StaffForbidden(t *testing.T) {
	h := NewDonorHandler(&mockDonorService{})

	w := serve("GET", "/donors/me", "/donors/me", nil, withAuth(setStaffAuth, h.GetProfile))

	expectStatus(t, w, http.StatusForbidden, 10003)
}

func TestDonorHandler_UpdateProfile_EmailTaken(t *testing.T) {
	h := NewDonorHandler(&mockDonorService{updateErr: service.ErrEmailTaken})

	w := serve("PUT", "/donors/me", "/donors/me", jsonBody(dto.UpdateProfileRequest{
		FullName: "Karma Dorji",
		Email:    "taken@example.com",
		Phone:    "17123456",
	}), withAuth(setAuth, h.UpdateProfile))

	expectStatus(t, w, http.StatusConflict, 11002)
}

func TestDonorHandler_UpdateProfile_InvalidBloodType(t *testing.T) {
	h := NewDonorHandler(&mockDonorService{})

	w := serve("PUT", "/donors/me", "/donors/me", jsonBody(dto.UpdateProfileRequest{
		FullName:  "Karma Dorji",
		Email:     "karma@example.com",
		Phone:     "17123456",
		BloodType: "Z+",
	}), withAuth(setAuth, h.UpdateProfile))

	expectStatus(t, w, http.StatusBadRequest, 10001)
}

func TestDonorHandler_ChangePassword_WrongCurrent(t *testing.T) {
	h := NewDonorHandler(&mockDonorService{changePassErr: service.ErrCurrentPasswordWrong})

	w := serve("PUT", "/donors/me/password", "/donors/me/password", jsonBody(dto.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newpass1",
		ConfirmPassword: "newpass1",
	}), withAuth(setAuth, h.ChangePassword))

	expectStatus(t, w, http.StatusBadRequest, 12002)
}

func TestDonorHandler_Deactivate_OptimisticLock(t *testing.T) {
	h := NewDonorHandler(&mockDonorService{deactivateErr: pkgerrors.ErrOptimisticLock})

	w := serve("POST", "/donors/me/deactivate", "/donors/me/deactivate", nil, withAuth(setAuth, h.Deactivate))

	expectStatus(t, w, http.StatusConflict, 10006)
}

// ═══════════════════════════════════════════════════════════
// BloodRequestHandler Tests
// ═══════════════════════════════════════════════════════════

func validCreateRequest() dto.CreateBloodRequestRequest {
	return dto.CreateBloodRequestRequest{
		PatientName:  "Sonam",
		Phone:        "17123456",
		BloodType:    "B+",
		Units:        "450",
		Hospital:     "Samtse Hospital",
		Urgency:      "High",
		RequiredDate: "2026-03-12",
	}
}

func TestBloodRequestHandler_Create_Success(t *testing.T) {
	h := NewBloodRequestHandler(&mockBloodRequestService{result: &dto.BloodRequestResponse{ID: "req-1", Status: "pending"}})

	w := serve("POST", "/blood-requests", "/blood-requests", jsonBody(validCreateRequest()), h.Create)

	expectStatus(t, w, http.StatusCreated, 0)
}

func TestBloodRequestHandler_Create_InvalidBloodType(t *testing.T) {
	h := NewBloodRequestHandler(&mockBloodRequestService{})
	req := validCreateRequest()
	req.BloodType = "C+"

	w := serve("POST", "/blood-requests", "/blood-requests", jsonBody(req), h.Create)

	expectStatus(t, w, http.StatusBadRequest, 10001)
}

func TestBloodRequestHandler_Create_ServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"urgency required", service.ErrUrgencyRequired, 13003},
		{"invalid urgency", service.ErrInvalidUrgency, 13004},
		{"invalid amount", service.ErrInvalidAmount, 13005},
		{"date in past", service.ErrRequiredDateInPast, 13006},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewBloodRequestHandler(&mockBloodRequestService{err: tt.err})
			w := serve("POST", "/blood-requests", "/blood-requests", jsonBody(validCreateRequest()), h.Create)
			expectStatus(t, w, http.StatusBadRequest, tt.code)
		})
	}
}

func TestBloodRequestHandler_List_Pagination(t *testing.T) {
	mock := &mockBloodRequestService{
		listResult: []dto.BloodRequestResponse{{ID: "req-1"}, {ID: "req-2"}},
		listTotal:  5,
	}
	h := NewBloodRequestHandler(mock)

	w := serve("GET", "/blood-requests", "/blood-requests?status=pending&page=2&page_size=2", nil, h.List)

	expectStatus(t, w, http.StatusOK, 0)
	if mock.lastList == nil || mock.lastList.Status != "pending" || mock.lastList.GetPage() != 2 {
		t.Fatalf("query not bound: %+v", mock.lastList)
	}
	if !strings.Contains(w.Body.String(), `"total_pages":3`) {
		t.Errorf("expected total_pages 3, body=%s", w.Body.String())
	}
}

func TestBloodRequestHandler_List_InvalidStatus(t *testing.T) {
	h := NewBloodRequestHandler(&mockBloodRequestService{})

	w := serve("GET", "/blood-requests", "/blood-requests?status=unknown", nil, h.List)

	expectStatus(t, w, http.StatusBadRequest, 10001)
}

func TestBloodRequestHandler_Get_NotFound(t *testing.T) {
	h := NewBloodRequestHandler(&mockBloodRequestService{err: service.ErrRequestNotFound})

	w := serve("GET", "/blood-requests/:id", "/blood-requests/missing", nil, h.Get)

	expectStatus(t, w, http.StatusNotFound, 13002)
}

func TestBloodRequestHandler_ScheduleDonor_InvalidContact(t *testing.T) {
	h := NewBloodRequestHandler(&mockBloodRequestService{})

	w := serve("POST", "/blood-requests/:id/schedule", "/blood-requests/req-1/schedule", jsonBody(dto.ScheduleDonorRequest{
		DonorName:    "Pema",
		DonorContact: "not a contact",
		Date:         "2026-03-11",
		Time:         "10:00",
	}), h.ScheduleDonor)

	expectStatus(t, w, http.StatusBadRequest, 10001)
}

func TestBloodRequestHandler_ScheduleDonor_NotPending(t *testing.T) {
	h := NewBloodRequestHandler(&mockBloodRequestService{scheduleErr: service.ErrRequestNotPending})

	w := serve("POST", "/blood-requests/:id/schedule", "/blood-requests/req-1/schedule", jsonBody(dto.ScheduleDonorRequest{
		DonorName:    "Pema",
		DonorContact: "pema@example.com",
		Date:         "2026-03-11",
		Time:         "10:00",
	}), h.ScheduleDonor)

	expectStatus(t, w, http.StatusConflict, 13007)
}

func TestBloodRequestHandler_MarkFulfilled_Conflicts(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{service.ErrRequestAlreadyFulfilled, 13008},
		{service.ErrRequestCancelled, 13009},
		{pkgerrors.ErrOptimisticLock, 10006},
	}
	for _, tt := range tests {
		h := NewBloodRequestHandler(&mockBloodRequestService{err: tt.err})
		w := serve("POST", "/blood-requests/:id/fulfill", "/blood-requests/req-1/fulfill", nil, h.MarkFulfilled)
		expectStatus(t, w, http.StatusConflict, tt.code)
	}
}

func TestBloodRequestHandler_Clear(t *testing.T) {
	h := NewBloodRequestHandler(&mockBloodRequestService{cleared: 3})

	w := serve("DELETE", "/blood-requests", "/blood-requests", nil, h.Clear)

	expectStatus(t, w, http.StatusOK, 0)
	if !strings.Contains(w.Body.String(), `"deleted":3`) {
		t.Errorf("expected deleted count, body=%s", w.Body.String())
	}
}

// ═══════════════════════════════════════════════════════════
// AppointmentHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAppointmentHandler_Schedule_Success(t *testing.T) {
	h := NewAppointmentHandler(&mockAppointmentService{result: &dto.AppointmentResponse{ID: "apt-1", Status: "pending"}})

	w := serve("POST", "/appointments", "/appointments", jsonBody(dto.CreateAppointmentRequest{
		Date: "2026-03-15", Time: "09:00", AmountML: 450,
	}), withAuth(setAuth, h.Schedule))

	expectStatus(t, w, http.StatusCreated, 0)
}

func TestAppointmentHandler_Schedule_BadTime(t *testing.T) {
	h := NewAppointmentHandler(&mockAppointmentService{})

	w := serve("POST", "/appointments", "/appointments", jsonBody(dto.CreateAppointmentRequest{
		Date: "2026-03-15", Time: "9am", AmountML: 450,
	}), withAuth(setAuth, h.Schedule))

	expectStatus(t, w, http.StatusBadRequest, 10001)
}

func TestAppointmentHandler_Schedule_DateInPast(t *testing.T) {
	h := NewAppointmentHandler(&mockAppointmentService{err: service.ErrAppointmentDateInPast})

	w := serve("POST", "/appointments", "/appointments", jsonBody(dto.CreateAppointmentRequest{
		Date: "2026-03-01", Time: "09:00", AmountML: 450,
	}), withAuth(setAuth, h.Schedule))

	expectStatus(t, w, http.StatusBadRequest, 14005)
}

func TestAppointmentHandler_Confirm_NotPending(t *testing.T) {
	h := NewAppointmentHandler(&mockAppointmentService{err: service.ErrAppointmentNotPending})

	w := serve("POST", "/appointments/:id/confirm", "/appointments/apt-1/confirm", nil, h.Confirm)

	expectStatus(t, w, http.StatusConflict, 14003)
}

func TestAppointmentHandler_Complete_NotConfirmed(t *testing.T) {
	h := NewAppointmentHandler(&mockAppointmentService{err: service.ErrAppointmentNotConfirmed})

	w := serve("POST", "/appointments/:id/complete", "/appointments/apt-1/complete", nil, h.Complete)

	expectStatus(t, w, http.StatusConflict, 14004)
}

func TestAppointmentHandler_Delete_NotFound(t *testing.T) {
	h := NewAppointmentHandler(&mockAppointmentService{err: service.ErrAppointmentNotFound})

	w := serve("DELETE", "/appointments/:id", "/appointments/missing", nil, h.Delete)

	expectStatus(t, w, http.StatusNotFound, 14002)
}

// ═══════════════════════════════════════════════════════════
// NotificationHandler Tests
// ═══════════════════════════════════════════════════════════

func TestNotificationHandler_Respond_Accept(t *testing.T) {
	mock := &mockNotificationService{result: &dto.NotificationResponse{ID: "n-1", Status: "accepted"}}
	h := NewNotificationHandler(mock)

	w := serve("POST", "/notifications/:id/respond", "/notifications/n-1/respond",
		jsonBody(dto.RespondNotificationRequest{Action: "accept"}), withAuth(setAuth, h.Respond))

	expectStatus(t, w, http.StatusOK, 0)
	if mock.lastAction != "accept" {
		t.Errorf("expected action accept, got %q", mock.lastAction)
	}
}

func TestNotificationHandler_Respond_InvalidAction(t *testing.T) {
	h := NewNotificationHandler(&mockNotificationService{})

	w := serve("POST", "/notifications/:id/respond", "/notifications/n-1/respond",
		jsonBody(map[string]string{"action": "maybe"}), withAuth(setAuth, h.Respond))

	expectStatus(t, w, http.StatusBadRequest, 15004)
}

func TestNotificationHandler_Respond_Errors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   int
	}{
		{service.ErrNotificationNotFound, http.StatusNotFound, 15002},
		{service.ErrNotificationNotPending, http.StatusConflict, 15003},
		{service.ErrRequestNotAwaitingResponse, http.StatusConflict, 15005},
	}
	for _, tt := range tests {
		h := NewNotificationHandler(&mockNotificationService{err: tt.err})
		w := serve("POST", "/notifications/:id/respond", "/notifications/n-1/respond",
			jsonBody(dto.RespondNotificationRequest{Action: "reject"}), withAuth(setAuth, h.Respond))
		expectStatus(t, w, tt.status, tt.code)
	}
}

func TestNotificationHandler_ListMine_RequiresDonor(t *testing.T) {
	h := NewNotificationHandler(&mockNotificationService{})

	w := serve("GET", "/notifications", "/notifications", nil, withAuth(setStaffAuth, h.ListMine))

	expectStatus(t, w, http.StatusForbidden, 10003)
}

// ═══════════════════════════════════════════════════════════
// LeaderboardHandler / ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestLeaderboardHandler_TopDonors_Limit(t *testing.T) {
	mock := &mockLeaderboardService{topResult: []dto.TopDonorResponse{{Rank: 1, Name: "Karma Dorji", DonationCount: 3}}}
	h := NewLeaderboardHandler(mock)

	w := serve("GET", "/leaderboard", "/leaderboard?limit=10", nil, h.TopDonors)

	expectStatus(t, w, http.StatusOK, 0)
	if mock.lastLimit != 10 {
		t.Errorf("expected limit 10, got %d", mock.lastLimit)
	}
}

func TestLeaderboardHandler_Featured_Empty(t *testing.T) {
	h := NewLeaderboardHandler(&mockLeaderboardService{featuredErr: service.ErrLeaderboardEmpty})

	w := serve("GET", "/leaderboard/featured", "/leaderboard/featured", nil, h.Featured)

	expectStatus(t, w, http.StatusNotFound, 17001)
}

func TestExportHandler_ExportRequests_Success(t *testing.T) {
	h := NewExportHandler(&mockExportService{
		buf:      bytes.NewBufferString("xlsx-content"),
		filename: "blood_requests_20260310.xlsx",
	})

	w := serve("GET", "/export/blood-requests", "/export/blood-requests", nil, h.ExportRequests)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != contentTypeXLSX {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "blood_requests_20260310.xlsx") {
		t.Errorf("unexpected content disposition %q", cd)
	}
	if w.Body.String() != "xlsx-content" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestExportHandler_ExportRequests_Empty(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoRequests})

	w := serve("GET", "/export/blood-requests", "/export/blood-requests", nil, h.ExportRequests)

	expectStatus(t, w, http.StatusNotFound, 16101)
}

func TestExportHandler_DonorCalendar_Success(t *testing.T) {
	h := NewExportHandler(&mockExportService{
		buf:      bytes.NewBufferString("BEGIN:VCALENDAR"),
		filename: "donations.ics",
	})

	w := serve("GET", "/export/calendar", "/export/calendar", nil, withAuth(setAuth, h.DonorCalendar))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/calendar") {
		t.Errorf("unexpected content type %q", w.Header().Get("Content-Type"))
	}
}
