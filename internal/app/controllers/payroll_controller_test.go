package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	authz "github.com/campusly/campusly/internal/app/auth"
	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/middleware"
	"github.com/campusly/campusly/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockPayrollService struct {
	mock.Mock
}

func (m *mockPayrollService) CreateSalaryStructure(ctx context.Context, actor authz.Actor, req *dto.SalaryStructureRequest) (*models.SalaryStructure, error) {
	args := m.Called(ctx, actor, req)
	s, _ := args.Get(0).(*models.SalaryStructure)
	return s, args.Error(1)
}

func (m *mockPayrollService) GetSalaryStructure(ctx context.Context, actor authz.Actor, id int64) (*models.SalaryStructure, error) {
	args := m.Called(ctx, actor, id)
	s, _ := args.Get(0).(*models.SalaryStructure)
	return s, args.Error(1)
}

func (m *mockPayrollService) ListSalaryStructures(ctx context.Context, actor authz.Actor, employeeID *int64, page, size int) ([]*models.SalaryStructure, int64, error) {
	args := m.Called(ctx, actor, employeeID, page, size)
	s, _ := args.Get(0).([]*models.SalaryStructure)
	return s, args.Get(1).(int64), args.Error(2)
}

func (m *mockPayrollService) ProcessPayroll(ctx context.Context, actor authz.Actor, req *dto.ProcessPayrollRequest) (*models.Payroll, error) {
	args := m.Called(ctx, actor, req)
	p, _ := args.Get(0).(*models.Payroll)
	return p, args.Error(1)
}

func (m *mockPayrollService) BulkProcessPayroll(ctx context.Context, actor authz.Actor, req *dto.BulkProcessPayrollRequest) (*dto.BulkProcessResult, error) {
	args := m.Called(ctx, actor, req)
	r, _ := args.Get(0).(*dto.BulkProcessResult)
	return r, args.Error(1)
}

func (m *mockPayrollService) ProcessPeriod(ctx context.Context, period string, campusID *int64, processedBy *int64) (*dto.BulkProcessResult, error) {
	args := m.Called(ctx, period, campusID, processedBy)
	r, _ := args.Get(0).(*dto.BulkProcessResult)
	return r, args.Error(1)
}

func (m *mockPayrollService) GetPayroll(ctx context.Context, actor authz.Actor, id int64) (*models.Payroll, error) {
	args := m.Called(ctx, actor, id)
	p, _ := args.Get(0).(*models.Payroll)
	return p, args.Error(1)
}

func (m *mockPayrollService) ListPayrolls(ctx context.Context, actor authz.Actor, filter dto.PayrollFilter, page, size int) ([]*models.Payroll, int64, error) {
	args := m.Called(ctx, actor, filter, page, size)
	p, _ := args.Get(0).([]*models.Payroll)
	return p, args.Get(1).(int64), args.Error(2)
}

func (m *mockPayrollService) ApprovePayroll(ctx context.Context, actor authz.Actor, id int64) (*models.Payroll, error) {
	args := m.Called(ctx, actor, id)
	p, _ := args.Get(0).(*models.Payroll)
	return p, args.Error(1)
}

func (m *mockPayrollService) RejectPayroll(ctx context.Context, actor authz.Actor, id int64, req *dto.RejectPayrollRequest) (*models.Payroll, error) {
	args := m.Called(ctx, actor, id, req)
	p, _ := args.Get(0).(*models.Payroll)
	return p, args.Error(1)
}

func (m *mockPayrollService) PayPayroll(ctx context.Context, actor authz.Actor, id int64, req *dto.PayPayrollRequest) (*models.Payroll, error) {
	args := m.Called(ctx, actor, id, req)
	p, _ := args.Get(0).(*models.Payroll)
	return p, args.Error(1)
}

func (m *mockPayrollService) DeletePayroll(ctx context.Context, actor authz.Actor, id int64) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockPayrollService) GetPayslip(ctx context.Context, actor authz.Actor, id int64) (*dto.PayslipResponse, error) {
	args := m.Called(ctx, actor, id)
	p, _ := args.Get(0).(*dto.PayslipResponse)
	return p, args.Error(1)
}

func (m *mockPayrollService) CalculateTax(annualIncome decimal.Decimal) (*dto.TaxCalculationResponse, error) {
	args := m.Called(annualIncome)
	r, _ := args.Get(0).(*dto.TaxCalculationResponse)
	return r, args.Error(1)
}

var accountant = authz.Actor{UserID: 9, Email: "accounts@campusly.test", Role: models.RoleAccountant, CampusID: models.Int64Ptr(1)}

// withActor stands in for JWTAuth in controller tests
func withActor(actor authz.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetActor(c, actor)
		c.Next()
	}
}

func newPayrollRouter(svc *mockPayrollService) *gin.Engine {
	ctrl := NewPayrollController(svc, zerolog.Nop())
	r := gin.New()
	g := r.Group("/payroll", withActor(accountant))
	g.POST("/process", ctrl.ProcessPayroll)
	g.GET("", ctrl.ListPayrolls)
	g.POST("/:id/approve", ctrl.ApprovePayroll)
	g.POST("/:id/pay", ctrl.PayPayroll)
	g.POST("/tax/calculate", ctrl.CalculateTax)
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProcessPayrollEndpoint(t *testing.T) {
	svc := new(mockPayrollService)
	r := newPayrollRouter(svc)

	payroll := &models.Payroll{ID: 11, EmployeeID: 3, Period: "2025-03", Status: models.PayrollPending}
	svc.On("ProcessPayroll", mock.Anything, accountant, &dto.ProcessPayrollRequest{EmployeeID: 3, Period: "2025-03"}).
		Return(payroll, nil).Once()

	w := doJSON(r, http.MethodPost, "/payroll/process", `{"employeeId":3,"period":"2025-03"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool           `json:"success"`
		Data    models.Payroll `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(11), resp.Data.ID)
	svc.AssertExpectations(t)
}

func TestProcessPayrollDuplicate(t *testing.T) {
	svc := new(mockPayrollService)
	r := newPayrollRouter(svc)
	svc.On("ProcessPayroll", mock.Anything, accountant, mock.Anything).
		Return(nil, apperrors.ErrPayrollAlreadyProcessed).Once()

	w := doJSON(r, http.MethodPost, "/payroll/process", `{"employeeId":3,"period":"2025-03"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), string(dto.ErrorCodeResourceAlreadyExists))
}

func TestProcessPayrollRejectsBadPeriod(t *testing.T) {
	svc := new(mockPayrollService)
	r := newPayrollRouter(svc)

	w := doJSON(r, http.MethodPost, "/payroll/process", `{"employeeId":3,"period":"March"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ProcessPayroll", mock.Anything, mock.Anything, mock.Anything)
}

func TestListPayrollsParsesFilter(t *testing.T) {
	svc := new(mockPayrollService)
	r := newPayrollRouter(svc)

	period := "2025-03"
	status := models.PayrollApproved
	want := dto.PayrollFilter{Period: &period, Status: &status}
	svc.On("ListPayrolls", mock.Anything, accountant, want, 2, 5).
		Return([]*models.Payroll{{ID: 1}, {ID: 2}}, int64(7), nil).Once()

	w := doJSON(r, http.MethodGet, "/payroll?period=2025-03&status=approved&page=2&size=5", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	assert.Equal(t, int64(7), resp.Pagination.TotalItems)
	svc.AssertExpectations(t)
}

func TestApprovePayrollTransitionError(t *testing.T) {
	svc := new(mockPayrollService)
	r := newPayrollRouter(svc)
	svc.On("ApprovePayroll", mock.Anything, accountant, int64(4)).
		Return(nil, apperrors.NewTransitionError("cannot move payroll from PAID to APPROVED")).Once()

	w := doJSON(r, http.MethodPost, "/payroll/4/approve", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "cannot move payroll from PAID to APPROVED")
}

func TestApprovePayrollBadID(t *testing.T) {
	svc := new(mockPayrollService)
	r := newPayrollRouter(svc)

	w := doJSON(r, http.MethodPost, "/payroll/abc/approve", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ApprovePayroll", mock.Anything, mock.Anything, mock.Anything)
}

func TestCalculateTaxEndpoint(t *testing.T) {
	svc := new(mockPayrollService)
	r := newPayrollRouter(svc)

	income := decimal.NewFromInt(1428000)
	svc.On("CalculateTax", mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(income) })).
		Return(&dto.TaxCalculationResponse{AnnualIncome: income, AnnualTax: decimal.NewFromInt(43500), MonthlyTax: decimal.NewFromInt(3625)}, nil).Once()

	w := doJSON(r, http.MethodPost, "/payroll/tax/calculate", `{"annualIncome":"1428000"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"monthlyTax":"3625"`)

	w = doJSON(r, http.MethodPost, "/payroll/tax/calculate", `{"annualIncome":"-5"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}
