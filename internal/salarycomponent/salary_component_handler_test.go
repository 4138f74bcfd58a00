package salarycomponent_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-payroll/internal/salarycomponent"
	salarycomponenterrors "go-payroll/internal/salarycomponent/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeSalaryComponentService struct {
	createFn          func(ctx context.Context, companyID string, req salarycomponent.CreateComponentRequest) (salarycomponent.ComponentResponse, error)
	supersedeFn       func(ctx context.Context, companyID, id string, req salarycomponent.SupersedeComponentRequest) (salarycomponent.ComponentResponse, error)
	getFn             func(ctx context.Context, companyID, id string) (salarycomponent.ComponentResponse, error)
	listFn            func(ctx context.Context, companyID string, filter salarycomponent.ComponentQueryFilter) ([]salarycomponent.ComponentResponse, error)
	assignFn          func(ctx context.Context, companyID, employeeID string, req salarycomponent.AssignComponentRequest) (salarycomponent.AssignmentResponse, error)
	endAssignmentFn   func(ctx context.Context, companyID, employeeID, assignmentID string, req salarycomponent.EndAssignmentRequest) (salarycomponent.AssignmentResponse, error)
	listAssignmentsFn func(ctx context.Context, companyID, employeeID string) ([]salarycomponent.AssignmentResponse, error)
}

func (f *fakeSalaryComponentService) CreateComponent(ctx context.Context, companyID string, req salarycomponent.CreateComponentRequest) (salarycomponent.ComponentResponse, error) {
	return f.createFn(ctx, companyID, req)
}
func (f *fakeSalaryComponentService) SupersedeComponent(ctx context.Context, companyID, id string, req salarycomponent.SupersedeComponentRequest) (salarycomponent.ComponentResponse, error) {
	return f.supersedeFn(ctx, companyID, id, req)
}
func (f *fakeSalaryComponentService) GetComponent(ctx context.Context, companyID, id string) (salarycomponent.ComponentResponse, error) {
	return f.getFn(ctx, companyID, id)
}
func (f *fakeSalaryComponentService) ListComponents(ctx context.Context, companyID string, filter salarycomponent.ComponentQueryFilter) ([]salarycomponent.ComponentResponse, error) {
	return f.listFn(ctx, companyID, filter)
}
func (f *fakeSalaryComponentService) AssignToEmployee(ctx context.Context, companyID, employeeID string, req salarycomponent.AssignComponentRequest) (salarycomponent.AssignmentResponse, error) {
	return f.assignFn(ctx, companyID, employeeID, req)
}
func (f *fakeSalaryComponentService) EndAssignment(ctx context.Context, companyID, employeeID, assignmentID string, req salarycomponent.EndAssignmentRequest) (salarycomponent.AssignmentResponse, error) {
	return f.endAssignmentFn(ctx, companyID, employeeID, assignmentID, req)
}
func (f *fakeSalaryComponentService) EndAllForEmployee(ctx context.Context, companyID, employeeID string, effectiveTo time.Time) (int, error) {
	return 0, nil
}
func (f *fakeSalaryComponentService) ListAssignments(ctx context.Context, companyID, employeeID string) ([]salarycomponent.AssignmentResponse, error) {
	return f.listAssignmentsFn(ctx, companyID, employeeID)
}

func TestSalaryComponentHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		companyID := uuid.New().String()
		svc := &fakeSalaryComponentService{
			createFn: func(ctx context.Context, cid string, req salarycomponent.CreateComponentRequest) (salarycomponent.ComponentResponse, error) {
				assert.Equal(t, companyID, cid)
				assert.Equal(t, "12.5", req.Value.String())
				return salarycomponent.ComponentResponse{ID: uuid.New().String(), Code: req.Code, Value: req.Value.String(), Version: 1}, nil
			},
		}

		h := salarycomponent.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"code":"HOUSING","name":"Housing","type":"EARNING","calculation_type":"PERCENTAGE","value":"12.5","country":"NG"}`
		req := httptest.NewRequest(http.MethodPost, "/salary-components", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req
		c.Set("company_id", companyID)

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"value":"12.5"`)
	})

	t.Run("validation error", func(t *testing.T) {
		h := salarycomponent.NewHandler(&fakeSalaryComponentService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"code":"HOUSING","name":"Housing","type":"BONUS","calculation_type":"FIXED"}`
		req := httptest.NewRequest(http.MethodPost, "/salary-components", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req
		c.Set("company_id", uuid.New().String())

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate code", func(t *testing.T) {
		svc := &fakeSalaryComponentService{
			createFn: func(ctx context.Context, cid string, req salarycomponent.CreateComponentRequest) (salarycomponent.ComponentResponse, error) {
				return salarycomponent.ComponentResponse{}, salarycomponenterrors.ErrComponentCodeExists
			},
		}

		h := salarycomponent.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"code":"BASIC","name":"Basic","type":"EARNING","is_base":true,"calculation_type":"FIXED","value":300000}`
		req := httptest.NewRequest(http.MethodPost, "/salary-components", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req
		c.Set("company_id", uuid.New().String())

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestSalaryComponentHandler_GetAll(t *testing.T) {
	t.Run("paginates", func(t *testing.T) {
		svc := &fakeSalaryComponentService{
			listFn: func(ctx context.Context, cid string, filter salarycomponent.ComponentQueryFilter) ([]salarycomponent.ComponentResponse, error) {
				assert.Equal(t, "2026-01-31", filter.AsOf)
				return []salarycomponent.ComponentResponse{{Code: "BASIC"}, {Code: "HOUSING"}, {Code: "PAYE"}}, nil
			},
		}

		h := salarycomponent.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/salary-components?as_of=2026-01-31&page=2&page_size=2", nil)
		c.Set("company_id", uuid.New().String())

		h.GetAll(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "PAYE")
		assert.NotContains(t, w.Body.String(), "HOUSING")
	})

	t.Run("service error", func(t *testing.T) {
		svc := &fakeSalaryComponentService{
			listFn: func(ctx context.Context, cid string, filter salarycomponent.ComponentQueryFilter) ([]salarycomponent.ComponentResponse, error) {
				return nil, errors.New("db error")
			},
		}

		h := salarycomponent.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/salary-components", nil)
		c.Set("company_id", uuid.New().String())

		h.GetAll(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestSalaryComponentHandler_EndAssignment(t *testing.T) {
	t.Run("already ended", func(t *testing.T) {
		employeeID := uuid.New().String()
		assignmentID := uuid.New().String()
		svc := &fakeSalaryComponentService{
			endAssignmentFn: func(ctx context.Context, cid, eid, aid string, req salarycomponent.EndAssignmentRequest) (salarycomponent.AssignmentResponse, error) {
				assert.Equal(t, employeeID, eid)
				assert.Equal(t, assignmentID, aid)
				return salarycomponent.AssignmentResponse{}, salarycomponenterrors.ErrAssignmentAlreadyEnded
			},
		}

		h := salarycomponent.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		req := httptest.NewRequest(http.MethodPatch, "/employees/"+employeeID+"/salary-components/"+assignmentID+"/end", strings.NewReader(`{"effective_to":"2026-06-30"}`))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req
		c.Params = gin.Params{{Key: "employeeId", Value: employeeID}, {Key: "assignmentId", Value: assignmentID}}
		c.Set("company_id", uuid.New().String())

		h.EndAssignment(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_TRANSITION")
	})
}
