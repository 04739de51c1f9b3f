package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kestrelhq/kestrel/internal/cqrs"
	"github.com/kestrelhq/kestrel/internal/models"
	"github.com/kestrelhq/kestrel/internal/pagination"
)

// ---- mock implementations ----

type mockUserTypeCommander struct {
	createFn func(cqrs.CreateUserTypeCommand) (*models.UserTypeView, error)
	updateFn func(cqrs.UpdateUserTypeCommand) (*models.UserTypeView, error)
	deleteFn func(cqrs.DeleteUserTypeCommand) error
}

func (m *mockUserTypeCommander) CreateUserType(cmd cqrs.CreateUserTypeCommand) (*models.UserTypeView, error) {
	if m.createFn != nil {
		return m.createFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockUserTypeCommander) UpdateUserType(cmd cqrs.UpdateUserTypeCommand) (*models.UserTypeView, error) {
	if m.updateFn != nil {
		return m.updateFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockUserTypeCommander) DeleteUserType(cmd cqrs.DeleteUserTypeCommand) error {
	if m.deleteFn != nil {
		return m.deleteFn(cmd)
	}
	return fmt.Errorf("not configured")
}

type mockUserTypeQuerier struct {
	getFn  func(cqrs.GetUserTypeQuery) (*models.UserTypeView, error)
	listFn func(cqrs.ListUserTypesQuery) (*pagination.Page[models.UserTypeView], error)
}

func (m *mockUserTypeQuerier) GetUserType(q cqrs.GetUserTypeQuery) (*models.UserTypeView, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockUserTypeQuerier) ListUserTypes(q cqrs.ListUserTypesQuery) (*pagination.Page[models.UserTypeView], error) {
	if m.listFn != nil {
		return m.listFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func newUserTypeTestRouter(cmds UserTypeCommander, qrys UserTypeQuerier, claims testClaims) *gin.Engine {
	h := Handlers{
		Auth:          NewAuthHandler(&mockAuthCommander{}, &mockAuthQuerier{}),
		Users:         NewUserHandler(&mockUserCommander{}, &mockUserQuerier{}),
		Organizations: NewOrganizationHandler(&mockOrgCommander{}, &mockOrgQuerier{}),
		UserTypes:     NewUserTypeHandler(cmds, qrys),
	}
	return newTestRouter(h, claims)
}

// ---- test data ----

var userTypeTestView = &models.UserTypeView{
	ID: "utp-003", OrganizationID: "org-001", Name: "auditor",
	Description: "Read-only reviewer", CreatedAt: time.Now(), UpdatedAt: time.Now(),
}

// ---- tests ----

func TestCreateUserType(t *testing.T) {
	tests := []struct {
		name           string
		claims         testClaims
		body           interface{}
		createFn       func(cqrs.CreateUserTypeCommand) (*models.UserTypeView, error)
		expectedStatus int
	}{
		{
			name:   "success - admin creates a custom type",
			claims: adminClaims,
			body:   map[string]interface{}{"name": "auditor", "description": "Read-only reviewer"},
			createFn: func(cmd cqrs.CreateUserTypeCommand) (*models.UserTypeView, error) {
				return userTypeTestView, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "forbidden - member cannot create types",
			claims:         memberClaims,
			body:           map[string]interface{}{"name": "auditor"},
			createFn:       nil,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "conflict - duplicate name in this org",
			claims: adminClaims,
			body:   map[string]interface{}{"name": "auditor"},
			createFn: func(cmd cqrs.CreateUserTypeCommand) (*models.UserTypeView, error) {
				return nil, fmt.Errorf("user type name already exists")
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "bad request - name too short",
			claims:         adminClaims,
			body:           map[string]interface{}{"name": "a"},
			createFn:       nil,
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newUserTypeTestRouter(&mockUserTypeCommander{createFn: tt.createFn}, &mockUserTypeQuerier{}, tt.claims)
			w := doRequest(router, http.MethodPost, "/v1/orgs/org-001/user-types", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListUserTypes(t *testing.T) {
	tests := []struct {
		name           string
		claims         testClaims
		listFn         func(cqrs.ListUserTypesQuery) (*pagination.Page[models.UserTypeView], error)
		expectedStatus int
	}{
		{
			name:   "success - member lists types",
			claims: memberClaims,
			listFn: func(q cqrs.ListUserTypesQuery) (*pagination.Page[models.UserTypeView], error) {
				return &pagination.Page[models.UserTypeView]{
					Items: []models.UserTypeView{*userTypeTestView}, Total: 3, Page: 1, PerPage: 20, TotalPages: 1,
				}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "internal error - store unavailable",
			claims: memberClaims,
			listFn: func(q cqrs.ListUserTypesQuery) (*pagination.Page[models.UserTypeView], error) {
				return nil, fmt.Errorf("connection refused")
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newUserTypeTestRouter(&mockUserTypeCommander{}, &mockUserTypeQuerier{listFn: tt.listFn}, tt.claims)
			w := doRequest(router, http.MethodGet, "/v1/orgs/org-001/user-types", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetUserType(t *testing.T) {
	tests := []struct {
		name           string
		claims         testClaims
		getFn          func(cqrs.GetUserTypeQuery) (*models.UserTypeView, error)
		expectedStatus int
	}{
		{
			name:           "success - member reads a type",
			claims:         memberClaims,
			getFn:          func(q cqrs.GetUserTypeQuery) (*models.UserTypeView, error) { return userTypeTestView, nil },
			expectedStatus: http.StatusOK,
		},
		{
			name:   "not found - unknown type",
			claims: memberClaims,
			getFn: func(q cqrs.GetUserTypeQuery) (*models.UserTypeView, error) {
				return nil, fmt.Errorf("user type not found")
			},
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newUserTypeTestRouter(&mockUserTypeCommander{}, &mockUserTypeQuerier{getFn: tt.getFn}, tt.claims)
			w := doRequest(router, http.MethodGet, "/v1/orgs/org-001/user-types/utp-003", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdateUserType(t *testing.T) {
	tests := []struct {
		name           string
		claims         testClaims
		body           interface{}
		updateFn       func(cqrs.UpdateUserTypeCommand) (*models.UserTypeView, error)
		expectedStatus int
	}{
		{
			name:   "success - admin edits description",
			claims: adminClaims,
			body:   map[string]interface{}{"description": "Reviews the books"},
			updateFn: func(cmd cqrs.UpdateUserTypeCommand) (*models.UserTypeView, error) {
				return userTypeTestView, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "forbidden - member cannot update",
			claims:         memberClaims,
			body:           map[string]interface{}{"description": "nope"},
			updateFn:       nil,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "conflict - renaming the admin type",
			claims: adminClaims,
			body:   map[string]interface{}{"name": "superadmin"},
			updateFn: func(cmd cqrs.UpdateUserTypeCommand) (*models.UserTypeView, error) {
				return nil, fmt.Errorf("built-in user type cannot be renamed")
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:   "conflict - new name already taken",
			claims: adminClaims,
			body:   map[string]interface{}{"name": "member"},
			updateFn: func(cmd cqrs.UpdateUserTypeCommand) (*models.UserTypeView, error) {
				return nil, fmt.Errorf("user type name already exists")
			},
			expectedStatus: http.StatusConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newUserTypeTestRouter(&mockUserTypeCommander{updateFn: tt.updateFn}, &mockUserTypeQuerier{}, tt.claims)
			w := doRequest(router, http.MethodPatch, "/v1/orgs/org-001/user-types/utp-003", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestDeleteUserType(t *testing.T) {
	tests := []struct {
		name           string
		claims         testClaims
		deleteFn       func(cqrs.DeleteUserTypeCommand) error
		expectedStatus int
	}{
		{
			name:           "success - admin deletes an unused type",
			claims:         adminClaims,
			deleteFn:       func(cmd cqrs.DeleteUserTypeCommand) error { return nil },
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "forbidden - member cannot delete",
			claims:         memberClaims,
			deleteFn:       nil,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "conflict - users still hold the type",
			claims: adminClaims,
			deleteFn: func(cmd cqrs.DeleteUserTypeCommand) error {
				return fmt.Errorf("user type is in use")
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:   "conflict - deleting the default type",
			claims: adminClaims,
			deleteFn: func(cmd cqrs.DeleteUserTypeCommand) error {
				return fmt.Errorf("default user type cannot be deleted")
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "not found - unknown type",
			claims:         adminClaims,
			deleteFn:       func(cmd cqrs.DeleteUserTypeCommand) error { return fmt.Errorf("user type not found") },
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newUserTypeTestRouter(&mockUserTypeCommander{deleteFn: tt.deleteFn}, &mockUserTypeQuerier{}, tt.claims)
			w := doRequest(router, http.MethodDelete, "/v1/orgs/org-001/user-types/utp-003", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}
