package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/authz"
	"taskflow/internal/handlers"
	"taskflow/internal/middleware"
	"taskflow/internal/models"
	"taskflow/internal/services"
)

var secret = []byte("test-secret")

type stubProjects struct {
	services.ProjectService
	members []int64
}

func (s *stubProjects) Create(_ context.Context, name string, ownerID int64) (*models.Project, error) {
	return &models.Project{ID: 7, Name: name, Owner: &models.UserRef{ID: ownerID}}, nil
}

func (s *stubProjects) GetByID(_ context.Context, id int64) (*models.Project, error) {
	if id != 7 {
		return nil, &services.NotFoundError{Entity: "Project"}
	}
	p := &models.Project{ID: 7, Name: "Apollo"}
	for _, m := range s.members {
		p.Members = append(p.Members, &models.UserRef{ID: m})
	}
	return p, nil
}

func (s *stubProjects) AddMember(ctx context.Context, projectID, userID int64) (*models.Project, error) {
	s.members = append(s.members, userID)
	return s.GetByID(ctx, projectID)
}

func newRouter(projects services.ProjectService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	return SetupRoutes(r, secret,
		handlers.NewAuthHandler(nil, secret, time.Hour),
		handlers.NewTaskHandler(nil, nil),
		handlers.NewProjectHandler(projects),
		handlers.NewReportHandler(nil, nil),
	)
}

func call(t *testing.T, r http.Handler, roleID int, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	token, _, err := middleware.IssueToken(secret, 3, roleID, time.Hour)
	require.NoError(t, err)

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProjectRoutes_ManagersWrite(t *testing.T) {
	r := newRouter(&stubProjects{})

	w := call(t, r, authz.RoleStaff, http.MethodPost, "/projects/", gin.H{"name": "Apollo"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(t, r, authz.RoleManager, http.MethodPost, "/projects/", gin.H{"name": "Apollo"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"owner":{"id":3`)

	w = call(t, r, authz.RoleStaff, http.MethodPost, "/projects/7/members", gin.H{"user_id": 4})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProjectRoutes_MembersVisible(t *testing.T) {
	r := newRouter(&stubProjects{})

	w := call(t, r, authz.RoleAdmin, http.MethodPost, "/projects/7/members", gin.H{"user_id": 4})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(t, r, authz.RoleStaff, http.MethodGet, "/projects/7", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p models.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Len(t, p.Members, 1)
	assert.Equal(t, int64(4), p.Members[0].ID)

	w = call(t, r, authz.RoleStaff, http.MethodGet, "/projects/8", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Project not found"}`, w.Body.String())
}

func TestProjectRoutes_RequireToken(t *testing.T) {
	r := newRouter(&stubProjects{})
	req := httptest.NewRequest(http.MethodGet, "/projects/7", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
