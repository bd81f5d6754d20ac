package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskflow/internal/authz"
	"taskflow/internal/reporting"
	"taskflow/internal/services"
)

// ReportGenerator builds and renders one report.
type ReportGenerator interface {
	Generate(ctx context.Context, req services.ReportRequest) (*services.Export, error)
}

type ReportHandler struct {
	gen         ReportGenerator
	departments []string
}

func NewReportHandler(gen ReportGenerator, departments []string) *ReportHandler {
	return &ReportHandler{gen: gen, departments: departments}
}

// @Summary      Project task completion report
// @Tags         Reports
// @Produce      json
// @Param        id      path   int     true   "Project ID"
// @Param        start   query  string  true   "Start date (YYYY-MM-DD)"
// @Param        end     query  string  true   "End date (YYYY-MM-DD)"
// @Param        format  query  string  false  "json | xlsx | pdf"
// @Success      200  {object}  reporting.Result
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /reports/project/{id} [get]
func (h *ReportHandler) ProjectCompletion(c *gin.Context) {
	if !h.requireElevated(c) {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	req := services.ReportRequest{Kind: reporting.TypeProject, ProjectID: id}
	if !h.bindRange(c, &req) {
		return
	}
	h.respond(c, req)
}

// @Summary      User task completion report
// @Description  Staff may only request their own report.
// @Tags         Reports
// @Produce      json
// @Param        id      path   int     true   "User ID"
// @Param        start   query  string  true   "Start date (YYYY-MM-DD)"
// @Param        end     query  string  true   "End date (YYYY-MM-DD)"
// @Param        format  query  string  false  "json | xlsx | pdf"
// @Success      200  {object}  reporting.Result
// @Failure      403  {object}  map[string]string
// @Router       /reports/user/{id} [get]
func (h *ReportHandler) UserCompletion(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, roleID := getUserAndRole(c)
	if !authz.CanViewAllReports(roleID) && userID != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "staff can only view their own report"})
		return
	}
	req := services.ReportRequest{Kind: reporting.TypeUser, UserID: id}
	if !h.bindRange(c, &req) {
		return
	}
	h.respond(c, req)
}

// @Summary      Team summary report
// @Tags         Reports
// @Produce      json
// @Param        projectId  path   int     true   "Project ID"
// @Param        timeframe  query  string  true   "week | month"
// @Param        start      query  string  true   "Start date (YYYY-MM-DD)"
// @Param        format     query  string  false  "json | xlsx | pdf"
// @Success      200  {object}  reporting.TeamSummary
// @Router       /reports/team/{projectId} [get]
func (h *ReportHandler) TeamSummary(c *gin.Context) {
	if !h.requireElevated(c) {
		return
	}
	id, ok := parseID(c, "projectId")
	if !ok {
		return
	}
	start, ok := parseDate(c, "start", false)
	if !ok {
		return
	}
	req := services.ReportRequest{
		Kind:      reporting.TypeTeam,
		ProjectID: id,
		Timeframe: c.Query("timeframe"),
		Start:     start,
	}
	if !h.bindFormat(c, &req) {
		return
	}
	h.respond(c, req)
}

// @Summary      Logged time by project
// @Tags         Reports
// @Produce      json
// @Param        id      path   int     true   "Project ID"
// @Param        format  query  string  false  "json | xlsx | pdf"
// @Success      200  {object}  reporting.Result
// @Router       /reports/logged-time/project/{id} [get]
func (h *ReportHandler) LoggedTimeByProject(c *gin.Context) {
	if !h.requireElevated(c) {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	req := services.ReportRequest{Kind: reporting.TypeLoggedTimeProject, ProjectID: id}
	if !h.bindFormat(c, &req) {
		return
	}
	h.respond(c, req)
}

// @Summary      Logged time by department
// @Tags         Reports
// @Produce      json
// @Param        department  path   string  true   "Department name"
// @Param        format      query  string  false  "json | xlsx | pdf"
// @Success      200  {object}  reporting.Result
// @Router       /reports/logged-time/department/{department} [get]
func (h *ReportHandler) LoggedTimeByDepartment(c *gin.Context) {
	if !h.requireElevated(c) {
		return
	}
	req := services.ReportRequest{Kind: reporting.TypeLoggedTimeDepartment, Department: c.Param("department")}
	if !h.bindFormat(c, &req) {
		return
	}
	h.respond(c, req)
}

// @Summary      Departments accepted by the department report
// @Tags         Reports
// @Produce      json
// @Success      200  {array}  string
// @Router       /reports/departments [get]
func (h *ReportHandler) Departments(c *gin.Context) {
	c.JSON(http.StatusOK, h.departments)
}

func (h *ReportHandler) requireElevated(c *gin.Context) bool {
	if _, roleID := getUserAndRole(c); !authz.CanViewAllReports(roleID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return false
	}
	return true
}

func (h *ReportHandler) bindRange(c *gin.Context, req *services.ReportRequest) bool {
	var ok bool
	if req.Start, ok = parseDate(c, "start", false); !ok {
		return false
	}
	if req.End, ok = parseDate(c, "end", true); !ok {
		return false
	}
	return h.bindFormat(c, req)
}

func (h *ReportHandler) bindFormat(c *gin.Context, req *services.ReportRequest) bool {
	f, err := services.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	req.Format = f
	return true
}

func (h *ReportHandler) respond(c *gin.Context, req services.ReportRequest) {
	export, err := h.gen.Generate(c.Request.Context(), req)
	if err != nil {
		writeError(c, "report."+string(req.Kind), err)
		return
	}
	if req.Format == services.FormatJSON {
		c.JSON(http.StatusOK, export.Data)
		return
	}
	name := strings.ReplaceAll(export.Filename, `"`, "")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	if export.Cached {
		c.Header("X-Report-Cache", "hit")
	}
	c.Data(http.StatusOK, export.ContentType, export.Body)
}
