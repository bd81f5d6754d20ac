package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"taskflow/internal/logging"
	"taskflow/internal/services"
)

type ProjectHandler struct {
	service services.ProjectService
	log     zerolog.Logger
}

func NewProjectHandler(service services.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service, log: logging.Component("projects")}
}

type projectRequest struct {
	Name string `json:"name" binding:"required"`
}

type memberRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// @Summary      Create a project
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Param        project  body      projectRequest  true  "Project"
// @Success      201      {object}  models.Project
// @Failure      400      {object}  map[string]string
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.service.Create(c.Request.Context(), req.Name, userID)
	if err != nil {
		writeError(c, "project.create", err)
		return
	}
	h.log.Info().Int64("id", p.ID).Int64("owner", userID).Msg("[project][create] ok")
	c.JSON(http.StatusCreated, p)
}

// @Summary      List projects
// @Tags         Projects
// @Produce      json
// @Success      200  {array}  models.Project
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, "project.list", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Get a project with its owner and members
// @Tags         Projects
// @Produce      json
// @Param        id  path  int  true  "Project ID"
// @Success      200  {object}  models.Project
// @Failure      404  {object}  map[string]string
// @Router       /projects/{id} [get]
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, "project.get", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      Add a project member
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Param        id    path  int            true  "Project ID"
// @Param        body  body  memberRequest  true  "Member"
// @Success      200  {object}  models.Project
// @Failure      404  {object}  map[string]string
// @Router       /projects/{id}/members [post]
func (h *ProjectHandler) AddMember(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.service.AddMember(c.Request.Context(), id, req.UserID)
	if err != nil {
		writeError(c, "project.member", err)
		return
	}
	h.log.Info().Int64("id", id).Int64("user", req.UserID).Msg("[project][member] added")
	c.JSON(http.StatusOK, p)
}
