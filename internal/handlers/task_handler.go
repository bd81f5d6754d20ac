package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"taskflow/internal/logging"
	"taskflow/internal/models"
	"taskflow/internal/services"
)

type TaskHandler struct {
	service  services.TaskService
	subtasks services.SubtaskService
	log      zerolog.Logger
}

func NewTaskHandler(service services.TaskService, subtasks services.SubtaskService) *TaskHandler {
	return &TaskHandler{service: service, subtasks: subtasks, log: logging.Component("tasks")}
}

type taskRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    int     `json:"priority"`
	Tags        string  `json:"tags"`
	ProjectID   int64   `json:"project_id"`
	AssigneeIDs []int64 `json:"assignee_ids"`
	DueDate     string  `json:"due_date"` // RFC3339
	TimeTaken   int     `json:"time_taken"`
}

func (r taskRequest) dueDate() (*time.Time, error) {
	if r.DueDate == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, r.DueDate)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func userRefs(ids []int64) []*models.UserRef {
	refs := make([]*models.UserRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, &models.UserRef{ID: id})
	}
	return refs
}

// @Summary      Create a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        task  body      taskRequest  true  "Task"
// @Success      201   {object}  models.Task
// @Failure      400   {object}  map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	due, err := req.dueDate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date (RFC3339)"})
		return
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Priority:    req.Priority,
		Tags:        req.Tags,
		Owner:       &models.UserRef{ID: userID},
		Assignee:    userRefs(req.AssigneeIDs),
		DueDate:     due,
		TimeTaken:   req.TimeTaken,
	}
	if req.ProjectID != 0 {
		task.Project = &models.ProjectRef{ID: req.ProjectID}
	}

	created, err := h.service.Create(c.Request.Context(), task)
	if err != nil {
		writeError(c, "task.create", err)
		return
	}
	h.log.Info().Int64("id", created.ID).Int64("owner", userID).Msg("[task][create] ok")
	c.JSON(http.StatusCreated, created)
}

// @Summary      List tasks
// @Tags         Tasks
// @Produce      json
// @Param        project_id   query  int     false  "Project"
// @Param        assignee_id  query  int     false  "Assignee"
// @Param        status       query  string  false  "Status"
// @Param        archived     query  bool    false  "Archived"
// @Success      200  {array}  models.Task
// @Router       /tasks [get]
func (h *TaskHandler) GetAll(c *gin.Context) {
	var filter models.TaskFilter
	if v, ok := queryInt64(c, "project_id"); ok {
		filter.ProjectID = &v
	}
	if v, ok := queryInt64(c, "owner_id"); ok {
		filter.OwnerID = &v
	}
	if v, ok := queryInt64(c, "assignee_id"); ok {
		filter.AssigneeID = &v
	}
	if s := c.Query("status"); s != "" {
		st := models.CanonicalStatus(s)
		filter.Status = &st
	}
	if s := c.Query("archived"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid archived"})
			return
		}
		filter.Archived = &b
	}

	tasks, err := h.service.GetAll(c.Request.Context(), filter)
	if err != nil {
		writeError(c, "task.list", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// @Summary      Get a task
// @Tags         Tasks
// @Produce      json
// @Param        id  path  int  true  "Task ID"
// @Success      200  {object}  models.Task
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	task, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, "task.get", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      Change task status
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id    path  int     true  "Task ID"
// @Param        body  body  object  true  "{\"status\": \"In Progress\"}"
// @Success      200  {object}  models.Task
// @Router       /tasks/{id}/status [post]
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := h.service.UpdateStatus(c.Request.Context(), id, models.TaskStatus(req.Status))
	if err != nil {
		writeError(c, "task.status", err)
		return
	}
	h.log.Info().Int64("id", id).Str("status", string(task.Status)).Msg("[task][status] ok")
	c.JSON(http.StatusOK, task)
}

type timeRequest struct {
	Minutes int `json:"minutes" binding:"required"`
}

// @Summary      Log time on a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id    path  int          true  "Task ID"
// @Param        body  body  timeRequest  true  "Minutes to add"
// @Success      200  {object}  models.Task
// @Router       /tasks/{id}/time [post]
func (h *TaskHandler) LogTime(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req timeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := h.service.LogTime(c.Request.Context(), id, req.Minutes)
	if err != nil {
		writeError(c, "task.time", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      Archive a task
// @Tags         Tasks
// @Param        id  path  int  true  "Task ID"
// @Success      204
// @Router       /tasks/{id}/archive [post]
func (h *TaskHandler) Archive(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Archive(c.Request.Context(), id); err != nil {
		writeError(c, "task.archive", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type subtaskRequest struct {
	taskRequest
	ParentTaskID int64 `json:"parent_task_id" binding:"required"`
}

// @Summary      Create a subtask
// @Tags         Subtasks
// @Accept       json
// @Produce      json
// @Param        subtask  body  subtaskRequest  true  "Subtask"
// @Success      201  {object}  models.Subtask
// @Router       /subtasks [post]
func (h *TaskHandler) CreateSubtask(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	var req subtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	due, err := req.dueDate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date (RFC3339)"})
		return
	}
	st := &models.Subtask{
		Title:        req.Title,
		Description:  req.Description,
		Status:       models.TaskStatus(req.Status),
		Priority:     req.Priority,
		Tags:         req.Tags,
		OwnerID:      &models.UserRef{ID: userID},
		AssigneeID:   userRefs(req.AssigneeIDs),
		ParentTaskID: req.ParentTaskID,
		DueDate:      due,
		TimeTaken:    req.TimeTaken,
	}
	if req.ProjectID != 0 {
		st.ProjectID = &models.ProjectRef{ID: req.ProjectID}
	}
	created, err := h.subtasks.Create(c.Request.Context(), st)
	if err != nil {
		writeError(c, "subtask.create", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// @Summary      List a task's subtasks
// @Tags         Subtasks
// @Produce      json
// @Param        id  path  int  true  "Parent task ID"
// @Success      200  {array}  models.Subtask
// @Router       /tasks/{id}/subtasks [get]
func (h *TaskHandler) ListSubtasks(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	list, err := h.subtasks.ListByParent(c.Request.Context(), id)
	if err != nil {
		writeError(c, "subtask.list", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Log time on a subtask
// @Tags         Subtasks
// @Accept       json
// @Produce      json
// @Param        id    path  int          true  "Subtask ID"
// @Param        body  body  timeRequest  true  "Minutes to add"
// @Success      200  {object}  models.Subtask
// @Router       /subtasks/{id}/time [post]
func (h *TaskHandler) LogSubtaskTime(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req timeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.subtasks.LogTime(c.Request.Context(), id, req.Minutes)
	if err != nil {
		writeError(c, "subtask.time", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func queryInt64(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Query(name), 10, 64)
	return v, err == nil
}
