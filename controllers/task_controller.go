package controllers

import (
	"net/http"
	"time"

	"github.com/Gautamrajanand/crm-supabase-sub000/app"
	"github.com/Gautamrajanand/crm-supabase-sub000/models"

	"github.com/gin-gonic/gin"
)

type TaskController struct{ *Srv }

func GetTaskController(s *Srv) *TaskController { return &TaskController{Srv: s} }

// GET /api/tasks?status=&assigneeId=
func (tc *TaskController) List(c *gin.Context) {
	tasks, err := tc.Repo.ListTasks(c.Request.Context(), app.StreamID(c),
		models.TaskStatus(c.Query("status")), c.Query("assigneeId"))
	if err != nil {
		httpError(c, err)
		return
	}
	if tc.abortStale(c) {
		return
	}
	c.JSON(http.StatusOK, app.H{"tasks": tasks, "streamId": app.StreamID(c)})
}

// POST /api/tasks
func (tc *TaskController) Create(c *gin.Context) {
	var in struct {
		Title      string     `json:"title" binding:"required"`
		AssigneeID *string    `json:"assigneeId"`
		DueAt      *time.Time `json:"dueAt"`
		Notes      string     `json:"notes"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.AssigneeID != nil {
		// Assignees must belong to the stream.
		if _, err := tc.Repo.GetMembership(c.Request.Context(), *in.AssigneeID, app.StreamID(c)); err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "assignee is not a member"})
			return
		}
	}
	t := &models.Task{
		StreamID:   app.StreamID(c),
		Title:      in.Title,
		Status:     models.TaskOpen,
		AssigneeID: in.AssigneeID,
		DueAt:      in.DueAt,
		Notes:      in.Notes,
		CreatedBy:  app.UserID(c),
	}
	if err := tc.Repo.CreateTask(c.Request.Context(), t); err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// POST /api/tasks/:id/complete
func (tc *TaskController) Complete(c *gin.Context) {
	t, err := tc.Repo.CompleteTask(c.Request.Context(), app.StreamID(c), c.Param("id"))
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// PUT /api/tasks/:id
func (tc *TaskController) Update(c *gin.Context) {
	var in struct {
		Title      *string    `json:"title"`
		AssigneeID *string    `json:"assigneeId"`
		DueAt      *time.Time `json:"dueAt"`
		Notes      *string    `json:"notes"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.AssigneeID != nil {
		if _, err := tc.Repo.GetMembership(c.Request.Context(), *in.AssigneeID, app.StreamID(c)); err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "assignee is not a member"})
			return
		}
		updates["assignee_id"] = *in.AssigneeID
	}
	if in.DueAt != nil {
		updates["due_at"] = *in.DueAt
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	t, err := tc.Repo.UpdateTask(c.Request.Context(), app.StreamID(c), c.Param("id"), updates)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// DELETE /api/tasks/:id
func (tc *TaskController) Delete(c *gin.Context) {
	if err := tc.Repo.DeleteTask(c.Request.Context(), app.StreamID(c), c.Param("id")); err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
