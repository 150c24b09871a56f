package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/board"
	"taskboard/internal/models"
)

type taskRequest struct {
	Title        *string          `json:"title"`
	Priority     *models.Priority `json:"priority"`
	DueDate      *time.Time       `json:"dueDate"`
	ClearDueDate bool             `json:"clearDueDate"`
	IsCompleted  *bool            `json:"isCompleted"`
}

type deleteRequest struct {
	Query   string `json:"query"`
	Offsets []int  `json:"offsets" binding:"required"`
}

type moveRequest struct {
	Source      []int `json:"source" binding:"required"`
	Destination *int  `json:"destination" binding:"required"`
}

// handleListTasks returns the tasks matching ?q= together with board-wide stats.
func (s *Server) handleListTasks(c *gin.Context) {
	query := c.Query("q")
	respondSuccess(c, http.StatusOK, gin.H{
		"query": query,
		"tasks": s.board.List(query),
		"stats": s.board.Stats(),
	})
}

// handleCreateTask appends a new task to the board.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	title := strings.TrimSpace(getString(req.Title))
	if title == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("title is required"))
		return
	}

	opts := []models.TaskOption{models.WithDueDate(req.DueDate)}
	if req.Priority != nil {
		opts = append(opts, models.WithPriority(*req.Priority))
	}
	if req.IsCompleted != nil {
		opts = append(opts, models.WithCompleted(*req.IsCompleted))
	}

	task := s.board.Add(models.NewTask(title, opts...))
	respondSuccess(c, http.StatusCreated, gin.H{"task": task})
}

// handleGetTask returns a single task.
func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	task, err := s.board.Get(id)
	if err != nil {
		s.respondError(c, http.StatusNotFound, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": task})
}

// handleUpdateTask edits a task by replacing it with a changed copy.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	var title string
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
		if title == "" {
			s.respondError(c, http.StatusBadRequest, fmt.Errorf("title must not be empty"))
			return
		}
	}

	// only the fields present in the request are merged into the stored task
	updated, err := s.board.Edit(id, func(task *models.Task) error {
		if req.Title != nil {
			task.Title = title
		}
		if req.Priority != nil {
			task.Priority = *req.Priority
		}
		if req.IsCompleted != nil {
			task.IsCompleted = *req.IsCompleted
		}
		switch {
		case req.ClearDueDate:
			task.DueDate = nil
		case req.DueDate != nil:
			task.DueDate = req.DueDate
		}
		return nil
	})
	if err != nil {
		s.respondError(c, http.StatusNotFound, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": updated})
}

// handleToggleTask flips the completion flag of a task.
func (s *Server) handleToggleTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	task, err := s.board.Toggle(id)
	if err != nil {
		s.respondError(c, http.StatusNotFound, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": task})
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if s.board.DeleteIDs(id) == 0 {
		s.respondError(c, http.StatusNotFound, board.ErrNotFound)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// handleDeleteAt removes tasks by their positions in the filtered view the
// client was looking at.
func (s *Server) handleDeleteAt(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	ids := s.board.DeleteAt(req.Query, req.Offsets)
	respondSuccess(c, http.StatusOK, gin.H{"deleted": ids, "stats": s.board.Stats()})
}

// handleMoveTasks reorders the unfiltered board.
func (s *Server) handleMoveTasks(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	tasks := s.board.Move(req.Source, *req.Destination)
	respondSuccess(c, http.StatusOK, gin.H{"tasks": tasks})
}

func getString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
