package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/samber/mo"

	"github.com/lifeops/scheduler/internal/biz/audit"
	"github.com/lifeops/scheduler/internal/biz/execution"
	"github.com/lifeops/scheduler/internal/domain/fault"
)

type ExecutionHandler struct {
	executions execution.Repo
	audits     audit.Repo
}

func NewExecutionHandler(executions execution.Repo, audits audit.Repo) *ExecutionHandler {
	return &ExecutionHandler{executions: executions, audits: audits}
}

func (h *ExecutionHandler) Bind(group *gin.RouterGroup) {
	executions := group.Group("/executions")
	{
		executions.GET("", h.List)
		executions.GET("/:id", h.Get)
		executions.GET("/:id/audit-logs", h.AuditLogs)
	}
}

type ListExecutionsReq struct {
	PageReq
	ScheduleID    *uint64    `form:"schedule_id"`
	TaskIntentID  *uint64    `form:"task_intent_id"`
	Status        string     `form:"status" binding:"omitempty,oneof=queued running succeeded failed retry_scheduled canceled"`
	ScheduledFrom *time.Time `form:"scheduled_from" time_format:"2006-01-02T15:04:05Z07:00"`
	ScheduledTo   *time.Time `form:"scheduled_to" time_format:"2006-01-02T15:04:05Z07:00"`
}

func (h *ExecutionHandler) List(c *gin.Context) {
	var req ListExecutionsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: err.Error()})
		return
	}

	filter := &execution.Filter{}
	if req.ScheduleID != nil {
		filter.ScheduleID = mo.Some(*req.ScheduleID)
	}
	if req.TaskIntentID != nil {
		filter.TaskIntentID = mo.Some(*req.TaskIntentID)
	}
	if req.Status != "" {
		filter.Status = mo.Some(execution.Status(req.Status))
	}
	if req.ScheduledFrom != nil {
		filter.ScheduledFrom = mo.Some(*req.ScheduledFrom)
	}
	if req.ScheduledTo != nil {
		filter.ScheduledTo = mo.Some(*req.ScheduledTo)
	}

	items, total, err := h.executions.List(c.Request.Context(), filter, req.Offset, req.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, PageResp[ExecutionResp]{
		Total: total,
		Items: lo.Map(items, func(e *execution.Execution, _ int) ExecutionResp {
			return toExecutionResp(e)
		}),
	})
}

func (h *ExecutionHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	exec, err := h.executions.GetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if exec == nil {
		_ = c.Error(fault.NotFound("execution", id))
		return
	}
	c.JSON(http.StatusOK, toExecutionResp(exec))
}

func (h *ExecutionHandler) AuditLogs(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req PageReq
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: err.Error()})
		return
	}

	logs, total, err := h.audits.ListExecutionLogs(c.Request.Context(), id, req.Offset, req.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, PageResp[ExecutionAuditLogResp]{
		Total: total,
		Items: lo.Map(logs, func(l *audit.ExecutionAuditLog, _ int) ExecutionAuditLogResp {
			return toExecutionAuditLogResp(l)
		}),
	})
}
