package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/samber/mo"

	"github.com/lifeops/scheduler/internal/biz/actor"
	"github.com/lifeops/scheduler/internal/biz/audit"
	"github.com/lifeops/scheduler/internal/biz/schedule"
	"github.com/lifeops/scheduler/internal/command"
	"github.com/lifeops/scheduler/internal/domain/fault"
	"github.com/lifeops/scheduler/internal/predicate"
)

type ScheduleHandler struct {
	commands  *command.Service
	evaluator *predicate.Service
	schedules schedule.Repo
	audits    audit.Repo
}

func NewScheduleHandler(
	commands *command.Service,
	evaluator *predicate.Service,
	schedules schedule.Repo,
	audits audit.Repo,
) *ScheduleHandler {
	return &ScheduleHandler{
		commands:  commands,
		evaluator: evaluator,
		schedules: schedules,
		audits:    audits,
	}
}

func (h *ScheduleHandler) Bind(group *gin.RouterGroup) {
	schedules := group.Group("/schedules")
	{
		schedules.POST("", h.Create)
		schedules.GET("", h.List)
		schedules.GET("/:id", h.Get)
		schedules.PUT("/:id", h.Update)
		schedules.POST("/:id/pause", h.Pause)
		schedules.POST("/:id/resume", h.Resume)
		schedules.DELETE("/:id", h.Delete)
		schedules.POST("/:id/archive", h.Archive)
		schedules.POST("/:id/run-now", h.RunNow)
		schedules.POST("/:id/evaluate", h.Evaluate)
		schedules.GET("/:id/audit-logs", h.AuditLogs)
	}
}

func (h *ScheduleHandler) Create(c *gin.Context) {
	var req CreateScheduleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: err.Error()})
		return
	}

	sched, err := h.commands.Create(c.Request.Context(), req.toDomain(), req.Actor.toDomain())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, toScheduleResp(sched))
}

func (h *ScheduleHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	sched, err := h.schedules.GetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if sched == nil {
		_ = c.Error(fault.NotFound("schedule", id))
		return
	}
	c.JSON(http.StatusOK, toScheduleResp(sched))
}

type ListSchedulesReq struct {
	PageReq
	TaskIntentID *uint64 `form:"task_intent_id"`
	Type         string  `form:"type" binding:"omitempty,oneof=one_time interval calendar_rule conditional"`
	State        string  `form:"state" binding:"omitempty,oneof=draft active paused canceled completed archived"`
}

func (h *ScheduleHandler) List(c *gin.Context) {
	var req ListSchedulesReq
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: err.Error()})
		return
	}

	filter := &schedule.Filter{}
	if req.TaskIntentID != nil {
		filter.TaskIntentID = mo.Some(*req.TaskIntentID)
	}
	if req.Type != "" {
		filter.Type = mo.Some(schedule.Type(req.Type))
	}
	if req.State != "" {
		filter.State = mo.Some(schedule.State(req.State))
	}

	items, total, err := h.schedules.List(c.Request.Context(), filter, req.Offset, req.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, PageResp[ScheduleResp]{
		Total: total,
		Items: lo.Map(items, func(s *schedule.Schedule, _ int) ScheduleResp {
			return toScheduleResp(s)
		}),
	})
}

func (h *ScheduleHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateScheduleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: err.Error()})
		return
	}

	sched, err := h.commands.Update(c.Request.Context(), id, req.toDomain(), req.Actor.toDomain())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toScheduleResp(sched))
}

func (h *ScheduleHandler) Pause(c *gin.Context) {
	h.transition(c, h.commands.Pause)
}

func (h *ScheduleHandler) Resume(c *gin.Context) {
	h.transition(c, h.commands.Resume)
}

type transitionFunc func(ctx context.Context, id uint64, opts command.TransitionOptions, act actor.Context) error

func (h *ScheduleHandler) transition(c *gin.Context, op transitionFunc) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req TransitionReq
	if !bindOptionalJSON(c, &req) {
		return
	}

	err := op(c.Request.Context(), id, command.TransitionOptions{AllowNoop: req.AllowNoop}, req.Actor.toDomain())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req TransitionReq
	if !bindOptionalJSON(c, &req) {
		return
	}

	if err := h.commands.Delete(c.Request.Context(), id, req.Actor.toDomain()); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *ScheduleHandler) Archive(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req TransitionReq
	if !bindOptionalJSON(c, &req) {
		return
	}

	if err := h.commands.Archive(c.Request.Context(), id, req.Actor.toDomain()); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *ScheduleHandler) RunNow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req RunNowReq
	if !bindOptionalJSON(c, &req) {
		return
	}

	runReq := command.RunNowRequest{TraceID: req.TraceID}
	if req.ScheduledFor != nil {
		runReq.ScheduledFor = mo.Some(*req.ScheduledFor)
	}

	auditID, err := h.commands.RunNow(c.Request.Context(), id, runReq, req.Actor.toDomain())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": id, "audit_log_id": auditID})
}

func (h *ScheduleHandler) Evaluate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req EvaluatePredicateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: err.Error()})
		return
	}

	result, err := h.evaluator.Evaluate(c.Request.Context(), predicate.Request{
		EvaluationID: req.EvaluationID,
		ScheduleID:   id,
		EvaluatedAt:  time.Now(),
		Actor:        req.Actor.toDomain(),
		ProviderMeta: req.ProviderMeta,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"evaluation_id":  result.EvaluationID,
		"schedule_id":    result.ScheduleID,
		"status":         string(result.Status),
		"observed_value": result.ObservedValue,
		"authorization":  string(result.Authorization),
		"attempt":        result.Attempt,
	})
}

type AuditLogsReq struct {
	PageReq
	Event   string `form:"event" binding:"omitempty,oneof=create update pause resume delete archive run_now"`
	TraceID string `form:"trace_id"`
}

func (h *ScheduleHandler) AuditLogs(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req AuditLogsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: err.Error()})
		return
	}

	filter := &audit.ScheduleLogFilter{ScheduleID: mo.Some(id)}
	if req.Event != "" {
		filter.Event = mo.Some(audit.EventType(req.Event))
	}
	if req.TraceID != "" {
		filter.TraceID = mo.Some(req.TraceID)
	}

	logs, total, err := h.audits.ListScheduleLogs(c.Request.Context(), filter, req.Offset, req.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, PageResp[ScheduleAuditLogResp]{
		Total: total,
		Items: lo.Map(logs, func(l *audit.ScheduleAuditLog, _ int) ScheduleAuditLogResp {
			return toScheduleAuditLogResp(l)
		}),
	})
}

// bindOptionalJSON binds the body when one is present; an empty body leaves
// req at its zero value so mutation endpoints work without a payload.
func bindOptionalJSON(c *gin.Context, req any) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: err.Error()})
		return false
	}
	return true
}

func pathID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: "id must be a positive integer"})
		return 0, false
	}
	return id, true
}
