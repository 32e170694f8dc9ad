package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lifeops/scheduler/internal/bridge"
	"github.com/lifeops/scheduler/internal/biz/execution"
)

// CallbackHandler is the inbound edge for provider trigger callbacks.
type CallbackHandler struct {
	bridge *bridge.Bridge
}

func NewCallbackHandler(b *bridge.Bridge) *CallbackHandler {
	return &CallbackHandler{bridge: b}
}

func (h *CallbackHandler) Bind(group *gin.RouterGroup) {
	group.POST("/callbacks", h.Handle)
}

func (h *CallbackHandler) Handle(c *gin.Context) {
	var req CallbackReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: err.Error()})
		return
	}

	cb := bridge.Callback{
		ScheduleID:   req.ScheduleID,
		ScheduledFor: req.ScheduledFor,
		TraceID:      req.TraceID,
		Source:       execution.TriggerSource(req.Source),
	}
	if req.EmittedAt != nil {
		cb.EmittedAt = *req.EmittedAt
	} else {
		cb.EmittedAt = time.Now()
	}

	outcome, err := h.bridge.Handle(c.Request.Context(), cb)
	if err != nil {
		_ = c.Error(err)
		return
	}

	status := http.StatusAccepted
	if outcome.Status == bridge.OutcomeDuplicate {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"status":       string(outcome.Status),
		"execution_id": outcome.ExecutionID,
	})
}
