package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/samber/mo"

	"github.com/lifeops/scheduler/internal/biz/intent"
	"github.com/lifeops/scheduler/internal/command"
	"github.com/lifeops/scheduler/internal/domain/fault"
)

type IntentHandler struct {
	commands *command.Service
	intents  intent.Repo
}

func NewIntentHandler(commands *command.Service, intents intent.Repo) *IntentHandler {
	return &IntentHandler{commands: commands, intents: intents}
}

func (h *IntentHandler) Bind(group *gin.RouterGroup) {
	intents := group.Group("/intents")
	{
		intents.GET("", h.List)
		intents.GET("/:id", h.Get)
		intents.POST("/:id/supersede", h.Supersede)
	}
}

type ListIntentsReq struct {
	PageReq
	CreatorID  string `form:"creator_id"`
	OriginRef  string `form:"origin_ref"`
	Superseded *bool  `form:"superseded"`
}

func (h *IntentHandler) List(c *gin.Context) {
	var req ListIntentsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: err.Error()})
		return
	}

	filter := &intent.Filter{}
	if req.CreatorID != "" {
		filter.CreatorID = mo.Some(req.CreatorID)
	}
	if req.OriginRef != "" {
		filter.OriginRef = mo.Some(req.OriginRef)
	}
	if req.Superseded != nil {
		filter.Superseded = mo.Some(*req.Superseded)
	}

	items, total, err := h.intents.List(c.Request.Context(), filter, req.Offset, req.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, PageResp[IntentResp]{
		Total: total,
		Items: lo.Map(items, func(i *intent.TaskIntent, _ int) IntentResp {
			return toIntentResp(i)
		}),
	})
}

func (h *IntentHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	taskIntent, err := h.intents.GetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if taskIntent == nil {
		_ = c.Error(fault.NotFound("task_intent", id))
		return
	}
	c.JSON(http.StatusOK, toIntentResp(taskIntent))
}

func (h *IntentHandler) Supersede(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req SupersedeIntentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: err.Error()})
		return
	}

	if err := h.commands.SupersedeIntent(c.Request.Context(), id, req.SupersededByIntentID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "superseded_by_intent_id": req.SupersededByIntentID})
}
