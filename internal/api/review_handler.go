package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/lifeops/scheduler/internal/biz/review"
	"github.com/lifeops/scheduler/internal/domain/fault"
	"github.com/lifeops/scheduler/internal/reviewjob"
)

type ReviewHandler struct {
	job     *reviewjob.Job
	outputs review.Repo
}

func NewReviewHandler(job *reviewjob.Job, outputs review.Repo) *ReviewHandler {
	return &ReviewHandler{job: job, outputs: outputs}
}

func (h *ReviewHandler) Bind(group *gin.RouterGroup) {
	reviews := group.Group("/reviews")
	{
		reviews.POST("", h.Run)
		reviews.GET("", h.List)
		reviews.GET("/:id", h.Get)
	}
}

// Run executes one review scan synchronously and returns the snapshot.
func (h *ReviewHandler) Run(c *gin.Context) {
	output, err := h.job.Run(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, toReviewOutputResp(output))
}

func (h *ReviewHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	output, err := h.outputs.GetOutput(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if output == nil {
		_ = c.Error(fault.NotFound("review_output", id))
		return
	}
	c.JSON(http.StatusOK, toReviewOutputResp(output))
}

func (h *ReviewHandler) List(c *gin.Context) {
	var req PageReq
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: err.Error()})
		return
	}

	outputs, total, err := h.outputs.ListOutputs(c.Request.Context(), req.Offset, req.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, PageResp[ReviewOutputResp]{
		Total: total,
		Items: lo.Map(outputs, func(o *review.Output, _ int) ReviewOutputResp {
			return toReviewOutputResp(o)
		}),
	})
}
