package v1

import (
	"net/http"

	"alumni-talent-platform/internal/delivery/http/middleware"
	"alumni-talent-platform/internal/delivery/http/response"
	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobUC domain.JobUsecase
}

func NewJobHandler(public *gin.RouterGroup, protected *gin.RouterGroup, jobUC domain.JobUsecase) {
	handler := &JobHandler{jobUC: jobUC}

	// Published jobs of published companies only
	publicJobs := public.Group("/jobs")
	{
		publicJobs.GET("", handler.ListPublished)
		publicJobs.GET("/:id", handler.Get)
	}

	// Verified company owners
	jobs := protected.Group("/jobs")
	{
		jobs.GET("/mine", handler.ListMine)
		jobs.POST("", handler.Create)
		jobs.PUT("/:id", handler.Update)
		jobs.PATCH("/:id/publish", handler.SetPublished)
		jobs.DELETE("/:id", handler.Delete)
	}
}

// ListPublished godoc
// @Summary      List published jobs
// @Tags         jobs
// @Produce      json
// @Param        q                query     string  false  "Search title or company"
// @Param        employment_type  query     string  false  "FULL_TIME, PART_TIME, CONTRACT or INTERNSHIP"
// @Param        tag              query     string  false  "Tag"
// @Param        page             query     int     false  "Page number"
// @Param        limit            query     int     false  "Page size (max 100)"
// @Success      200              {object}  response.Response{data=domain.JobPage}
// @Router       /jobs [get]
func (h *JobHandler) ListPublished(c *gin.Context) {
	var filter domain.JobFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(apperror.BadRequest("Invalid filter"))
		return
	}

	page, err := h.jobUC.ListPublished(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Jobs", page)
}

// Get godoc
// @Summary      Get a job
// @Description  Drafts are only visible to the owning company and admins
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [get]
func (h *JobHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	job, err := h.jobUC.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job", job)
}

// ListMine godoc
// @Summary      List my company's jobs
// @Tags         jobs
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Job}
// @Failure      403  {object}  response.Response
// @Router       /jobs/mine [get]
// @Security     SessionCookie
func (h *JobHandler) ListMine(c *gin.Context) {
	jobs, err := h.jobUC.ListMine(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Jobs", jobs)
}

// Create godoc
// @Summary      Create a job
// @Description  Creates an unpublished draft for the caller's company
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        job  body      domain.JobInput  true  "Job"
// @Success      201  {object}  response.Response{data=domain.Job}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /jobs [post]
// @Security     SessionCookie
func (h *JobHandler) Create(c *gin.Context) {
	var in domain.JobInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	job, err := h.jobUC.Create(c.Request.Context(), middleware.CurrentUser(c), &in)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Job created", job)
}

// Update godoc
// @Summary      Update a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id   path      int              true  "Job ID"
// @Param        job  body      domain.JobInput  true  "Job"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [put]
// @Security     SessionCookie
func (h *JobHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var in domain.JobInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	job, err := h.jobUC.Update(c.Request.Context(), middleware.CurrentUser(c), id, &in)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job updated", job)
}

// SetPublished godoc
// @Summary      Publish or unpublish a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id       path      int             true  "Job ID"
// @Param        request  body      PublishRequest  true  "Visibility"
// @Success      200      {object}  response.Response{data=domain.Job}
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /jobs/{id}/publish [patch]
// @Security     SessionCookie
func (h *JobHandler) SetPublished(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation("published", "published: 必填"))
		return
	}

	job, err := h.jobUC.SetPublished(c.Request.Context(), middleware.CurrentUser(c), id, *req.Published)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job updated", job)
}

// Delete godoc
// @Summary      Delete a job
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [delete]
// @Security     SessionCookie
func (h *JobHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.jobUC.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job deleted", nil)
}
