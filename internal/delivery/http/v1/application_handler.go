package v1

import (
	"net/http"

	"alumni-talent-platform/internal/delivery/http/middleware"
	"alumni-talent-platform/internal/delivery/http/response"
	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

// NewApplicationHandler registers application routes
func NewApplicationHandler(protected *gin.RouterGroup, applicationUC domain.ApplicationUsecase) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	// Alumni
	applications := protected.Group("/applications")
	{
		applications.POST("", handler.Apply)
		applications.GET("", handler.ListMine)
		applications.PATCH("/:id/status", handler.UpdateStatus)
	}

	// Company owners
	protected.GET("/jobs/:id/applications", handler.ListForJob)
}

type UpdateApplicationStatusRequest struct {
	Status domain.ApplicationStatus `json:"status" binding:"required,oneof=reviewed accepted rejected"`
}

// Apply godoc
// @Summary      Apply to a job
// @Description  Verified alumni apply with one of their own resumes; one application per job
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        body  body      domain.ApplyInput  true  "Application"
// @Success      201   {object}  response.Response{data=domain.Application}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /applications [post]
// @Security     SessionCookie
func (h *ApplicationHandler) Apply(c *gin.Context) {
	var in domain.ApplyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	app, err := h.applicationUC.Apply(c.Request.Context(), middleware.CurrentUser(c), &in)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Application submitted", app)
}

// ListMine godoc
// @Summary      My applications
// @Tags         applications
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Application}
// @Failure      403  {object}  response.Response
// @Router       /applications [get]
// @Security     SessionCookie
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	apps, err := h.applicationUC.ListMine(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications", apps)
}

// ListForJob godoc
// @Summary      Applications for a job
// @Description  Company owners only
// @Tags         applications
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response{data=[]domain.Application}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id}/applications [get]
// @Security     SessionCookie
func (h *ApplicationHandler) ListForJob(c *gin.Context) {
	jobID, err := idParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	apps, err := h.applicationUC.ListForJob(c.Request.Context(), middleware.CurrentUser(c), jobID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications", apps)
}

// UpdateStatus godoc
// @Summary      Update application status
// @Description  applied moves to reviewed, accepted or rejected; reviewed moves to accepted or rejected
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      int                             true  "Application ID"
// @Param        body  body      UpdateApplicationStatusRequest  true  "New status"
// @Success      200   {object}  response.Response{data=domain.Application}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /applications/{id}/status [patch]
// @Security     SessionCookie
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation("status", "status: 僅支援 reviewed、accepted 或 rejected"))
		return
	}

	app, err := h.applicationUC.UpdateStatus(c.Request.Context(), middleware.CurrentUser(c), id, req.Status)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application updated", app)
}
