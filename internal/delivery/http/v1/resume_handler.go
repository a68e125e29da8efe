package v1

import (
	"net/http"

	"alumni-talent-platform/internal/delivery/http/middleware"
	"alumni-talent-platform/internal/delivery/http/response"
	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ResumeHandler struct {
	resumeUC domain.ResumeUsecase
}

func NewResumeHandler(protected *gin.RouterGroup, resumeUC domain.ResumeUsecase) {
	handler := &ResumeHandler{resumeUC: resumeUC}

	resumes := protected.Group("/resumes")
	{
		resumes.GET("", handler.List)
		resumes.POST("", handler.Upload)
		resumes.DELETE("/:id", handler.Delete)
	}
}

// Upload godoc
// @Summary      Upload a resume
// @Description  pdf, doc or docx up to 5 MB; verified alumni only
// @Tags         resumes
// @Accept       multipart/form-data
// @Produce      json
// @Param        title  formData  string  false  "Display title, defaults to the file name"
// @Param        file   formData  file    true   "Resume file"
// @Success      201    {object}  response.Response{data=domain.Resume}
// @Failure      400    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Failure      429    {object}  response.Response
// @Router       /resumes [post]
// @Security     SessionCookie
func (h *ResumeHandler) Upload(c *gin.Context) {
	limitBody(c)
	file, err := formFile(c, "file")
	if err != nil {
		c.Error(err)
		return
	}
	if file == nil {
		c.Error(apperror.Validation("file", "檔案: 必填"))
		return
	}

	resume, err := h.resumeUC.Upload(c.Request.Context(), middleware.CurrentUser(c), c.PostForm("title"), file)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Resume uploaded", resume)
}

// List godoc
// @Summary      My resumes
// @Tags         resumes
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Resume}
// @Failure      403  {object}  response.Response
// @Router       /resumes [get]
// @Security     SessionCookie
func (h *ResumeHandler) List(c *gin.Context) {
	resumes, err := h.resumeUC.List(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Resumes", resumes)
}

// Delete godoc
// @Summary      Delete a resume
// @Tags         resumes
// @Produce      json
// @Param        id   path      int  true  "Resume ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /resumes/{id} [delete]
// @Security     SessionCookie
func (h *ResumeHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.resumeUC.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Resume deleted", nil)
}
