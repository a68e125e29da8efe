package v1

import (
	"net/http"

	"alumni-talent-platform/internal/delivery/http/middleware"
	"alumni-talent-platform/internal/delivery/http/response"
	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	companyUC domain.CompanyUsecase
}

func NewCompanyHandler(public *gin.RouterGroup, protected *gin.RouterGroup, companyUC domain.CompanyUsecase) {
	handler := &CompanyHandler{companyUC: companyUC}

	public.GET("/companies", handler.ListPublished)
	public.GET("/company/:id", handler.Get)

	company := protected.Group("/company")
	{
		company.GET("", handler.List)
		company.GET("/me", handler.GetMine)
		company.PUT("/me", handler.UpdateMine)
		company.POST("/:id/logo", handler.UploadLogo)
		company.PATCH("/:id/publish", handler.SetPublished)
	}
}

// PublishRequest toggles listing visibility.
type PublishRequest struct {
	Published *bool `json:"published" binding:"required"`
}

// List godoc
// @Summary      List all companies
// @Description  Every company listing including unpublished ones (admin only)
// @Tags         companies
// @Produce      json
// @Param        q          query     string  false  "Search name or tax ID"
// @Param        published  query     bool    false  "Filter by visibility"
// @Param        page       query     int     false  "Page number"
// @Param        limit      query     int     false  "Page size (max 100)"
// @Success      200        {object}  response.Response{data=domain.CompanyPage}
// @Failure      401        {object}  response.Response
// @Failure      403        {object}  response.Response
// @Router       /company [get]
// @Security     SessionCookie
func (h *CompanyHandler) List(c *gin.Context) {
	var filter domain.CompanyFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(apperror.BadRequest("Invalid filter"))
		return
	}

	page, err := h.companyUC.List(c.Request.Context(), middleware.CurrentUser(c), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Companies", page)
}

// ListPublished godoc
// @Summary      List published companies
// @Tags         companies
// @Produce      json
// @Param        q      query     string  false  "Search name"
// @Param        page   query     int     false  "Page number"
// @Param        limit  query     int     false  "Page size (max 100)"
// @Success      200    {object}  response.Response{data=domain.CompanyPage}
// @Router       /companies [get]
func (h *CompanyHandler) ListPublished(c *gin.Context) {
	var filter domain.CompanyFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(apperror.BadRequest("Invalid filter"))
		return
	}

	page, err := h.companyUC.ListPublished(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Companies", page)
}

// Get godoc
// @Summary      Get a company
// @Description  Unpublished companies are only visible to their owner and admins
// @Tags         companies
// @Produce      json
// @Param        id   path      int  true  "Company ID"
// @Success      200  {object}  response.Response{data=domain.Company}
// @Failure      404  {object}  response.Response
// @Router       /company/{id} [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	company, err := h.companyUC.GetByID(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Company", company)
}

// GetMine godoc
// @Summary      Get my company
// @Tags         companies
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.Company}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /company/me [get]
// @Security     SessionCookie
func (h *CompanyHandler) GetMine(c *gin.Context) {
	company, err := h.companyUC.GetMine(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Company", company)
}

// UpdateMine godoc
// @Summary      Update my company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        request  body      domain.UpdateCompanyInput  true  "Profile fields"
// @Success      200      {object}  response.Response{data=domain.Company}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /company/me [put]
// @Security     SessionCookie
func (h *CompanyHandler) UpdateMine(c *gin.Context) {
	var in domain.UpdateCompanyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	company, err := h.companyUC.UpdateMine(c.Request.Context(), middleware.CurrentUser(c), &in)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Company updated", company)
}

// UploadLogo godoc
// @Summary      Upload a company logo
// @Description  Image is resized to at most 512px and stored as JPEG; the previous logo is removed
// @Tags         companies
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      int   true  "Company ID"
// @Param        file  formData  file  true  "Logo image"
// @Success      200   {object}  response.Response{data=domain.Company}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /company/{id}/logo [post]
// @Security     SessionCookie
func (h *CompanyHandler) UploadLogo(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	limitBody(c)
	file, err := formFile(c, "file")
	if err != nil {
		c.Error(err)
		return
	}

	company, err := h.companyUC.UploadLogo(c.Request.Context(), middleware.CurrentUser(c), id, file)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Logo updated", company)
}

// SetPublished godoc
// @Summary      Publish or hide a company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id       path      int             true  "Company ID"
// @Param        request  body      PublishRequest  true  "Visibility"
// @Success      200      {object}  response.Response{data=domain.Company}
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /company/{id}/publish [patch]
// @Security     SessionCookie
func (h *CompanyHandler) SetPublished(c *gin.Context) {
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

	company, err := h.companyUC.SetPublished(c.Request.Context(), middleware.CurrentUser(c), id, *req.Published)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Company updated", company)
}
