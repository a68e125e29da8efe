package v1

import (
	"net/http"

	"alumni-talent-platform/internal/delivery/http/middleware"
	"alumni-talent-platform/internal/delivery/http/response"
	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// PageHandler serves the view data behind the guarded pages. Access is
// decided by middleware.RouteGuard before these run.
type PageHandler struct {
	registrationUC domain.RegistrationUsecase
	companyUC      domain.CompanyUsecase
	jobUC          domain.JobUsecase
	resumeUC       domain.ResumeUsecase
	applicationUC  domain.ApplicationUsecase
}

type PageDeps struct {
	RegistrationUC domain.RegistrationUsecase
	CompanyUC      domain.CompanyUsecase
	JobUC          domain.JobUsecase
	ResumeUC       domain.ResumeUsecase
	ApplicationUC  domain.ApplicationUsecase
}

func NewPageHandler(r *gin.Engine, deps PageDeps) {
	handler := &PageHandler{
		registrationUC: deps.RegistrationUC,
		companyUC:      deps.CompanyUC,
		jobUC:          deps.JobUC,
		resumeUC:       deps.ResumeUC,
		applicationUC:  deps.ApplicationUC,
	}

	r.GET("/admin/registrations", handler.AdminRegistrations)
	r.GET("/profile", handler.Profile)
	r.GET("/enterprise", handler.Enterprise)
	r.GET(middleware.NotFoundPath, handler.NotFound)
}

type ProfileView struct {
	User          *domain.User            `json:"user"`
	Registrations *domain.MyRegistrations `json:"registrations"`
	Resumes       []domain.Resume         `json:"resumes"`
	Applications  []domain.Application    `json:"applications"`
}

type EnterpriseView struct {
	User    *domain.User    `json:"user"`
	Company *domain.Company `json:"company"`
	Jobs    []domain.Job    `json:"jobs"`
}

// AdminRegistrations godoc
// @Summary      Registration review page
// @Tags         pages
// @Produce      json
// @Param        kind    query     string  false  "alumni or company"
// @Param        status  query     string  false  "PENDING, APPROVED or REJECTED"
// @Success      200     {object}  response.Response{data=domain.RegistrationPage}
// @Failure      404     {object}  response.Response
// @Router       /admin/registrations [get]
func (h *PageHandler) AdminRegistrations(c *gin.Context) {
	var filter domain.RegistrationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(apperror.BadRequest("Invalid filter"))
		return
	}

	page, err := h.registrationUC.List(c.Request.Context(), middleware.CurrentUser(c), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Registrations", page)
}

// Profile godoc
// @Summary      Alumni profile page
// @Tags         pages
// @Produce      json
// @Success      200  {object}  response.Response{data=ProfileView}
// @Failure      404  {object}  response.Response
// @Router       /profile [get]
func (h *PageHandler) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)
	view := ProfileView{User: user}

	var err error
	if view.Registrations, err = h.registrationUC.GetMyRegistrations(ctx, user.Email); err != nil {
		c.Error(err)
		return
	}
	// superadmins pass the guard without an alumni record
	if user.Role == domain.RoleAlumni {
		if view.Resumes, err = h.resumeUC.List(ctx, user); err != nil {
			c.Error(err)
			return
		}
		if view.Applications, err = h.applicationUC.ListMine(ctx, user); err != nil {
			c.Error(err)
			return
		}
	}
	response.Success(c, http.StatusOK, "Profile", view)
}

// Enterprise godoc
// @Summary      Company dashboard page
// @Tags         pages
// @Produce      json
// @Success      200  {object}  response.Response{data=EnterpriseView}
// @Failure      404  {object}  response.Response
// @Router       /enterprise [get]
func (h *PageHandler) Enterprise(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)
	view := EnterpriseView{User: user}

	if user.Role == domain.RoleCompany {
		var err error
		if view.Company, err = h.companyUC.GetMine(ctx, user); err != nil && apperror.CodeOf(err) != http.StatusNotFound {
			c.Error(err)
			return
		}
		if view.Company != nil {
			if view.Jobs, err = h.jobUC.ListMine(ctx, user); err != nil {
				c.Error(err)
				return
			}
		}
	}
	response.Success(c, http.StatusOK, "Enterprise", view)
}

// NotFound godoc
// @Summary      Not-found page
// @Description  Also served in place of any guarded page the caller may not see
// @Tags         pages
// @Produce      json
// @Failure      404  {object}  response.Response
// @Router       /not-found [get]
func (h *PageHandler) NotFound(c *gin.Context) {
	response.Error(c, http.StatusNotFound, "Page not found", nil)
}
