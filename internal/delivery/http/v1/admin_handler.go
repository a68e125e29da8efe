package v1

import (
	"net/http"

	"alumni-talent-platform/internal/delivery/http/middleware"
	"alumni-talent-platform/internal/delivery/http/response"
	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	registrationUC domain.RegistrationUsecase
	authUC         domain.AuthUsecase
}

// NewAdminHandler mounts the review endpoints. Role checks live in the
// usecases; these routes only require a session.
func NewAdminHandler(protected *gin.RouterGroup, registrationUC domain.RegistrationUsecase, authUC domain.AuthUsecase) {
	handler := &AdminHandler{registrationUC: registrationUC, authUC: authUC}

	admin := protected.Group("/admin")
	{
		admin.GET("/registrations", handler.ListRegistrations)
		admin.GET("/registrations/export", handler.ExportRegistrations)
		admin.GET("/registrations/:kind/:id", handler.GetRegistration)
		admin.POST("/registrations/:kind/:id/approve", handler.Approve)
		admin.POST("/registrations/:kind/:id/reject", handler.Reject)

		admin.PATCH("/users/:id/role", handler.AssignRole)
	}
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type AssignRoleRequest struct {
	Role domain.Role `json:"role" binding:"required"`
}

// ListRegistrations godoc
// @Summary      List registrations
// @Description  Paginated alumni and company registrations for review (admin only)
// @Tags         admin
// @Produce      json
// @Param        kind    query     string  false  "alumni or company"
// @Param        status  query     string  false  "PENDING, APPROVED or REJECTED"
// @Param        q       query     string  false  "Search name, email or company"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  response.Response{data=domain.RegistrationPage}
// @Failure      403     {object}  response.Response
// @Router       /admin/registrations [get]
// @Security     SessionCookie
func (h *AdminHandler) ListRegistrations(c *gin.Context) {
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

// ExportRegistrations godoc
// @Summary      Export registrations
// @Description  Downloads every registration matching the filter as xlsx (default) or csv (admin only)
// @Tags         admin
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      text/csv
// @Param        format  query  string  false  "xlsx or csv"
// @Param        kind    query  string  false  "alumni or company"
// @Param        status  query  string  false  "PENDING, APPROVED or REJECTED"
// @Param        q       query  string  false  "Search name, email or company"
// @Success      200  {file}    file
// @Failure      403  {object}  response.Response
// @Router       /admin/registrations/export [get]
// @Security     SessionCookie
func (h *AdminHandler) ExportRegistrations(c *gin.Context) {
	var filter domain.RegistrationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(apperror.BadRequest("Invalid filter"))
		return
	}

	file, err := h.registrationUC.Export(c.Request.Context(), middleware.CurrentUser(c), filter, c.Query("format"))
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// GetRegistration godoc
// @Summary      Get a registration
// @Tags         admin
// @Produce      json
// @Param        kind  path      string  true  "alumni or company"
// @Param        id    path      int     true  "Registration ID"
// @Success      200   {object}  response.Response{data=domain.Registration}
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /admin/registrations/{kind}/{id} [get]
// @Security     SessionCookie
func (h *AdminHandler) GetRegistration(c *gin.Context) {
	kind, err := kindParam(c)
	if err != nil {
		c.Error(err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	reg, err := h.registrationUC.Get(c.Request.Context(), middleware.CurrentUser(c), kind, id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Registration", reg)
}

// Approve godoc
// @Summary      Approve a registration
// @Description  Grants the registration's role and VERIFIED status to the applicant; company approvals create an unpublished listing
// @Tags         admin
// @Produce      json
// @Param        kind  path      string  true  "alumni or company"
// @Param        id    path      int     true  "Registration ID"
// @Success      200   {object}  response.Response{data=domain.Registration}
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /admin/registrations/{kind}/{id}/approve [post]
// @Security     SessionCookie
func (h *AdminHandler) Approve(c *gin.Context) {
	kind, err := kindParam(c)
	if err != nil {
		c.Error(err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	reg, err := h.registrationUC.Approve(c.Request.Context(), middleware.CurrentUser(c), kind, id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Registration approved", reg)
}

// Reject godoc
// @Summary      Reject a registration
// @Description  Records the reason and returns the applicant to UNVERIFIED so they may resubmit
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        kind     path      string         true  "alumni or company"
// @Param        id       path      int            true  "Registration ID"
// @Param        request  body      RejectRequest  true  "Rejection reason (max 500 characters)"
// @Success      200      {object}  response.Response{data=domain.Registration}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /admin/registrations/{kind}/{id}/reject [post]
// @Security     SessionCookie
func (h *AdminHandler) Reject(c *gin.Context) {
	kind, err := kindParam(c)
	if err != nil {
		c.Error(err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	reg, err := h.registrationUC.Reject(c.Request.Context(), middleware.CurrentUser(c), kind, id, req.Reason)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Registration rejected", reg)
}

// AssignRole godoc
// @Summary      Assign a user role
// @Description  Superadmin only. SUPERADMIN itself cannot be granted and superadmins cannot be changed.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id       path      string             true  "User ID"
// @Param        request  body      AssignRoleRequest  true  "New role"
// @Success      200      {object}  response.Response{data=domain.User}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /admin/users/{id}/role [patch]
// @Security     SessionCookie
func (h *AdminHandler) AssignRole(c *gin.Context) {
	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation("role", "角色: 必填"))
		return
	}

	user, err := h.authUC.AssignRole(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req.Role)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Role updated", user)
}
