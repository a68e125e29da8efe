package v1

import (
	"net/http"

	"alumni-talent-platform/internal/delivery/http/middleware"
	"alumni-talent-platform/internal/delivery/http/response"
	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type RegistrationHandler struct {
	registrationUC domain.RegistrationUsecase
}

func NewRegistrationHandler(protected *gin.RouterGroup, registrationUC domain.RegistrationUsecase, limit gin.HandlerFunc) {
	handler := &RegistrationHandler{registrationUC: registrationUC}

	registration := protected.Group("/registration")
	{
		registration.GET("", handler.Mine)
		registration.POST("/alumni", limit, handler.SubmitAlumni)
		registration.POST("/company", limit, handler.SubmitCompany)
	}
}

// Mine godoc
// @Summary      My registrations
// @Description  Returns the caller's active alumni and company registrations, or every past submission with history=true
// @Tags         registration
// @Produce      json
// @Param        history  query     bool  false  "Return full history"
// @Success      200      {object}  response.Response{data=domain.MyRegistrations}
// @Failure      401      {object}  response.Response
// @Router       /registration [get]
// @Security     SessionCookie
func (h *RegistrationHandler) Mine(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if c.Query("history") == "true" {
		history, err := h.registrationUC.History(c.Request.Context(), user.Email)
		if err != nil {
			c.Error(err)
			return
		}
		response.Success(c, http.StatusOK, "Registration history", history)
		return
	}

	mine, err := h.registrationUC.GetMyRegistrations(c.Request.Context(), user.Email)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Registrations", mine)
}

// SubmitAlumni godoc
// @Summary      Submit an alumni registration
// @Description  Multipart form with applicant fields, a required identity document and an optional diploma
// @Tags         registration
// @Accept       multipart/form-data
// @Produce      json
// @Param        name               formData  string  true   "Full name"
// @Param        phone              formData  string  true   "Phone number"
// @Param        student_id         formData  string  false  "Student ID"
// @Param        department         formData  string  false  "Department"
// @Param        graduation_year    formData  int     false  "Graduation year"
// @Param        degree             formData  string  false  "BACHELOR, MASTER or DOCTORATE"
// @Param        identity_document  formData  file    true   "Identity document (pdf, jpg, png)"
// @Param        diploma            formData  file    false  "Diploma (pdf, jpg, png)"
// @Success      201  {object}  response.Response{data=domain.Registration}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /registration/alumni [post]
// @Security     SessionCookie
func (h *RegistrationHandler) SubmitAlumni(c *gin.Context) {
	limitBody(c)

	var in domain.AlumniRegistrationInput
	if err := c.ShouldBind(&in); err != nil {
		c.Error(apperror.BadRequest("Invalid registration form"))
		return
	}

	var err error
	if in.IdentityDocument, err = formFile(c, "identity_document"); err != nil {
		c.Error(err)
		return
	}
	if in.Diploma, err = formFile(c, "diploma"); err != nil {
		c.Error(err)
		return
	}

	reg, err := h.registrationUC.SubmitAlumni(c.Request.Context(), middleware.CurrentUser(c), &in)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Registration submitted", reg)
}

// SubmitCompany godoc
// @Summary      Submit a company registration
// @Description  Multipart form with contact and company fields and an optional business license
// @Tags         registration
// @Accept       multipart/form-data
// @Produce      json
// @Param        name              formData  string  true   "Contact name"
// @Param        phone             formData  string  true   "Phone number"
// @Param        company_name      formData  string  true   "Company name"
// @Param        tax_id            formData  string  true   "8-digit tax ID"
// @Param        business_license  formData  file    false  "Business license (pdf, jpg, png)"
// @Success      201  {object}  response.Response{data=domain.Registration}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /registration/company [post]
// @Security     SessionCookie
func (h *RegistrationHandler) SubmitCompany(c *gin.Context) {
	limitBody(c)

	var in domain.CompanyRegistrationInput
	if err := c.ShouldBind(&in); err != nil {
		c.Error(apperror.BadRequest("Invalid registration form"))
		return
	}

	var err error
	if in.BusinessLicense, err = formFile(c, "business_license"); err != nil {
		c.Error(err)
		return
	}

	reg, err := h.registrationUC.SubmitCompany(c.Request.Context(), middleware.CurrentUser(c), &in)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Registration submitted", reg)
}
