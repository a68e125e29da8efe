package v1

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// maxMultipartBytes bounds a whole multipart body. Per-file limits are
// applied later by the upload policies.
const maxMultipartBytes = 32 << 20

func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.BadRequest("Invalid " + name)
	}
	return id, nil
}

func kindParam(c *gin.Context) (domain.RegistrationKind, error) {
	kind, ok := domain.ParseRegistrationKind(c.Param("kind"))
	if !ok {
		return "", apperror.NotFound("Registration not found")
	}
	return kind, nil
}

// limitBody caps the request body before multipart parsing starts.
func limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMultipartBytes)
}

// formFile reads an optional multipart file. A missing part returns nil.
func formFile(c *gin.Context, field string) (*domain.FileUpload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperror.New(http.StatusRequestEntityTooLarge, "Request body too large", err)
		}
		return nil, apperror.BadRequest("Invalid multipart form")
	}
	return readFileHeader(header)
}

func readFileHeader(header *multipart.FileHeader) (*domain.FileUpload, error) {
	src, err := header.Open()
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.FileUpload{Filename: header.Filename, Data: data}, nil
}
