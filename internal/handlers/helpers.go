package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"cityshops/internal/common"
	"cityshops/internal/models"
	"cityshops/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const imageFormField = "image"

// principalFrom returns the caller attached by the JWT middleware.
func principalFrom(c echo.Context) (models.Principal, error) {
	principal, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return models.Principal{}, common.Unauthorized("User not authenticated")
	}
	return principal, nil
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := common.ValidateUUID(c.Param(name), name)
	if err != nil {
		return uuid.Nil, common.InvalidRequest(err.Error())
	}
	return id, nil
}

func queryID(c echo.Context, name string) (*uuid.UUID, error) {
	id, err := common.ValidateOptionalUUID(c.QueryParam(name), name)
	if err != nil {
		return nil, common.InvalidRequest(err.Error())
	}
	return id, nil
}

// pagination reads skip and limit; the services clamp the values.
func pagination(c echo.Context) (skip, limit int, err error) {
	if v := c.QueryParam("skip"); v != "" {
		if skip, err = strconv.Atoi(v); err != nil || skip < 0 {
			return 0, 0, common.InvalidRequest("skip must be a non-negative integer")
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			return 0, 0, common.InvalidRequest("limit must be a non-negative integer")
		}
	}
	return skip, limit, nil
}

func queryBool(c echo.Context, name string, def bool) (bool, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, common.InvalidRequest(name + " must be true or false")
	}
	return b, nil
}

func bindJSON(c echo.Context, dest any) error {
	if err := c.Bind(dest); err != nil {
		return common.InvalidRequest("Invalid request format")
	}
	return nil
}

// readImage opens the multipart image field. The caller closes the returned file.
func readImage(c echo.Context) (services.ImageUpload, func() error, error) {
	header, err := c.FormFile(imageFormField)
	if err != nil {
		return services.ImageUpload{}, nil, common.InvalidRequest("image file is required")
	}
	file, err := header.Open()
	if err != nil {
		return services.ImageUpload{}, nil, common.InvalidRequest("image file could not be read")
	}

	contentType := header.Header.Get(echo.HeaderContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		sniff := make([]byte, 512)
		n, _ := file.Read(sniff)
		contentType = http.DetectContentType(sniff[:n])
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			file.Close()
			return services.ImageUpload{}, nil, common.InvalidRequest("image file could not be read")
		}
	}

	return services.ImageUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Reader:      file,
	}, file.Close, nil
}
