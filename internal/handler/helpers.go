package handler

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/bala2207022/face-attendance/pkg/errors"
)

// decodeImage accepts either a raw base64 payload or a browser data URL
// ("data:image/jpeg;base64,...") and returns the image bytes.
func decodeImage(field string) ([]byte, error) {
	if field == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "image is required")
	}
	if strings.HasPrefix(field, "data:") {
		idx := strings.Index(field, ",")
		if idx < 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "malformed data url")
		}
		field = field[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(field))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "image must be base64 encoded")
	}
	if len(data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "image is empty")
	}
	return data, nil
}

// parseIDParam reads a positive integer path parameter.
func parseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+" parameter")
	}
	return id, nil
}
