package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/room-booking-api/internal/dto"
	appErrors "github.com/noah-isme/room-booking-api/pkg/errors"
)

// paramID reads a positive integer path parameter.
func paramID(c *gin.Context, name string) (int64, error) {
	id, err := paramInt(c, name)
	if err != nil || id <= 0 {
		return 0, errNumericParam()
	}
	return id, nil
}

// paramInt reads an integer path parameter of any sign.
func paramInt(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, errNumericParam()
	}
	return id, nil
}

func errNumericParam() error {
	return appErrors.Clone(appErrors.ErrValidation, "Validation failed (numeric string is expected)")
}

// rangeQuery reads the optional start and end bounds.
func rangeQuery(c *gin.Context) dto.EventRangeQuery {
	return dto.EventRangeQuery{Start: c.Query("start"), End: c.Query("end")}
}

// queryInt reads an integer query parameter, returning 0 when absent or malformed.
func queryInt(c *gin.Context, name string) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return value
}
