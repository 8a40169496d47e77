package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/meddispatch/backend/internal/apperr"
	"github.com/meddispatch/backend/internal/model"
)

// respondError is the single error-translation boundary. Every handler funnels
// failures through here; nothing else writes error JSON.
func respondError(c *gin.Context, err error) {
	ae := apperr.From(err)
	if ae.Kind == apperr.KindInternal {
		log.Error().Err(err).Str("path", c.FullPath()).Str("method", c.Request.Method).Msg("unhandled error")
	}

	c.AbortWithStatusJSON(apperr.HTTPStatus(ae.Kind), model.ErrorResponse{
		Error:     string(ae.Kind),
		Message:   ae.Message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Fields:    ae.Fields,
	})
}

// bindJSON decodes and validates a request body, reporting every violated
// field rather than stopping at the first.
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return toValidationError(err)
	}
	return nil
}

func toValidationError(err error) *apperr.Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperr.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperr.FieldError{Field: fe.Field(), Message: validationMessage(fe)})
		}
		return apperr.Validation("request validation failed", fields...)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperr.Validation("request validation failed", apperr.FieldError{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("must be of type %s", typeErr.Type),
		})
	}

	return apperr.Validation("malformed request body")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "url":
		return "must be a valid URL"
	}
	return "is invalid"
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.Validation("invalid path parameter", apperr.FieldError{
			Field:   name,
			Message: "must be a positive integer",
		})
	}
	return id, nil
}
