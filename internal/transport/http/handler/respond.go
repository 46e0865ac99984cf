package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/kipusaplus/kipus-api/internal/domain"
)

func init() {
	// Report binding failures under the JSON names clients send.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonName)
	}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func okMessage(c *gin.Context, status int, msg string, data any) {
	c.JSON(status, envelope{Success: true, Message: msg, Data: data})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, envelope{Success: false, Error: msg})
}

// Responder renders usecase errors. Raw error text is attached as "details"
// only in development.
type Responder struct {
	logger *slog.Logger
	dev    bool
}

func NewResponder(logger *slog.Logger, dev bool) *Responder {
	return &Responder{logger: logger.With("component", "http"), dev: dev}
}

func (r *Responder) Error(c *gin.Context, op string, err error) {
	status, msg := classify(err)
	body := envelope{Success: false, Error: msg}
	if status >= http.StatusInternalServerError {
		r.logger.ErrorContext(c.Request.Context(), op, "error", err)
		if r.dev {
			body.Details = err.Error()
		}
	}
	c.JSON(status, body)
}

// BadBody answers a request whose JSON could not be bound. A failed binding
// rule is reported like any other validation error.
func (r *Responder) BadBody(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		r.Error(c, "bind", fieldError(verrs[0]))
		return
	}
	body := envelope{Success: false, Error: errInvalidBody}
	if r.dev {
		body.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

func fieldError(fe validator.FieldError) error {
	var reason string
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "email":
		reason = "must be a valid email address"
	case "oneof":
		reason = "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min", "gte":
		reason = "must be at least " + fe.Param()
		if fe.Kind() == reflect.String {
			reason += " characters"
		}
	case "max", "lte":
		reason = "must be at most " + fe.Param()
		if fe.Kind() == reflect.String {
			reason += " characters"
		}
	case "gt":
		reason = "must be greater than " + fe.Param()
	default:
		reason = fmt.Sprintf("failed %s validation", fe.Tag())
	}
	return domain.Invalid(fe.Field(), reason)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		fail(c, http.StatusBadRequest, errInvalidID)
		return 0, false
	}
	return id, true
}
