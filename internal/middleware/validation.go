package middleware

import (
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yigit/schoolhub/internal/app/models/dto"
	"github.com/yigit/schoolhub/internal/pkg/validation"
)

var (
	validate     = validator.New()
	registerOnce sync.Once
)

// jsonTagName reports struct fields by their json name so error messages
// match the request body ("student_ids", not "StudentIDs").
func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// RegisterValidators makes both gin's binding validator and ValidateRequest
// report json field names and know the school rules. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		engines := []*validator.Validate{validate}
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			engines = append(engines, v)
		}
		for _, v := range engines {
			v.RegisterTagNameFunc(jsonTagName)
			if err := validation.Register(v); err != nil {
				panic(err)
			}
		}
	})
}

// ValidateRequest validates a request body against the provided model
func ValidateRequest(obj interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.ShouldBindJSON(obj); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
			c.Abort()
			return
		}

		value := reflect.ValueOf(obj)
		if value.Kind() == reflect.Ptr {
			value = value.Elem()
		}

		if err := validate.Struct(value.Interface()); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
			c.Abort()
			return
		}

		c.Set("validatedBody", obj)
		c.Next()
	}
}

// BindJSON binds the body into obj and writes a 400 on failure.
// It returns false when the handler should stop.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}
