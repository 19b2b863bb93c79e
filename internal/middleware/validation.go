package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "loteriadash/internal/errors"
	"loteriadash/pkg/contracts/domain"
)

// ValidationMiddleware provides request validation using struct tags
type ValidationMiddleware struct {
	validator    *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	maxBodySize  int64
}

// NewValidationMiddleware creates a new validation middleware
func NewValidationMiddleware(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ValidationMiddleware {
	v := validator.New()

	v.RegisterValidation("column", isColumn)
	v.RegisterValidation("numeric_column", isNumericColumn)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ValidationMiddleware{
		validator:    v,
		logger:       logger.With(slog.String("component", "validation_middleware")),
		errorHandler: errorHandler,
		maxBodySize:  1 << 20,
	}
}

// ValidateRequest rejects oversized or malformed JSON bodies before handlers run
func (m *ValidationMiddleware) ValidateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if r.ContentLength > m.maxBodySize {
			m.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusRequestEntityTooLarge,
				"PAYLOAD_TOO_LARGE",
				"Request body exceeds maximum allowed size",
				map[string]interface{}{
					"max_size": m.maxBodySize,
					"size":     r.ContentLength,
				},
			))
			return
		}

		if r.Body != nil && r.ContentLength != 0 {
			body, err := io.ReadAll(io.LimitReader(r.Body, m.maxBodySize))
			if err != nil {
				m.logger.ErrorContext(r.Context(), "failed to read request body",
					slog.String("error", err.Error()),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				m.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))

			if len(body) > 0 && !json.Valid(body) {
				m.errorHandler.HandleError(w, r, apierrors.New(
					http.StatusBadRequest,
					"INVALID_JSON",
					"Request body contains invalid JSON",
				))
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// ValidateStruct validates a struct and returns validation errors
func (m *ValidationMiddleware) ValidateStruct(v interface{}) error {
	err := m.validator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: m.formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// DecodeJSON decodes the request body into v and validates it
func (m *ValidationMiddleware) DecodeJSON(r *http.Request, v interface{}) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return apierrors.InvalidRequestWithError(err)
	}
	return m.ValidateStruct(v)
}

// BindQuery fills v from the query string using `query` tags, then validates it
func (m *ValidationMiddleware) BindQuery(r *http.Request, v interface{}) error {
	if err := bindQuery(r.URL.Query(), reflect.ValueOf(v).Elem()); err != nil {
		return err
	}
	return m.ValidateStruct(v)
}

// bindQuery supports the field kinds the request contracts use: strings,
// ints, floats, *int, []int and []string. Embedded structs are walked.
func bindQuery(values url.Values, dst reflect.Value) error {
	t := dst.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := dst.Field(i)
		if field.Anonymous && fv.Kind() == reflect.Struct {
			if err := bindQuery(values, fv); err != nil {
				return err
			}
			continue
		}

		name := field.Tag.Get("query")
		if name == "" || !fv.CanSet() {
			continue
		}
		raw, ok := values[name]
		if !ok || len(raw) == 0 || raw[0] == "" {
			continue
		}

		if err := setField(fv, raw); err != nil {
			return apierrors.ErrValidation(name, fmt.Sprintf("%s: %v", name, err))
		}
	}
	return nil
}

func setField(fv reflect.Value, raw []string) error {
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw[0])
	case reflect.Int:
		n, err := strconv.Atoi(strings.TrimSpace(raw[0]))
		if err != nil {
			return fmt.Errorf("must be an integer")
		}
		fv.SetInt(int64(n))
	case reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw[0]), 64)
		if err != nil {
			return fmt.Errorf("must be a number")
		}
		fv.SetFloat(f)
	case reflect.Pointer:
		if fv.Type().Elem().Kind() != reflect.Int {
			return fmt.Errorf("unsupported field type %s", fv.Type())
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw[0]))
		if err != nil {
			return fmt.Errorf("must be an integer")
		}
		fv.Set(reflect.ValueOf(&n))
	case reflect.Slice:
		switch fv.Type().Elem().Kind() {
		case reflect.Int:
		case reflect.String:
			fv.Set(reflect.ValueOf(splitList(raw)))
			return nil
		default:
			return fmt.Errorf("unsupported field type %s", fv.Type())
		}
		var out []int
		// year=2020&year=2021 and year=2020,2021 are both accepted
		for _, item := range raw {
			for _, part := range strings.Split(item, ",") {
				if part = strings.TrimSpace(part); part == "" {
					continue
				}
				n, err := strconv.Atoi(part)
				if err != nil {
					return fmt.Errorf("%q is not an integer", part)
				}
				out = append(out, n)
			}
		}
		fv.Set(reflect.ValueOf(out))
	default:
		return fmt.Errorf("unsupported field type %s", fv.Type())
	}
	return nil
}

func splitList(raw []string) []string {
	var out []string
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ContentTypeValidator ensures requests have proper content type
func ContentTypeValidator(contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodDelete {
				next.ServeHTTP(w, r)
				return
			}
			// Body-less POSTs such as reload carry no content type
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				apierrors.WriteError(w, apierrors.New(
					http.StatusBadRequest,
					"MISSING_CONTENT_TYPE",
					"Content-Type header is required",
				))
				return
			}

			for _, allowed := range contentTypes {
				if strings.HasPrefix(contentType, allowed) {
					next.ServeHTTP(w, r)
					return
				}
			}

			apierrors.WriteError(w, apierrors.NewWithDetails(
				http.StatusUnsupportedMediaType,
				"UNSUPPORTED_MEDIA_TYPE",
				"Unsupported content type",
				map[string]interface{}{
					"content_type": contentType,
					"allowed":      contentTypes,
				},
			))
		})
	}
}

// formatValidationError formats validation error messages
func (m *ValidationMiddleware) formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as %s", field, param)
	case "column":
		return fmt.Sprintf("%s must be one of the table columns: %s", field, strings.Join(domain.Columns, ", "))
	case "numeric_column":
		return fmt.Sprintf("%s must be a numeric column: %s", field, strings.Join(domain.NumericColumns, ", "))
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// Custom validators

func isColumn(fl validator.FieldLevel) bool {
	return slices.Contains(domain.Columns, fl.Field().String())
}

func isNumericColumn(fl validator.FieldLevel) bool {
	return slices.Contains(domain.NumericColumns, fl.Field().String())
}
