package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"go.uber.org/zap"

	"github.com/atinyakov/barcoder/internal/app/service"
	"github.com/atinyakov/barcoder/internal/models"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 3 * time.Second

type PostHandler struct {
	service  service.BarcodeServiceIface
	validate *validator.Validate
	timeout  time.Duration
	logger   *zap.Logger
}

func NewPost(s service.BarcodeServiceIface, l *zap.Logger, timeout time.Duration) *PostHandler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})

	return &PostHandler{
		service:  s,
		validate: v,
		timeout:  timeout,
		logger:   l,
	}
}

// Generate handles POST /generate_barcode.
func (h *PostHandler) Generate(res http.ResponseWriter, req *http.Request) {
	var request models.GenerateRequest

	err := decodeJSONBody(res, req, &request)
	if err != nil {
		var mr *malformedRequest
		if errors.As(err, &mr) {
			writeError(res, mr.status, mr.msg)
			return
		}

		h.logger.Error("unable to decode request", zap.Error(err))
		writeError(res, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	if err := h.validate.Struct(request); err != nil {
		writeError(res, http.StatusBadRequest, validationMessage(err))
		return
	}

	ctx, cancel := context.WithTimeout(req.Context(), h.timeout)
	defer cancel()

	resp, err := h.service.Generate(ctx, request)
	if err != nil {
		writeServiceError(res, h.logger, err)
		return
	}

	writeJSON(res, http.StatusOK, resp)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
