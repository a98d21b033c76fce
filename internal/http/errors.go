package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"deepcrawler/internal/crawler"
	"deepcrawler/internal/service"
)

const (
	codeValidation         = "validation_error"
	codeConflict           = "conflict"
	codeInvalidCredentials = "invalid_credentials"
	codeUnauthorized       = "unauthorized"
	codeNotFound           = "not_found"
	codeRateLimited        = "rate_limited"
	codeUpstream           = "upstream_error"
	codeUnavailable        = "service_unavailable"
	codeInternal           = "internal_error"
)

// apiError es la forma pública de un error: status HTTP, código estable y mensaje.
type apiError struct {
	status  int
	code    string
	message string
}

func classify(err error) apiError {
	var verr *service.ValidationError
	if errors.As(err, &verr) && verr.Message != "" {
		return apiError{http.StatusBadRequest, codeValidation, verr.Message}
	}

	switch {
	case errors.Is(err, service.ErrMissingFields):
		return apiError{http.StatusBadRequest, codeValidation, "No se han completado todos los campos"}
	case errors.Is(err, service.ErrPasswordMismatch):
		return apiError{http.StatusBadRequest, codeValidation, "Las contraseñas no coinciden"}
	case errors.Is(err, service.ErrInvalidImage):
		return apiError{http.StatusBadRequest, codeValidation, "Solo se permiten archivos de imagen de hasta 5MB."}
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrMessageInvalidInput):
		return apiError{http.StatusBadRequest, codeValidation, "Solicitud inválida"}
	case errors.Is(err, service.ErrEmailTaken):
		return apiError{http.StatusBadRequest, codeConflict, "El correo ya está asociado a una cuenta"}
	case errors.Is(err, service.ErrInvalidCredentials):
		return apiError{http.StatusBadRequest, codeInvalidCredentials, "Correo o contraseña incorrectos"}
	case errors.Is(err, service.ErrJWTInvalid), errors.Is(err, service.ErrJWTExpired), errors.Is(err, service.ErrJWTRevoked):
		return apiError{http.StatusUnauthorized, codeUnauthorized, "Token inválido o expirado"}
	case errors.Is(err, service.ErrUserNotFound):
		return apiError{http.StatusNotFound, codeNotFound, "Usuario no encontrado."}
	case errors.Is(err, service.ErrSessionNotFound):
		return apiError{http.StatusNotFound, codeNotFound, "Sesión no encontrada."}
	case errors.Is(err, service.ErrRateLimited):
		return apiError{http.StatusTooManyRequests, codeRateLimited, "Demasiados intentos, inténtalo más tarde."}
	case errors.Is(err, crawler.ErrUpstream):
		return apiError{http.StatusBadGateway, codeUpstream, "Error en la API del crawler"}
	case errors.Is(err, crawler.ErrUnavailable):
		return apiError{http.StatusServiceUnavailable, codeUnavailable, "El servicio del crawler no está disponible"}
	default:
		return apiError{http.StatusInternalServerError, codeInternal, "Error interno del servidor"}
	}
}

// respondError escribe el cuerpo de error estándar. Los 5xx se loguean como error.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	apiErr := classify(err)
	body := gin.H{
		"status":  "error",
		"error":   apiErr.code,
		"message": apiErr.message,
	}

	var upErr *crawler.UpstreamError
	if errors.As(err, &upErr) {
		body["upstreamStatus"] = upErr.StatusCode
		if len(upErr.Body) > 0 {
			body["details"] = json.RawMessage(upErr.Body)
		}
	}

	switch {
	case apiErr.status >= http.StatusInternalServerError:
		logger.Error(op+" failed", zap.Error(err))
	case apiErr.status != http.StatusNotFound:
		logger.Warn(op+" rejected", zap.Error(err))
	}
	c.AbortWithStatusJSON(apiErr.status, body)
}

// respondBindError traduce errores de binding (JSON mal formado o tags de validación).
func respondBindError(c *gin.Context, logger *zap.Logger, op string, err error) {
	logger.Warn("invalid "+op+" request", zap.Error(err))
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"status":  "error",
		"error":   codeValidation,
		"message": bindingMessage(err),
	})
}

func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("El campo %s es obligatorio", field)
		case "email":
			return "El formato del correo electrónico es inválido."
		case "min":
			return fmt.Sprintf("El campo %s debe tener al menos %s caracteres", field, fe.Param())
		default:
			return fmt.Sprintf("El campo %s es inválido", field)
		}
	}
	return "Solicitud inválida"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
