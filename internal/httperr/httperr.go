package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Warning string `json:"warning,omitempty"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Conflict(c *gin.Context, code, message string) {
	Write(c, http.StatusConflict, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// FromError traduz a classe do erro de domínio para o status HTTP.
// Erros fora das classes conhecidas viram 500 genérico sem vazar
// detalhe interno.
func FromError(c *gin.Context, err error) {
	kind, ok := KindOf(err)
	if !ok {
		if IsUniqueViolation(err) {
			Conflict(c, "duplicate_resource", "Registro já existe.")
			return
		}
		Internal(c, "internal_error", "Erro interno.")
		return
	}

	code := err.Error()

	switch kind {
	case KindAuthorization:
		Forbidden(c, code, "Operação não autorizada.")
	case KindConflict:
		Conflict(c, code, "Conflito de agendamento.")
	case KindTenant:
		NotFound(c, code, "Recurso não encontrado neste local.")
	default:
		BadRequest(c, code, "Dados inválidos.")
	}
}
