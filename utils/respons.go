package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorData struct {
	Kind   ErrorKind `json:"kind"`
	Title  string    `json:"title"`
	Detail string    `json:"detail"`
}

// DefaultLanguage is used when a request carries no usable Accept-Language
// and no store language was set on the context.
var DefaultLanguage = LangEnglish

// FallbackLanguageKey is the gin context key holding the store's language.
const FallbackLanguageKey = "fallback_language"

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// StatusForKind maps an error kind to its HTTP status.
func StatusForKind(kind ErrorKind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalidState:
		return http.StatusUnprocessableEntity
	case KindAuthorization:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// RespondAppError writes err in the standard envelope with its kind and a
// title localised from Accept-Language. Internal causes are logged, not echoed.
func RespondAppError(c *gin.Context, err error) {
	kind := KindOf(err)
	fallback := DefaultLanguage
	if stored := c.GetString(FallbackLanguageKey); stored != "" {
		fallback = stored
	}
	lang := PreferredLanguage(c.GetHeader("Accept-Language"), fallback)

	detail := err.Error()
	var appErr *AppError
	if errors.As(err, &appErr) {
		detail = appErr.Message
	}
	if kind == KindInternal {
		ErrorLogger.WithField("path", c.Request.URL.Path).Error(err)
		detail = KindTitle(kind, lang)
	}

	c.AbortWithStatusJSON(StatusForKind(kind), JSONResponse{
		Status:  false,
		Message: detail,
		Data: ErrorData{
			Kind:   kind,
			Title:  KindTitle(kind, lang),
			Detail: detail,
		},
	})
}
