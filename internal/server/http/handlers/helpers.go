package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/gopherfood/internal/domain/errors"
	"github.com/polkiloo/gopherfood/internal/domain/model"
	"github.com/polkiloo/gopherfood/internal/server/http/dto"
	"github.com/polkiloo/gopherfood/internal/server/http/middleware"
)

// CurrentPrincipal extracts the authenticated principal from context.
func CurrentPrincipal(c *gin.Context) model.Principal {
	p, _ := middleware.Principal(c)
	return p
}

// StatusFor maps an error onto the HTTP status of its kind.
func StatusFor(err error) int {
	switch domainErrors.KindOf(err) {
	case domainErrors.KindNotFound:
		return http.StatusNotFound
	case domainErrors.KindConflict:
		return http.StatusConflict
	case domainErrors.KindForbidden:
		return http.StatusForbidden
	case domainErrors.KindValidation, domainErrors.KindUnverified:
		return http.StatusBadRequest
	case domainErrors.KindExternal:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError writes the error body and attaches err for request logging.
// Unknown errors get a generic message.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := StatusFor(err)
	if de, ok := domainErrors.As(err); ok && status != http.StatusInternalServerError {
		c.AbortWithStatusJSON(status, dto.ErrorResponse{Code: de.Code, Message: de.Message})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL_ERROR", Message: "internal server error"})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION_ERROR", Message: message})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return n, true
}
