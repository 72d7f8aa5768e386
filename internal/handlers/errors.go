// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Afoxcute/sear/internal/i18n"
	"github.com/Afoxcute/sear/internal/services"
	"github.com/Afoxcute/sear/internal/utils"
)

// StatusFor maps a ledger error kind onto its HTTP status.
func StatusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindInvalidInput:
		return http.StatusBadRequest
	case services.KindPreconditionFailed:
		return http.StatusConflict
	case services.KindUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a ledger error with its code and details. Anything
// else is an infrastructure failure and is logged, not echoed.
func respondError(c *gin.Context, err error) {
	var le *services.LedgerError
	if errors.As(err, &le) {
		utils.ErrorResponse(c, StatusFor(le.Kind), le.Code, le.Message, le.Details)
		return
	}

	logrus.WithError(err).WithFields(logrus.Fields{
		"request_id": utils.GetRequestID(c),
		"path":       c.Request.URL.Path,
	}).Error("Request failed")
	utils.InternalErrorResponse(c, "")
}

// callerFrom returns the authenticated caller or writes a 401.
func callerFrom(c *gin.Context) (services.Caller, bool) {
	address, operator, ok := utils.GetCallerFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return services.Caller{}, false
	}
	return services.Caller{Address: address, Operator: operator}, true
}

func parseID(c *gin.Context, param, what string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyInvalidID, what), nil)
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body as the zero request.
func bindOptionalJSON(c *gin.Context, req interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, req)
}

func queryBool(c *gin.Context, key string) *bool {
	v, err := strconv.ParseBool(c.Query(key))
	if err != nil {
		return nil
	}
	return &v
}
