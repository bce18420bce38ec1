// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/frima-market/frima-gateway/internal/backend"
	"github.com/frima-market/frima-gateway/internal/i18n"
	"github.com/frima-market/frima-gateway/internal/services"
	"github.com/frima-market/frima-gateway/internal/utils"
	"github.com/frima-market/frima-gateway/internal/wallet"
)

// respondError renders a service error in the response envelope.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var guard *services.GuardError
	var chainErr *services.ChainError
	var apiErr *backend.APIError

	switch {
	case errors.As(err, &guard):
		utils.ConflictResponse(c, "PRECONDITION_FAILED", guard.Message(lang), gin.H{"key": guard.Key})
	case errors.As(err, &chainErr):
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "CHAIN_ERROR", chainErr.Message(lang), gin.H{"kind": chainErr.Tag()})
	case errors.Is(err, services.ErrFlowBusy):
		utils.ConflictResponse(c, "FLOW_BUSY", i18n.T(lang, i18n.KeyFlowBusy), nil)
	case errors.Is(err, services.ErrFlowNotFound):
		utils.NotFoundResponse(c, i18n.KeyFlowNotFound)
	case errors.Is(err, services.ErrItemNotFound):
		utils.NotFoundResponse(c, i18n.KeyItemNotFound)
	case errors.Is(err, services.ErrProfileNotFound):
		utils.NotFoundResponse(c, i18n.KeyUserNotFound)
	case errors.Is(err, services.ErrInvalidIDToken):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
	case errors.Is(err, services.ErrIdentityUnavailable):
		utils.ServiceUnavailableResponse(c, i18n.T(lang, i18n.KeyAuthUnavailable))
	case errors.Is(err, services.ErrMessageSelf):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyMessageSelf), nil)
	case errors.Is(err, services.ErrMessageEmpty):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationError), nil)
	case errors.Is(err, services.ErrImageTooLarge), errors.Is(err, services.ErrImageInvalid):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyUserImageInvalid), err.Error())
	case errors.Is(err, services.ErrInvalidAddress), errors.Is(err, services.ErrInvalidAmount):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyWalletInvalidAmount), err.Error())
	case errors.Is(err, wallet.ErrUnknownNetwork):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyWalletUnknownNetwork), nil)
	case errors.Is(err, backend.ErrNotFound):
		utils.NotFoundResponse(c, i18n.KeyBackendNotFound)
	case errors.As(err, &apiErr):
		utils.BadGatewayResponse(c, i18n.T(lang, i18n.KeyBackendFailed))
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}

func itemIDParam(c *gin.Context) (int64, bool) {
	return parseItemID(c, c.Param("id"))
}

func parseItemID(c *gin.Context, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		utils.BadRequestResponse(c, "", "invalid item id")
		return 0, false
	}
	return id, true
}

func requireUser(c *gin.Context) (string, bool) {
	uid, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
	}
	return uid, ok
}

// bindJSON decodes and validates a JSON body, writing the error response on
// failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return false
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}
