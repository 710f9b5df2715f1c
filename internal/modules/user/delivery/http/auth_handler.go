package handler

import (
	"net/http"

	"anoa.com/welfaredesk/internal/modules/user/dto"
	"anoa.com/welfaredesk/internal/modules/user/service"
	"anoa.com/welfaredesk/pkg/response"
	"anoa.com/welfaredesk/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBind(&input); err != nil {
		response.Fail(c, http.StatusBadRequest, validator.FormatValidationError(err))
		return
	}

	res, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res, "User logged in successfully.")
}

// Me returns the account resolved from the caller's credential.
func (h *AuthHandler) Me(c *gin.Context) {
	account, err := response.CurrentAccount(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, account, "User data fetched successfully.")
}
