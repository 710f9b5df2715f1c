package handler

import (
	"net/http"

	"anoa.com/welfaredesk/internal/modules/user/dto"
	"anoa.com/welfaredesk/internal/modules/user/service"
	"anoa.com/welfaredesk/pkg/media"
	"anoa.com/welfaredesk/pkg/response"
	"anoa.com/welfaredesk/pkg/validator"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Register(c *gin.Context) {
	var input dto.RegisterInput
	if err := c.ShouldBind(&input); err != nil {
		response.Fail(c, http.StatusBadRequest, validator.FormatValidationError(err))
		return
	}

	account, err := h.userService.Register(c.Request.Context(), input, media.FromRequest(c.Request))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, account, "User registered successfully.")
}

func (h *UserHandler) GetAllUsers(c *gin.Context) {
	var filter dto.UserFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Fail(c, http.StatusBadRequest, validator.FormatValidationError(err))
		return
	}

	accounts, err := h.userService.List(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, accounts, "Users fetched successfully.")
}

func (h *UserHandler) GetUser(c *gin.Context) {
	account, err := h.userService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, account, "User fetched successfully.")
}

func (h *UserHandler) EditUser(c *gin.Context) {
	var input dto.EditUserInput
	if err := c.ShouldBind(&input); err != nil {
		response.Fail(c, http.StatusBadRequest, validator.FormatValidationError(err))
		return
	}

	account, err := h.userService.Edit(c.Request.Context(), c.Param("id"), input, media.FromRequest(c.Request))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, account, "User edited successfully.")
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	account, err := h.userService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, account, "User deleted successfully.")
}
