package handler

import (
	"net/http"

	"anoa.com/welfaredesk/internal/modules/action/dto"
	"anoa.com/welfaredesk/internal/modules/action/service"
	"anoa.com/welfaredesk/pkg/response"
	"anoa.com/welfaredesk/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ActionHandler struct {
	service service.ActionService
}

func NewActionHandler(service service.ActionService) *ActionHandler {
	return &ActionHandler{service: service}
}

func (h *ActionHandler) GetActions(c *gin.Context) {
	actions, err := h.service.ListForToken(c.Request.Context(), c.Param("tokenId"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, actions, "Actions fetched successfully.")
}

func (h *ActionHandler) AddAction(c *gin.Context) {
	account, err := response.CurrentAccount(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.AddActionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Fail(c, http.StatusBadRequest, validator.FormatValidationError(err))
		return
	}

	action, err := h.service.Add(c.Request.Context(), account.ID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, action, "Action added successfully.")
}
