package handler

import (
	"net/http"

	"anoa.com/welfaredesk/internal/modules/token/dto"
	"anoa.com/welfaredesk/internal/modules/token/service"
	"anoa.com/welfaredesk/pkg/response"
	"anoa.com/welfaredesk/pkg/validator"
	"github.com/gin-gonic/gin"
)

type TokenHandler struct {
	service service.TokenService
}

func NewTokenHandler(service service.TokenService) *TokenHandler {
	return &TokenHandler{service: service}
}

func (h *TokenHandler) GetTokens(c *gin.Context) {
	var filter dto.TokenFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Fail(c, http.StatusBadRequest, validator.FormatValidationError(err))
		return
	}

	tokens, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, tokens, "Tokens fetched successfully.")
}

func (h *TokenHandler) GetToken(c *gin.Context) {
	token, err := h.service.GetByNumber(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, token, "Token fetched successfully.")
}

func (h *TokenHandler) GenerateToken(c *gin.Context) {
	account, err := response.CurrentAccount(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.GenerateTokenInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Fail(c, http.StatusBadRequest, validator.FormatValidationError(err))
		return
	}

	token, err := h.service.Generate(c.Request.Context(), account.ID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, token, "Token generated successfully.")
}

func (h *TokenHandler) EditToken(c *gin.Context) {
	var input dto.EditTokenInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Fail(c, http.StatusBadRequest, validator.FormatValidationError(err))
		return
	}

	token, err := h.service.Edit(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, token, "Token edited successfully.")
}
