package handler

import (
	"net/http"

	"anoa.com/welfaredesk/internal/modules/beneficiary/dto"
	"anoa.com/welfaredesk/internal/modules/beneficiary/service"
	"anoa.com/welfaredesk/pkg/media"
	"anoa.com/welfaredesk/pkg/response"
	"anoa.com/welfaredesk/pkg/validator"
	"github.com/gin-gonic/gin"
)

type BeneficiaryHandler struct {
	service service.BeneficiaryService
}

func NewBeneficiaryHandler(service service.BeneficiaryService) *BeneficiaryHandler {
	return &BeneficiaryHandler{service: service}
}

func (h *BeneficiaryHandler) GetBeneficiaries(c *gin.Context) {
	var filter dto.BeneficiaryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Fail(c, http.StatusBadRequest, validator.FormatValidationError(err))
		return
	}

	beneficiaries, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, beneficiaries, "Beneficiaries fetched successfully.")
}

func (h *BeneficiaryHandler) GetSingleBeneficiary(c *gin.Context) {
	var lookup dto.BeneficiaryLookup
	if err := c.ShouldBindQuery(&lookup); err != nil {
		response.Fail(c, http.StatusBadRequest, validator.FormatValidationError(err))
		return
	}

	beneficiary, err := h.service.FindOne(c.Request.Context(), lookup)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, beneficiary, "Beneficiary fetched successfully.")
}

func (h *BeneficiaryHandler) AddBeneficiary(c *gin.Context) {
	account, err := response.CurrentAccount(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.AddBeneficiaryInput
	if err := c.ShouldBind(&input); err != nil {
		response.Fail(c, http.StatusBadRequest, validator.FormatValidationError(err))
		return
	}

	beneficiary, err := h.service.Add(c.Request.Context(), account.ID, input, media.FromRequest(c.Request))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Created(c, beneficiary, "Beneficiary added successfully.")
}

func (h *BeneficiaryHandler) EditBeneficiary(c *gin.Context) {
	var input dto.EditBeneficiaryInput
	if err := c.ShouldBind(&input); err != nil {
		response.Fail(c, http.StatusBadRequest, validator.FormatValidationError(err))
		return
	}

	beneficiary, err := h.service.Edit(c.Request.Context(), c.Param("id"), input, media.FromRequest(c.Request))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, beneficiary, "Beneficiary edited successfully.")
}
