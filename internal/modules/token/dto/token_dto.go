package dto

type GenerateTokenInput struct {
	Beneficiary string `json:"beneficiary" binding:"omitempty,objectid"`
	Department  string `json:"department" binding:"required,department"`
	Status      string `json:"status" binding:"omitempty,token_status"`
}

type EditTokenInput struct {
	Beneficiary *string `json:"beneficiary" binding:"omitempty,objectid"`
	Department  *string `json:"department" binding:"omitempty,department"`
	Status      *string `json:"status" binding:"omitempty,token_status"`
}

type TokenFilter struct {
	Status string `form:"status" binding:"omitempty,token_status"`
}
