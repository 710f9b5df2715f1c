package dto

type AddBeneficiaryInput struct {
	Name          string `json:"name" form:"name" binding:"required,min=3,max=100"`
	CNIC          int64  `json:"cnic" form:"cnic" binding:"required,min=1000000000000,max=9999999999999"`
	Number        string `json:"number" form:"number" binding:"required,len=11,numeric"`
	Address       string `json:"address" form:"address" binding:"required,min=5,max=300"`
	Purpose       string `json:"purpose" form:"purpose" binding:"required,max=1000"`
	PurposeStatus string `json:"purposeStatus" form:"purposeStatus" binding:"omitempty,purpose_status"`
	Visit         int    `json:"visit" form:"visit" binding:"omitempty,min=1"`
}

type EditBeneficiaryInput struct {
	Name          *string `json:"name" form:"name" binding:"omitempty,min=3,max=100"`
	CNIC          *int64  `json:"cnic" form:"cnic" binding:"omitempty,min=1000000000000,max=9999999999999"`
	Number        *string `json:"number" form:"number" binding:"omitempty,len=11,numeric"`
	Address       *string `json:"address" form:"address" binding:"omitempty,min=5,max=300"`
	Purpose       *string `json:"purpose" form:"purpose" binding:"omitempty,max=1000"`
	PurposeStatus *string `json:"purposeStatus" form:"purposeStatus" binding:"omitempty,purpose_status"`
	Visit         *int    `json:"visit" form:"visit" binding:"omitempty,min=1"`
}

type BeneficiaryFilter struct {
	Status  string `form:"status" binding:"omitempty,purpose_status"`
	Visit   *int   `form:"visit" binding:"omitempty,min=1"`
	AddedBy string `form:"addedBy" binding:"omitempty,objectid"`
}

// BeneficiaryLookup needs at least one criterion; all given ones must match.
type BeneficiaryLookup struct {
	Name   string `form:"name"`
	CNIC   string `form:"cnic" binding:"omitempty,len=13,numeric"`
	Number string `form:"number" binding:"omitempty,len=11,numeric"`
	ID     string `form:"id" binding:"omitempty,objectid"`
}

func (l BeneficiaryLookup) Empty() bool {
	return l.Name == "" && l.CNIC == "" && l.Number == "" && l.ID == ""
}
