package dto

type AddActionInput struct {
	ActionTaken string  `json:"actionTaken" binding:"required,min=10,max=100"`
	Remarks     *string `json:"remarks" binding:"omitempty,min=30,max=300"`
	Token       string  `json:"token" binding:"required,objectid"`
}
