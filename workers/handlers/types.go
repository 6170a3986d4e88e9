package handlers

import "goxchain/types"

type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

type APIStateResponse struct {
	Status       string               `json:"status"`
	Messages     map[types.Status]int `json:"messages"`
	Transactions map[types.Status]int `json:"transactions"`
}

type APITotalResponse struct {
	Token string `json:"token"`
	Total string `json:"total"`
}

type SubmitMessageRequest struct {
	FromChain string `json:"fromChain" validate:"required"`
	ToChain   string `json:"toChain" validate:"required"`
	Message   string `json:"message" validate:"required,max=4096"`
}

type SubmitTransferRequest struct {
	FromChain string `json:"fromChain" validate:"required"`
	ToChain   string `json:"toChain" validate:"required"`
	TokenID   string `json:"tokenId" validate:"required"`
	Amount    string `json:"amount" validate:"required,numeric"`
}
