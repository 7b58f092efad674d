package models

type CreateOrderRequest struct {
	Prompt string `json:"prompt" binding:"required" example:"red kart with gold rims"`
	// ModelType selects the generation pipeline: "new" builds a model from
	// scratch, "recolor" re-textures an existing one.
	ModelType string `json:"model_type" binding:"required,oneof=new recolor" example:"new"`
	UserEmail string `json:"user_email" binding:"required,email" example:"driver@example.com"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
