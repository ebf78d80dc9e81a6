package venues

type CreateVenueRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=255"`
	Address  string `json:"address" binding:"required,max=500"`
	City     string `json:"city" binding:"required,max=100"`
	Capacity int    `json:"capacity" binding:"required,min=1"`
}

type UpdateVenueRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=2,max=255"`
	Address  *string `json:"address" binding:"omitempty,max=500"`
	City     *string `json:"city" binding:"omitempty,max=100"`
	Capacity *int    `json:"capacity" binding:"omitempty,min=1"`
}
