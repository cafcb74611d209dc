package domain

// CreateBatchRequest represents the request body for running a batch.
type CreateBatchRequest struct {
	URLs     []string `json:"urls" validate:"required,min=1,max=500,dive,required"`
	Platform string   `json:"platform,omitempty" validate:"omitempty,oneof=tiktok youtube instagram twitter"`
	BaseName string   `json:"base_name,omitempty" validate:"omitempty,max=120"`
	Export   *bool    `json:"export,omitempty"`
}

// CreateBackfillRequest represents the request body for importing already
// downloaded artifacts into the metadata store.
type CreateBackfillRequest struct {
	BaseName string `json:"base_name,omitempty" validate:"omitempty,max=120"`
}

// StoreStatusResponse describes the persisted store without side effects.
type StoreStatusResponse struct {
	State    string `json:"state"`
	Records  int    `json:"records"`
	Location string `json:"location"`
}
