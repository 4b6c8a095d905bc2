package dto

import "time"

// StoreResponse is the directory view of a store.
type StoreResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateStoreContactRequest payload for the mutable contact fields.
type UpdateStoreContactRequest struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// LinkTechnicianRequest payload for making a technician dispatchable.
type LinkTechnicianRequest struct {
	TechnicianID int64 `json:"technician_id"`
}
