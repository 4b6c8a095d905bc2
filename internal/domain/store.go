package domain

import "time"

// Store is a physical shop location. Immutable after creation except contact fields.
type Store struct {
	ID        int64
	Name      string
	Location  string
	Phone     string
	Email     string
	CreatedAt time.Time
}

// StoreTechnician links a technician to a store they can be dispatched to.
// A technician may be linked to several stores.
type StoreTechnician struct {
	ID           int64
	StoreID      int64
	TechnicianID int64
	IsActive     bool
	AssignedAt   time.Time
}
