package domain

import "time"

// Customer is a repair customer. Phone is not unique; intake deduplicates by
// looking up phone or email before creating a new record.
type Customer struct {
	ID        int64
	Name      string
	Phone     string
	Email     string
	Address   string
	StoreID   *int64
	CreatedAt time.Time
}
