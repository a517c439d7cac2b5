package domain

import (
	"encoding/json"
	"time"
)

// Listing is a property listing whose details passed the property detail validator.
type Listing struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Category  string          `json:"category"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
