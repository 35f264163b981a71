package product

import "time"

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCZK    int       `json:"priceCzk"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	URL         string    `json:"url,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type UpsertRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCZK    int    `json:"priceCzk"`
	ImageURL    string `json:"imageUrl"`
	URL         string `json:"url"`
	Active      bool   `json:"active"`
}
