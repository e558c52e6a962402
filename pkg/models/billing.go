package models

// CheckoutRequest represents a request to create a checkout session
type CheckoutRequest struct {
	PriceID string `json:"priceId" validate:"required"`
}

// CheckoutResponse represents a checkout session response
type CheckoutResponse struct {
	URL string `json:"url"`
}

// CheckoutErrorResponse is the error body of the checkout endpoint
type CheckoutErrorResponse struct {
	Error string `json:"error"`
}

// PlanSelectionResponse is returned when a plan is selected.
// Paid plans carry the checkout URL; the free plan carries Free=true.
type PlanSelectionResponse struct {
	Plan    string `json:"plan"`
	Free    bool   `json:"free"`
	URL     string `json:"url,omitempty"`
	Message string `json:"message,omitempty"`
}

// PlanInfo represents a plan in the public catalog
type PlanInfo struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Price            string   `json:"price"`
	Tier             string   `json:"tier"`
	PriceID          string   `json:"price_id,omitempty"`
	GenerationsLimit int      `json:"generations_limit"`
	Unlimited        bool     `json:"unlimited"`
	Popular          bool     `json:"popular"`
	Features         []string `json:"features"`
}

// PricingResponse represents the plan catalog
type PricingResponse struct {
	Plans []PlanInfo `json:"plans"`
}
