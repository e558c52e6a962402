package billing

import "github.com/jordanlanch/scribely/pkg/models"

// Plan tiers
const (
	TierFree       = "free"
	TierPro        = "pro"
	TierEnterprise = "enterprise"
)

// Plan is one entry of the plan catalog
type Plan struct {
	ID               string
	Name             string
	Price            string
	Tier             string
	PriceID          string // empty for the free plan
	GenerationsLimit int    // per month; 0 with Unlimited
	Unlimited        bool
	Popular          bool
	Features         []string
}

// Free reports whether the plan is granted without a payment
func (p Plan) Free() bool {
	return p.Tier == TierFree
}

func (p Plan) clone() Plan {
	p.Features = append([]string(nil), p.Features...)
	return p
}

// ToModel converts the plan to its API representation
func (p Plan) ToModel() models.PlanInfo {
	return models.PlanInfo{
		ID:               p.ID,
		Name:             p.Name,
		Price:            p.Price,
		Tier:             p.Tier,
		PriceID:          p.PriceID,
		GenerationsLimit: p.GenerationsLimit,
		Unlimited:        p.Unlimited,
		Popular:          p.Popular,
		Features:         append([]string(nil), p.Features...),
	}
}

// Catalog is the static plan catalog. It is never modified after construction;
// every accessor hands out copies.
type Catalog struct {
	plans []Plan
}

// NewCatalog builds the Basic/Pro/Enterprise catalog with the configured Stripe price IDs
func NewCatalog(pricePro, priceEnterprise string) *Catalog {
	return &Catalog{plans: []Plan{
		{
			ID:               "basic",
			Name:             "Basic Plan",
			Price:            "Free",
			Tier:             TierFree,
			GenerationsLimit: 10,
			Features: []string{
				"Generate up to 10 articles per month",
				"Basic writing styles",
				"Standard support",
			},
		},
		{
			ID:               "pro",
			Name:             "Pro Plan",
			Price:            "$19.99",
			Tier:             TierPro,
			PriceID:          pricePro,
			GenerationsLimit: 50,
			Popular:          true,
			Features: []string{
				"Generate up to 50 articles per month",
				"Advanced writing styles",
				"Priority support",
				"Custom templates",
			},
		},
		{
			ID:        "enterprise",
			Name:      "Enterprise Plan",
			Price:     "$49.99",
			Tier:      TierEnterprise,
			PriceID:   priceEnterprise,
			Unlimited: true,
			Features: []string{
				"Unlimited article generation",
				"All writing styles",
				"24/7 Premium support",
				"Custom templates",
				"API access",
			},
		},
	}}
}

// Plans returns every plan in display order
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, 0, len(c.plans))
	for _, p := range c.plans {
		out = append(out, p.clone())
	}
	return out
}

// Get returns the plan with the given ID
func (c *Catalog) Get(id string) (Plan, bool) {
	for _, p := range c.plans {
		if p.ID == id {
			return p.clone(), true
		}
	}
	return Plan{}, false
}

// ByPriceID returns the paid plan sold under priceID
func (c *Catalog) ByPriceID(priceID string) (Plan, bool) {
	if priceID == "" {
		return Plan{}, false
	}
	for _, p := range c.plans {
		if p.PriceID == priceID {
			return p.clone(), true
		}
	}
	return Plan{}, false
}

// Pricing returns the catalog as an API response
func (c *Catalog) Pricing() *models.PricingResponse {
	resp := &models.PricingResponse{Plans: make([]models.PlanInfo, 0, len(c.plans))}
	for _, p := range c.plans {
		resp.Plans = append(resp.Plans, p.ToModel())
	}
	return resp
}
