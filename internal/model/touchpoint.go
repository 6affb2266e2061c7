// Package model defines the records that flow through the attribution pipeline.
package model

import "time"

// Interaction is one marketing touchpoint as ingested from a call-tracking,
// web-analytics or referral export. Timestamp is kept as raw text and parsed
// lazily; rows are never mutated after ingestion.
type Interaction struct {
	ID         string `json:"id"`
	Timestamp  string `json:"called_at"`
	Date       string `json:"interaction_date,omitempty"` // fallback when Timestamp is empty
	Source     string `json:"source,omitempty"`
	Channel    string `json:"channel,omitempty"` // pre-assigned channel, if the export has one
	Phone      string `json:"contact_number,omitempty"`
	Email      string `json:"email,omitempty"`
	CustomerID string `json:"customer_id,omitempty"` // set when the source system already knows the customer
}

// Customer is one row of the customer registry. Phones holds up to
// MaxPhoneSlots entries and Emails up to MaxEmailSlots; empty strings are
// unpopulated slots.
type Customer struct {
	ID     string   `json:"customer_id"`
	Phones []string `json:"phones,omitempty"`
	Emails []string `json:"emails,omitempty"`
}

// Slot limits for the customer registry.
const (
	MaxPhoneSlots = 4
	MaxEmailSlots = 2
)

// RevenueEvent is one revenue-generating service for a customer.
type RevenueEvent struct {
	CustomerID      string  `json:"customer_id"`
	ServiceDate     string  `json:"service_date"`
	Net             float64 `json:"net"`
	RevenueCenter   string  `json:"revenue_center,omitempty"`
	ServiceCategory string  `json:"service_category,omitempty"`
}

// CreditRecord is one attributed touchpoint in the final result table.
type CreditRecord struct {
	CustomerID             string      `json:"customer_id"`
	InteractionID          string      `json:"interaction_id"`
	InteractionDate        time.Time   `json:"interaction_date"`
	Channel                string      `json:"channel"`
	Source                 string      `json:"source,omitempty"`
	MatchMethod            MatchMethod `json:"match_type,omitempty"`
	Credit                 float64     `json:"credit"`
	RevenueAttributed      float64     `json:"revenue_attributed"`
	TotalRevenueAttributed float64     `json:"total_revenue_attributed"`
}
