package model

import (
	"fmt"
	"strings"
)

// MatchMethod records which identifier linked an interaction to a customer:
// phone_<slot>, email_<slot> or direct_id.
type MatchMethod string

// MatchDirectID tags interactions that already carried a registry customer ID.
const MatchDirectID MatchMethod = "direct_id"

// PhoneMatch returns the method tag for a match on the given 1-based phone slot.
func PhoneMatch(slot int) MatchMethod {
	return MatchMethod(fmt.Sprintf("phone_%d", slot))
}

// EmailMatch returns the method tag for a match on the given 1-based email slot.
func EmailMatch(slot int) MatchMethod {
	return MatchMethod(fmt.Sprintf("email_%d", slot))
}

// IsPhone reports whether the match came from a phone slot.
func (m MatchMethod) IsPhone() bool { return strings.HasPrefix(string(m), "phone") }

// IsEmail reports whether the match came from an email slot.
func (m MatchMethod) IsEmail() bool { return strings.HasPrefix(string(m), "email") }

// MatchRecord links one interaction to one customer.
type MatchRecord struct {
	Interaction Interaction `json:"interaction"`
	CustomerID  string      `json:"customer_id"`
	Method      MatchMethod `json:"match_type"`
}

// MatchStats summarizes a set of match records.
type MatchStats struct {
	TotalMatches    int `json:"total_matches"`
	UniqueCustomers int `json:"unique_customers"`
	PhoneMatches    int `json:"phone_matches"`
	EmailMatches    int `json:"email_matches"`
	DirectIDMatches int `json:"direct_id_matches"`
}
