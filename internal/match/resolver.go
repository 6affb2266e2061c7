// Package match resolves marketing interactions to registry customers using
// phone, email and direct customer-ID identifiers.
package match

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/phone"
)

// owner is one registry slot holding an identifier.
type owner struct {
	customer int // index into Resolver.customers
	slot     int // 1-based slot number
}

// Resolver matches interactions to customers. Normalized lookup keys are
// built once from the registry; the registry itself is never modified.
type Resolver struct {
	phones    *phone.Normalizer
	customers []string
	known     map[string]struct{}
	byPhone   map[string][]owner
	byEmail   map[string][]owner
	log       *zap.Logger
}

// NewResolver indexes the customer registry. Invalid phones and empty emails
// are discarded. A nil normalizer gets a private one.
func NewResolver(customers []model.Customer, phones *phone.Normalizer) *Resolver {
	if phones == nil {
		phones = phone.NewNormalizer(0)
	}
	r := &Resolver{
		phones:    phones,
		customers: make([]string, 0, len(customers)),
		known:     make(map[string]struct{}, len(customers)),
		byPhone:   make(map[string][]owner),
		byEmail:   make(map[string][]owner),
		log:       zap.L().With(zap.String("component", "customer_matcher")),
	}

	for _, c := range customers {
		idx := len(r.customers)
		r.customers = append(r.customers, c.ID)
		if c.ID != "" {
			r.known[c.ID] = struct{}{}
		}
		for i, raw := range c.Phones {
			if key, ok := phones.Key(raw); ok {
				r.byPhone[key] = append(r.byPhone[key], owner{customer: idx, slot: i + 1})
			}
		}
		for i, raw := range c.Emails {
			if key := NormalizeEmail(raw); key != "" {
				r.byEmail[key] = append(r.byEmail[key], owner{customer: idx, slot: i + 1})
			}
		}
	}

	// Slot-major order: a match on phone_1 of any customer outranks phone_2.
	for _, idx := range []map[string][]owner{r.byPhone, r.byEmail} {
		for _, owners := range idx {
			sort.SliceStable(owners, func(i, j int) bool {
				if owners[i].slot != owners[j].slot {
					return owners[i].slot < owners[j].slot
				}
				return owners[i].customer < owners[j].customer
			})
		}
	}

	return r
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// MatchByPhone matches interactions whose phone normalizes to a registry
// phone. One interaction can match several customers; repeated slots of the
// same customer collapse onto the lowest slot.
func (r *Resolver) MatchByPhone(interactions []model.Interaction) []model.MatchRecord {
	var valid int
	var out []model.MatchRecord
	for _, in := range interactions {
		key, ok := r.phones.Key(in.Phone)
		if !ok {
			continue
		}
		valid++
		out = r.appendOwners(out, in, r.byPhone[key], model.PhoneMatch)
	}

	if valid == 0 {
		r.log.Warn("no valid phone numbers found in interactions")
		return nil
	}
	if len(out) == 0 {
		r.log.Info("no phone matches found")
		return nil
	}
	r.log.Info("phone matches", zap.Int("matches", len(out)))
	return out
}

// MatchByEmail matches interactions by lowercased, trimmed email. Interaction
// emails without an "@" are ignored.
func (r *Resolver) MatchByEmail(interactions []model.Interaction) []model.MatchRecord {
	var valid int
	var out []model.MatchRecord
	for _, in := range interactions {
		key := NormalizeEmail(in.Email)
		if key == "" || !strings.Contains(key, "@") {
			continue
		}
		valid++
		out = r.appendOwners(out, in, r.byEmail[key], model.EmailMatch)
	}

	if valid == 0 {
		r.log.Warn("no valid email addresses found in interactions")
		return nil
	}
	if len(out) == 0 {
		r.log.Info("no email matches found")
		return nil
	}
	r.log.Info("email matches", zap.Int("matches", len(out)))
	return out
}

// MatchByID keeps interactions that already carry a customer ID present in
// the registry.
func (r *Resolver) MatchByID(interactions []model.Interaction) []model.MatchRecord {
	var out []model.MatchRecord
	for _, in := range interactions {
		if in.CustomerID == "" {
			continue
		}
		if _, ok := r.known[in.CustomerID]; !ok {
			continue
		}
		out = append(out, model.MatchRecord{Interaction: in, CustomerID: in.CustomerID, Method: model.MatchDirectID})
	}
	if len(out) > 0 {
		r.log.Info("direct id matches", zap.Int("matches", len(out)))
	}
	return out
}

func (r *Resolver) appendOwners(out []model.MatchRecord, in model.Interaction, owners []owner, method func(int) model.MatchMethod) []model.MatchRecord {
	if len(owners) == 0 {
		return out
	}
	seen := make(map[string]struct{}, len(owners))
	for _, o := range owners {
		id := r.customers[o.customer]
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, model.MatchRecord{Interaction: in, CustomerID: id, Method: method(o.slot)})
	}
	if len(seen) > 1 {
		r.log.Debug("ambiguous match", zap.String("interaction_id", in.ID), zap.Int("customers", len(seen)))
	}
	return out
}

// MatchAll runs phone, email and direct-ID matching, in that priority order,
// and deduplicates so each interaction ID maps to at most one customer. A
// phone match is kept over a direct-ID match for the same interaction.
func (r *Resolver) MatchAll(interactions []model.Interaction) []model.MatchRecord {
	r.log.Info("matching interactions to customers", zap.Int("interactions", len(interactions)))

	var all []model.MatchRecord
	all = append(all, r.MatchByPhone(interactions)...)
	all = append(all, r.MatchByEmail(interactions)...)
	all = append(all, r.MatchByID(interactions)...)

	if len(all) == 0 {
		r.log.Warn("no matches found using any method")
		return nil
	}

	type pair struct{ interaction, customer string }
	seenPair := make(map[pair]struct{}, len(all))
	seenInteraction := make(map[string]struct{}, len(all))
	out := make([]model.MatchRecord, 0, len(all))
	for _, m := range all {
		p := pair{m.Interaction.ID, m.CustomerID}
		if _, dup := seenPair[p]; dup {
			continue
		}
		seenPair[p] = struct{}{}
		if _, dup := seenInteraction[m.Interaction.ID]; dup {
			continue
		}
		seenInteraction[m.Interaction.ID] = struct{}{}
		out = append(out, m)
	}

	stats := Statistics(out)
	r.log.Info("matched interactions",
		zap.Int("matches", stats.TotalMatches),
		zap.Int("unique_customers", stats.UniqueCustomers),
	)
	return out
}

// Statistics counts matches overall, by customer and by method.
func Statistics(matched []model.MatchRecord) model.MatchStats {
	var s model.MatchStats
	customers := make(map[string]struct{})
	for _, m := range matched {
		s.TotalMatches++
		customers[m.CustomerID] = struct{}{}
		switch {
		case m.Method.IsPhone():
			s.PhoneMatches++
		case m.Method.IsEmail():
			s.EmailMatches++
		case m.Method == model.MatchDirectID:
			s.DirectIDMatches++
		}
	}
	s.UniqueCustomers = len(customers)
	return s
}
