package config

// CustomersCfg holds customer id lists. Ids are the short identifiers carried by events.
type CustomersCfg struct {
	// BypassBloom lists customers whose objects skip the second-hit filter.
	// The cost-weighted eviction formula 2 also weighs these customers higher.
	BypassBloom []string `yaml:"bypass_bloom"`

	// Protected lists customers whose objects are never picked by the size-based purge.
	Protected []string `yaml:"protected"`

	BypassSet    CustomerSet // virtual: computed during init
	ProtectedSet CustomerSet // virtual: computed during init
}

// CustomerSet is a read-only customer lookup. A nil set flags nobody.
type CustomerSet map[string]struct{}

func NewCustomerSet(ids ...string) CustomerSet {
	if len(ids) == 0 {
		return nil
	}
	set := make(CustomerSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Flagged reports whether the customer is listed.
func (s CustomerSet) Flagged(customerID string) bool {
	_, ok := s[customerID]
	return ok
}
