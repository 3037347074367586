package crowdfund

// Store holds campaign records and the per-contributor contribution ledger.
//
// The store is not safe for concurrent use on its own; the Service serializes
// all access under its operation lock, mirroring how the gas bank manager owns
// synchronization above its repository.
type Store struct {
	campaigns []*Campaign
	ledger    map[int64]map[string]int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		ledger: make(map[int64]map[string]int64),
	}
}

// Add stores a new campaign, assigning the next dense sequential ID.
func (s *Store) Add(c *Campaign) int64 {
	c.ID = int64(len(s.campaigns))
	s.campaigns = append(s.campaigns, c)
	s.ledger[c.ID] = make(map[string]int64)
	return c.ID
}

// Get returns the campaign with the given ID.
func (s *Store) Get(id int64) (*Campaign, error) {
	if id < 0 || id >= int64(len(s.campaigns)) {
		return nil, ErrUnknownCampaign
	}
	return s.campaigns[id], nil
}

// List returns all campaigns in creation order.
func (s *Store) List() []*Campaign {
	out := make([]*Campaign, len(s.campaigns))
	copy(out, s.campaigns)
	return out
}

// Count returns the number of campaigns.
func (s *Store) Count() int64 {
	return int64(len(s.campaigns))
}

// Contribution returns the recorded balance for a contributor.
func (s *Store) Contribution(id int64, contributor string) int64 {
	return s.ledger[id][contributor]
}

// Credit adds to a contributor's recorded balance.
func (s *Store) Credit(id int64, contributor string, amount int64) {
	s.ledger[id][contributor] += amount
}

// SetContribution overwrites a contributor's recorded balance. Used to zero an
// entry before a refund transfer and to restore it on rollback.
func (s *Store) SetContribution(id int64, contributor string, amount int64) {
	s.ledger[id][contributor] = amount
}

// LedgerSum returns the sum of all recorded balances for a campaign.
func (s *Store) LedgerSum(id int64) int64 {
	var sum int64
	for _, amount := range s.ledger[id] {
		sum += amount
	}
	return sum
}
