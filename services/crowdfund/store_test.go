package crowdfund

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCampaign() *Campaign {
	return &Campaign{
		Creator:   creatorAddr,
		Recipient: recipientAddr,
		Goal:      10,
		Deadline:  time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC),
		Status:    StatusActive,
	}
}

func TestStoreAssignsDenseIDs(t *testing.T) {
	s := NewStore()

	assert.Equal(t, int64(0), s.Add(testCampaign()))
	assert.Equal(t, int64(1), s.Add(testCampaign()))
	assert.Equal(t, int64(2), s.Add(testCampaign()))
	assert.Equal(t, int64(3), s.Count())
}

func TestStoreGetBounds(t *testing.T) {
	s := NewStore()
	s.Add(testCampaign())

	_, err := s.Get(0)
	require.NoError(t, err)

	_, err = s.Get(1)
	assert.ErrorIs(t, err, ErrUnknownCampaign)

	_, err = s.Get(-1)
	assert.ErrorIs(t, err, ErrUnknownCampaign)
}

func TestStoreLedger(t *testing.T) {
	s := NewStore()
	id := s.Add(testCampaign())

	s.Credit(id, donorA, 4)
	s.Credit(id, donorA, 2)
	s.Credit(id, donorB, 3)

	assert.Equal(t, int64(6), s.Contribution(id, donorA))
	assert.Equal(t, int64(3), s.Contribution(id, donorB))
	assert.Equal(t, int64(0), s.Contribution(id, donorC))
	assert.Equal(t, int64(9), s.LedgerSum(id))

	s.SetContribution(id, donorA, 0)
	assert.Equal(t, int64(0), s.Contribution(id, donorA))
	assert.Equal(t, int64(3), s.LedgerSum(id))
}

func TestStoreListOrder(t *testing.T) {
	s := NewStore()
	first := testCampaign()
	second := testCampaign()
	s.Add(first)
	s.Add(second)

	list := s.List()
	require.Len(t, list, 2)
	assert.Same(t, first, list[0])
	assert.Same(t, second, list[1])
}
