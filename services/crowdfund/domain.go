// Package crowdfund provides the escrow fundraising ledger service.
//
// Campaigns collect contributions toward a goal before a deadline and resolve
// exactly once: to a payout to the designated recipient, or to a refund path
// for every contributor. Funds are escrowed in the ledger until resolution.
//
// Escrow Flow:
// 1. Creator opens a campaign with a recipient, goal and deadline
// 2. Contributors donate while the campaign is active
// 3. Finalize resolves the campaign: goal reached pays out, deadline expired fails
// 4. Contributors of a failed campaign claim refunds for exactly what they gave
package crowdfund

import "time"

// CampaignStatus represents the lifecycle status of a campaign.
type CampaignStatus string

const (
	StatusActive     CampaignStatus = "active"
	StatusPaused     CampaignStatus = "paused"
	StatusSuccessful CampaignStatus = "successful"
	StatusFailed     CampaignStatus = "failed"
)

// Terminal reports whether no further transition may leave this status.
func (s CampaignStatus) Terminal() bool {
	return s == StatusSuccessful || s == StatusFailed
}

// Campaign represents one fundraising effort. Amounts are in the smallest
// currency unit.
type Campaign struct {
	ID        int64     `json:"id"`
	Creator   string    `json:"creator"`
	Recipient string    `json:"recipient"`
	Goal      int64     `json:"goal"`
	Deadline  time.Time `json:"deadline"`

	// TotalRaised is the escrowed balance. It is authoritative only while the
	// campaign is active or paused; a successful payout zeroes it.
	TotalRaised int64 `json:"total_raised"`

	// FinalRaised is the amount actually paid out, set once on success.
	FinalRaised int64 `json:"final_raised"`

	Status CampaignStatus `json:"status"`

	// RecipientVerifiedAtCreation is a point-in-time snapshot recorded for
	// observers. The registry is the only source of truth; this flag must not
	// feed payout or eligibility logic.
	RecipientVerifiedAtCreation bool `json:"recipient_verified_at_creation"`

	CreatedAt time.Time `json:"created_at"`
}

// Contribution is a contributor's recorded balance for one campaign.
type Contribution struct {
	CampaignID  int64  `json:"campaign_id"`
	Contributor string `json:"contributor"`
	Amount      int64  `json:"amount"`
}

// CreateCampaignInput describes the parameters needed to open a campaign.
type CreateCampaignInput struct {
	Creator   string    `json:"creator"`
	Recipient string    `json:"recipient"`
	Goal      int64     `json:"goal"`
	Deadline  time.Time `json:"deadline"`
}

// Validate checks creation parameters against the current time.
func (in CreateCampaignInput) Validate(now time.Time) error {
	if in.Recipient == "" {
		return ErrInvalidRecipient
	}
	if in.Goal <= 0 {
		return ErrInvalidAmount
	}
	if !in.Deadline.After(now) {
		return ErrDeadlineInPast
	}
	return nil
}

// Stats provides service-wide totals.
type Stats struct {
	TotalCampaigns      int64     `json:"total_campaigns"`
	ActiveCampaigns     int64     `json:"active_campaigns"`
	PausedCampaigns     int64     `json:"paused_campaigns"`
	SuccessfulCampaigns int64     `json:"successful_campaigns"`
	FailedCampaigns     int64     `json:"failed_campaigns"`
	TotalEscrowed       int64     `json:"total_escrowed"`
	TotalPaidOut        int64     `json:"total_paid_out"`
	TotalRefunded       int64     `json:"total_refunded"`
	GeneratedAt         time.Time `json:"generated_at"`
}
