package crowdfund

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fundlock/escrowd/internal/logging"
	"github.com/fundlock/escrowd/internal/metrics"
)

const (
	ServiceID   = "crowdfund"
	ServiceName = "Crowdfund Escrow Service"
	Version     = "1.0.0"
)

// Config configures the escrow service.
type Config struct {
	// Admin is the administrative identity, immutable for the lifetime of the
	// service.
	Admin string

	// Transfer is the external value-transfer primitive.
	Transfer TransferFunc

	Logger  *logging.Logger
	Metrics *metrics.Metrics

	// Clock supplies the current time for deadline comparisons. Defaults to
	// time.Now.
	Clock func() time.Time
}

// Service is the escrow fundraising engine. Operations execute strictly one
// at a time; while an outbound transfer is in flight every entry point fails
// fast with ErrReentrancyDetected so a recipient-controlled callback can never
// observe or mutate intermediate state.
type Service struct {
	mu       sync.RWMutex
	store    *Store
	access   *AccessController
	registry *RecipientRegistry
	gateway  *TransferGateway
	events   *EventLog

	log     *logging.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	totalPaidOut  int64
	totalRefunded int64
	startTime     time.Time
}

// New creates the service.
func New(cfg Config) (*Service, error) {
	if cfg.Admin == "" {
		return nil, fmt.Errorf("admin identity is required")
	}
	if cfg.Transfer == nil {
		return nil, fmt.Errorf("transfer primitive is required")
	}

	log := cfg.Logger
	if log == nil {
		log = logging.NewDefault(ServiceID)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	access := NewAccessController(cfg.Admin)
	return &Service{
		store:     NewStore(),
		access:    access,
		registry:  NewRecipientRegistry(access),
		gateway:   NewTransferGateway(cfg.Transfer),
		events:    NewEventLog(),
		log:       log,
		metrics:   cfg.Metrics,
		now:       clock,
		startTime: clock(),
	}, nil
}

// guard rejects entry while a transfer is in flight. Checked before the
// operation lock so a same-stack callback fails fast instead of deadlocking.
func (s *Service) guard() error {
	if s.gateway.InFlight() {
		return ErrReentrancyDetected
	}
	return nil
}

// =============================================================================
// Campaign Operations
// =============================================================================

// CreateCampaign opens a new campaign in status active.
func (s *Service) CreateCampaign(ctx context.Context, in CreateCampaignInput) (*Campaign, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if err := in.Validate(now); err != nil {
		return nil, err
	}

	c := &Campaign{
		Creator:   in.Creator,
		Recipient: in.Recipient,
		Goal:      in.Goal,
		Deadline:  in.Deadline,
		Status:    StatusActive,
		// Snapshot for observers only; the registry stays the source of truth.
		RecipientVerifiedAtCreation: s.registry.IsVerified(in.Recipient),
		CreatedAt:                   now,
	}
	id := s.store.Add(c)

	s.events.Append(Event{
		Type:              EventCampaignCreated,
		CampaignID:        id,
		Actor:             in.Creator,
		Amount:            in.Goal,
		RecipientVerified: c.RecipientVerifiedAtCreation,
		At:                now,
	})
	s.metrics.IncCampaignsCreated()
	s.log.WithField("campaign_id", id).
		WithField("recipient", in.Recipient).
		WithField("goal", in.Goal).
		Info("campaign created")

	out := *c
	return &out, nil
}

// Donate credits a contribution to an active campaign.
func (s *Service) Donate(ctx context.Context, id int64, contributor string, amount int64) error {
	if err := s.guard(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return ErrZeroAmount
	}
	if s.now().After(c.Deadline) {
		return ErrDeadlineExpired
	}
	// Only active campaigns accept funds; paused and resolved campaigns are
	// rejected identically.
	if c.Status != StatusActive {
		return ErrInvalidState
	}

	c.TotalRaised += amount
	s.store.Credit(id, contributor, amount)

	s.events.Append(Event{
		Type:       EventDonationReceived,
		CampaignID: id,
		Actor:      contributor,
		Amount:     amount,
		At:         s.now(),
	})
	s.metrics.IncDonations()
	s.log.WithField("campaign_id", id).
		WithField("contributor", contributor).
		WithField("amount", amount).
		Info("donation received")
	return nil
}

// Finalize resolves a campaign. Reaching the goal always wins, even when the
// deadline has passed; otherwise an expired deadline fails the campaign, and
// anything earlier is premature.
func (s *Service) Finalize(ctx context.Context, id int64, caller string) error {
	if err := s.guard(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if c.Status != StatusActive && c.Status != StatusPaused {
		return ErrInvalidState
	}

	if c.TotalRaised >= c.Goal {
		amount := c.TotalRaised
		prev := c.Status

		// Effects before interaction: the ledger reflects the payout before
		// the external call is made.
		c.Status = StatusSuccessful
		c.FinalRaised = amount
		c.TotalRaised = 0

		if err := s.gateway.Send(ctx, c.Recipient, amount); err != nil {
			// All-or-nothing: restore pre-payout state so finalize can be
			// retried.
			c.Status = prev
			c.FinalRaised = 0
			c.TotalRaised = amount

			s.metrics.IncTransfersFailed()
			s.log.WithError(err).
				WithField("campaign_id", id).
				WithField("amount", amount).
				Warn("payout transfer failed, finalize rolled back")
			return err
		}
		s.totalPaidOut += amount

		s.events.Append(Event{
			Type:       EventCampaignSucceeded,
			CampaignID: id,
			Actor:      caller,
			Amount:     amount,
			At:         s.now(),
		})
		s.log.WithField("campaign_id", id).
			WithField("amount", amount).
			WithField("recipient", c.Recipient).
			Info("campaign succeeded, payout sent")
		return nil
	}

	if s.now().After(c.Deadline) {
		c.Status = StatusFailed

		s.events.Append(Event{
			Type:       EventCampaignFailed,
			CampaignID: id,
			Actor:      caller,
			At:         s.now(),
		})
		s.log.WithField("campaign_id", id).Info("campaign failed, refunds open")
		return nil
	}

	return ErrDeadlineNotYetReached
}

// ForceFail transitions a campaign directly to failed. Admin only; intended
// for fraud mitigation, so deadline expiry is not required.
func (s *Service) ForceFail(ctx context.Context, id int64, caller string) error {
	if err := s.guard(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.access.IsAdmin(caller) {
		return ErrNotAuthorized
	}
	c, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if c.Status != StatusActive && c.Status != StatusPaused {
		return ErrInvalidState
	}

	c.Status = StatusFailed

	s.events.Append(Event{
		Type:       EventCampaignFailed,
		CampaignID: id,
		Actor:      caller,
		At:         s.now(),
	})
	s.log.WithField("campaign_id", id).WithField("admin", caller).Warn("campaign force-failed")
	return nil
}

// Pause suspends donations for an active campaign. Admin only.
func (s *Service) Pause(ctx context.Context, id int64, caller string) error {
	if err := s.guard(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.access.IsAdmin(caller) {
		return ErrNotAuthorized
	}
	c, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if c.Status != StatusActive {
		return ErrInvalidState
	}

	c.Status = StatusPaused

	s.events.Append(Event{
		Type:       EventCampaignPaused,
		CampaignID: id,
		Actor:      caller,
		At:         s.now(),
	})
	s.log.WithField("campaign_id", id).Info("campaign paused")
	return nil
}

// Resume restores donation acceptance for a paused campaign. Admin only.
func (s *Service) Resume(ctx context.Context, id int64, caller string) error {
	if err := s.guard(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.access.IsAdmin(caller) {
		return ErrNotAuthorized
	}
	c, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if c.Status != StatusPaused {
		return ErrInvalidState
	}

	c.Status = StatusActive

	s.events.Append(Event{
		Type:       EventCampaignResumed,
		CampaignID: id,
		Actor:      caller,
		At:         s.now(),
	})
	s.log.WithField("campaign_id", id).Info("campaign resumed")
	return nil
}

// ClaimRefund pays a contributor back their recorded balance for a failed
// campaign. The ledger entry is zeroed before the transfer so a reentrant
// call observes a zero balance; a failed transfer restores it.
func (s *Service) ClaimRefund(ctx context.Context, id int64, contributor string) error {
	if err := s.guard(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if c.Status != StatusFailed {
		return ErrInvalidState
	}
	amount := s.store.Contribution(id, contributor)
	if amount == 0 {
		return ErrNothingToRefund
	}

	s.store.SetContribution(id, contributor, 0)
	c.TotalRaised -= amount

	if err := s.gateway.Send(ctx, contributor, amount); err != nil {
		s.store.SetContribution(id, contributor, amount)
		c.TotalRaised += amount

		s.metrics.IncTransfersFailed()
		s.log.WithError(err).
			WithField("campaign_id", id).
			WithField("contributor", contributor).
			Warn("refund transfer failed, claim rolled back")
		return err
	}
	s.totalRefunded += amount

	s.events.Append(Event{
		Type:       EventRefundIssued,
		CampaignID: id,
		Actor:      contributor,
		Amount:     amount,
		At:         s.now(),
	})
	s.metrics.IncRefunds()
	s.log.WithField("campaign_id", id).
		WithField("contributor", contributor).
		WithField("amount", amount).
		Info("refund issued")
	return nil
}

// SetVerifiedRecipient overwrites the verified flag for a recipient address.
// Admin only.
func (s *Service) SetVerifiedRecipient(ctx context.Context, recipient string, verified bool, caller string) error {
	if err := s.guard(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.registry.Set(recipient, verified, caller); err != nil {
		return err
	}
	s.log.WithField("recipient", recipient).WithField("verified", verified).Info("recipient verification updated")
	return nil
}

// =============================================================================
// Read Operations
// =============================================================================

// GetCampaign returns a copy of the campaign record.
func (s *Service) GetCampaign(id int64) (*Campaign, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	out := *c
	return &out, nil
}

// ListCampaigns returns copies of all campaigns in creation order.
func (s *Service) ListCampaigns() ([]*Campaign, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	campaigns := s.store.List()
	out := make([]*Campaign, len(campaigns))
	for i, c := range campaigns {
		cp := *c
		out[i] = &cp
	}
	return out, nil
}

// GetContribution returns a contributor's recorded balance for a campaign.
func (s *Service) GetContribution(id int64, contributor string) (*Contribution, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.store.Get(id); err != nil {
		return nil, err
	}
	return &Contribution{
		CampaignID:  id,
		Contributor: contributor,
		Amount:      s.store.Contribution(id, contributor),
	}, nil
}

// IsRecipientVerified reports the live registry flag for a campaign's
// recipient. Never derived from the creation-time snapshot.
func (s *Service) IsRecipientVerified(id int64) (bool, error) {
	if err := s.guard(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.store.Get(id)
	if err != nil {
		return false, err
	}
	return s.registry.IsVerified(c.Recipient), nil
}

// Events returns the ordered event log.
func (s *Service) Events() []Event {
	return s.events.Events()
}

// SubscribeEvents registers a live event stream subscriber.
func (s *Service) SubscribeEvents() (<-chan Event, func()) {
	return s.events.Subscribe()
}

// GetStats returns service-wide totals.
func (s *Service) GetStats() (*Stats, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{
		TotalCampaigns: s.store.Count(),
		TotalPaidOut:   s.totalPaidOut,
		TotalRefunded:  s.totalRefunded,
		GeneratedAt:    s.now(),
	}
	for _, c := range s.store.List() {
		switch c.Status {
		case StatusActive:
			stats.ActiveCampaigns++
		case StatusPaused:
			stats.PausedCampaigns++
		case StatusSuccessful:
			stats.SuccessfulCampaigns++
		case StatusFailed:
			stats.FailedCampaigns++
		}
		stats.TotalEscrowed += c.TotalRaised
	}
	return stats, nil
}

// Uptime reports how long the service has been running.
func (s *Service) Uptime() time.Duration {
	return s.now().Sub(s.startTime)
}
