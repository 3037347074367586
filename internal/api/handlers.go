package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/fundlock/escrowd/internal/httputil"
	"github.com/fundlock/escrowd/internal/middleware"
	"github.com/fundlock/escrowd/services/crowdfund"
)

type createCampaignRequest struct {
	Recipient string `json:"recipient"`
	Goal      int64  `json:"goal"`
	Deadline  int64  `json:"deadline"` // unix seconds
}

type setVerifiedRequest struct {
	Verified bool `json:"verified"`
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteErrorResponse(w, r, http.StatusBadRequest, "INVALID_REQUEST", "malformed request body", nil)
		return
	}

	campaign, err := s.svc.CreateCampaign(r.Context(), crowdfund.CreateCampaignInput{
		Creator:   middleware.GetCaller(r),
		Recipient: req.Recipient,
		Goal:      req.Goal,
		Deadline:  time.Unix(req.Deadline, 0),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteCreated(w, campaign)
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := s.svc.ListCampaigns()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, campaigns)
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	campaign, err := s.svc.GetCampaign(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, campaign)
}

func (s *Server) handleDonate(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// The donation amount is the caller's value attachment.
	amount := middleware.AttachedValue(r)
	if err := s.svc.Donate(r.Context(), id, middleware.GetCaller(r), amount); err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, map[string]any{"campaign_id": id, "amount": amount})
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.svc.Finalize(r.Context(), id, middleware.GetCaller(r)); err != nil {
		s.writeError(w, r, err)
		return
	}

	campaign, err := s.svc.GetCampaign(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, campaign)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.adminTransition(w, r, s.svc.Pause)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.adminTransition(w, r, s.svc.Resume)
}

func (s *Server) handleForceFail(w http.ResponseWriter, r *http.Request) {
	s.adminTransition(w, r, s.svc.ForceFail)
}

func (s *Server) handleClaimRefund(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	contributor := middleware.GetCaller(r)
	if err := s.svc.ClaimRefund(r.Context(), id, contributor); err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, map[string]any{"campaign_id": id, "contributor": contributor})
}

func (s *Server) handleIsRecipientVerified(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	verified, err := s.svc.IsRecipientVerified(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, map[string]any{"campaign_id": id, "verified": verified})
}

func (s *Server) handleGetContribution(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	contribution, err := s.svc.GetContribution(id, mux.Vars(r)["contributor"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, contribution)
}

func (s *Server) handleSetVerifiedRecipient(w http.ResponseWriter, r *http.Request) {
	var req setVerifiedRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteErrorResponse(w, r, http.StatusBadRequest, "INVALID_REQUEST", "malformed request body", nil)
		return
	}

	address := mux.Vars(r)["address"]
	if err := s.svc.SetVerifiedRecipient(r.Context(), address, req.Verified, middleware.GetCaller(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, map[string]any{"recipient": address, "verified": req.Verified})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, s.svc.Events())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.GetStats()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": crowdfund.ServiceName,
		"version": crowdfund.Version,
		"uptime":  s.svc.Uptime().String(),
	})
}

// adminTransition handles the privileged pause/resume/force-fail operations,
// which share a signature.
func (s *Server) adminTransition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id int64, caller string) error) {
	id, err := campaignID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := op(r.Context(), id, middleware.GetCaller(r)); err != nil {
		s.writeError(w, r, err)
		return
	}

	campaign, err := s.svc.GetCampaign(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, campaign)
}

func campaignID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id < 0 {
		return 0, crowdfund.ErrUnknownCampaign
	}
	return id, nil
}

// writeError maps a service error to the HTTP response envelope.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *crowdfund.Error
	if errors.As(err, &svcErr) {
		httputil.WriteErrorResponse(w, r, svcErr.HTTPStatus(), string(svcErr.Code), svcErr.Message, nil)
		return
	}

	s.logger.WithContext(r.Context()).WithError(err).Error("unhandled service error")
	httputil.WriteErrorResponse(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}
