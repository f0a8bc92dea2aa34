// Package httpapi exposes the DAO client services over REST and websocket.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/filmdao/daoclient/internal/apperr"
	"github.com/filmdao/daoclient/internal/app"
	"github.com/filmdao/daoclient/internal/app/domain/metadata"
	"github.com/filmdao/daoclient/internal/app/domain/proposal"
	"github.com/filmdao/daoclient/internal/app/domain/token"
	"github.com/filmdao/daoclient/internal/app/metrics"
	metadatasvc "github.com/filmdao/daoclient/internal/app/services/metadata"
	"github.com/filmdao/daoclient/internal/chain"
	"github.com/filmdao/daoclient/internal/wallet"
	"github.com/filmdao/daoclient/pkg/logger"
)

type handler struct {
	app *app.Application
	log *logger.Logger
}

// NewHandler returns the router exposing the core API.
func NewHandler(application *app.Application, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{app: application, log: log}

	r := chi.NewRouter()
	r.Get("/healthz", h.health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/session", h.session)
	r.Get("/treasury", h.treasury)
	r.Post("/treasury/fund", h.fund)

	r.Route("/proposals", func(r chi.Router) {
		r.Get("/", h.listProposals)
		r.Post("/", h.createProposal)
		r.Get("/{id}/details", h.proposalDetails)
		r.Post("/{id}/vote", h.vote)
		r.Post("/{id}/finalize", h.finalize)
	})

	r.Post("/ideas", h.publishIdea)
	r.Get("/ws/proposals", h.streamProposals)

	return metrics.InstrumentHandler(corsMiddleware(r))
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) session(w http.ResponseWriter, _ *http.Request) {
	account := h.app.Session.Account()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"account":   account,
		"connected": account != "",
		"short":     shortenAddress(account),
	})
}

// proposalView is the API shape for one proposal. canFinalize is a display
// hint, not a contract guarantee.
type proposalView struct {
	ID          uint64       `json:"id"`
	Reference   string       `json:"reference"`
	Amount      token.Amount `json:"amount"`
	Recipient   string       `json:"recipient"`
	ShortRecip  string       `json:"recipientShort"`
	Votes       token.Amount `json:"votes"`
	Finalized   bool         `json:"finalized"`
	CanFinalize bool         `json:"canFinalize"`
}

func toView(p proposal.Proposal) proposalView {
	return proposalView{
		ID:          p.ID,
		Reference:   p.Reference,
		Amount:      p.Amount,
		Recipient:   p.Recipient,
		ShortRecip:  shortenAddress(p.Recipient),
		Votes:       p.Votes,
		Finalized:   p.Finalized,
		CanFinalize: p.CanFinalize(),
	}
}

func (h *handler) listProposals(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "true" {
		if err := h.app.Store.Refresh(r.Context()); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
	}

	filter := r.URL.Query().Get("status")
	views := make([]proposalView, 0)
	for _, p := range h.app.Store.Snapshot() {
		switch filter {
		case "active":
			if p.Finalized {
				continue
			}
		case "funded":
			if !p.Finalized {
				continue
			}
		}
		views = append(views, toView(p))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *handler) createProposal(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Reference string `json:"reference"`
		Amount    string `json:"amount"`
		Recipient string `json:"recipient"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	amount, err := token.Parse(payload.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("amount: %w", err))
		return
	}

	if err := h.app.Proposals.Create(r.Context(), payload.Reference, amount, payload.Recipient); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (h *handler) proposalDetails(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, ok := h.app.Store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("proposal %d not found", id))
		return
	}

	details := h.app.Metadata.Resolve(r.Context(), p.Reference)
	writeJSON(w, http.StatusOK, struct {
		Proposal proposalView     `json:"proposal"`
		Details  metadata.Details `json:"details"`
	}{toView(p), details})
}

func (h *handler) vote(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var payload struct {
		Amount string `json:"amount"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	amount, err := token.Parse(payload.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("amount: %w", err))
		return
	}

	if err := h.app.Proposals.Vote(r.Context(), id, amount); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "voted"})
}

func (h *handler) finalize(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.app.Proposals.Finalize(r.Context(), id); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "finalized"})
}

func (h *handler) treasury(w http.ResponseWriter, _ *http.Request) {
	treasuryBalance, userBalance := h.app.Treasury.Balances()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"treasuryBalance": treasuryBalance,
		"userBalance":     userBalance,
		"proposalCount":   h.app.Store.Len(),
	})
}

func (h *handler) fund(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Amount string `json:"amount"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	amount, err := token.Parse(payload.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("amount: %w", err))
		return
	}

	if err := h.app.Treasury.Fund(r.Context(), amount); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "funded"})
}

func (h *handler) publishIdea(w http.ResponseWriter, r *http.Request) {
	if h.app.Publisher == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("idea publishing is not configured"))
		return
	}
	var payload struct {
		Title             string `json:"title"`
		Synopsis          string `json:"synopsis"`
		Genre             string `json:"genre"`
		EstimatedBudget   string `json:"estimatedBudget"`
		EstimatedDuration string `json:"estimatedDuration"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	reference, err := h.app.Publisher.Publish(r.Context(), metadatasvc.IdeaPayload{
		Title:             payload.Title,
		Synopsis:          payload.Synopsis,
		Genre:             payload.Genre,
		EstimatedBudget:   payload.EstimatedBudget,
		EstimatedDuration: payload.EstimatedDuration,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"reference": reference})
}

// helpers --------------------------------------------------------------------

func parseID(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid proposal id %q", raw)
	}
	return id, nil
}

// statusFor maps workflow errors onto HTTP status codes that let API
// consumers tell the failure classes apart.
func statusFor(err error) int {
	var revert *chain.RevertError
	var netErr *chain.NetworkError
	switch {
	case apperr.IsValidation(err):
		return http.StatusBadRequest
	case apperr.IsPending(err):
		return http.StatusConflict
	case errors.Is(err, chain.ErrUserRejected):
		return http.StatusConflict
	case errors.Is(err, wallet.ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &revert):
		return http.StatusUnprocessableEntity
	case errors.As(err, &netErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(body io.Reader, dst interface{}) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func shortenAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
