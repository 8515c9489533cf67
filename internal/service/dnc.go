package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/domain/model"
	apperr "github.com/missionctl/leadrun-engine/internal/errors"
)

// DncServiceOptions groups dependencies for DncService.
type DncServiceOptions struct {
	Repo   core.DncRepository
	Logger *slog.Logger
}

// DncService manages per-org do-not-contact lists and answers suppression
// checks for the worker.
type DncService struct {
	repo   core.DncRepository
	logger *slog.Logger
}

// NewDncService constructs a new DncService.
func NewDncService(opts DncServiceOptions) (*DncService, error) {
	if opts.Repo == nil {
		return nil, errors.New("DncRepository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DncService{repo: opts.Repo, logger: logger}, nil
}

// AddEntryRequest carries the parameters for adding a suppression entry.
type AddEntryRequest struct {
	OrgID     string
	Type      model.DncEntryType
	Value     string
	Reason    string
	CreatedBy string
}

// Add normalizes and stores a suppression entry. Re-adding an existing value
// refreshes its metadata; the deterministic entry id keeps the list free of
// duplicates.
func (s *DncService) Add(ctx context.Context, req AddEntryRequest) (*model.DncEntry, error) {
	if !req.Type.Valid() {
		return nil, apperr.Validationf("invalid dnc entry type %q", req.Type)
	}
	normalized := model.NormalizeDncValue(req.Type, req.Value)
	if normalized == "" {
		return nil, apperr.Validation("dnc value is empty after normalization")
	}

	entry := &model.DncEntry{
		EntryID:    model.DncEntryID(req.Type, normalized),
		OrgID:      model.SanitizeOrgID(req.OrgID),
		Type:       req.Type,
		Value:      req.Value,
		Normalized: normalized,
		CreatedBy:  req.CreatedBy,
	}
	if req.Reason != "" {
		entry.Reason = &req.Reason
	}

	saved, err := s.repo.Upsert(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("upsert dnc entry: %w", err)
	}
	s.logger.InfoContext(ctx, "dnc entry added",
		"org_id", saved.OrgID, "type", string(saved.Type), "entry_id", saved.EntryID)
	return saved, nil
}

// Remove deletes a suppression entry by id.
func (s *DncService) Remove(ctx context.Context, orgID, entryID string) error {
	deleted, err := s.repo.Delete(ctx, model.SanitizeOrgID(orgID), entryID)
	if err != nil {
		return fmt.Errorf("delete dnc entry: %w", err)
	}
	if !deleted {
		return apperr.NotFoundf("dnc entry %s not found", entryID)
	}
	return nil
}

// List returns the org's suppression entries.
func (s *DncService) List(ctx context.Context, orgID string, limit int) ([]*model.DncEntry, error) {
	return s.repo.List(ctx, model.SanitizeOrgID(orgID), limit)
}

// Check probes the suppression list with every contact point derived from
// the lead. Returns the blocking entry, or nil when the lead is clear. The
// email domain and each of its parent domains are probed, so blocking
// "example.com" also blocks "mail.example.com" addresses.
func (s *DncService) Check(ctx context.Context, orgID string, lead model.Lead) (*model.DncEntry, error) {
	query := model.DncQuery{
		Email:  lead.Email,
		Phone:  lead.Phone,
		Domain: lead.Website,
	}
	if query.Domain == "" {
		query.Domain = lead.EmailDomain()
	}

	probes := query.Candidates()
	if len(probes) == 0 {
		return nil, nil
	}

	entry, err := s.repo.FindFirst(ctx, model.SanitizeOrgID(orgID), probes)
	if err != nil {
		return nil, fmt.Errorf("probe dnc list: %w", err)
	}
	if entry != nil {
		s.logger.InfoContext(ctx, "lead blocked by dnc",
			"org_id", entry.OrgID, "lead", lead.DocID,
			"type", string(entry.Type), "entry_id", entry.EntryID)
	}
	return entry, nil
}
