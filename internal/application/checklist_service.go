package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/hacktown-ops/internal/event"
)

// ChecklistSummary counts pending requirements across venues.
type ChecklistSummary struct {
	Infrastructure []event.RequirementSummary
	Audiovisual    []event.RequirementSummary
}

// ChecklistService passes venue checklists through to the backend. The
// checklists are not part of the store, so writes do not trigger reloads.
type ChecklistService struct {
	store   *Store
	backend ChecklistBackend
	logger  *slog.Logger
}

// NewChecklistService constructs a checklist service.
func NewChecklistService(store *Store, backend ChecklistBackend) *ChecklistService {
	return NewChecklistServiceWithLogger(store, backend, nil)
}

// NewChecklistServiceWithLogger constructs a checklist service with a specified logger.
func NewChecklistServiceWithLogger(store *Store, backend ChecklistBackend, logger *slog.Logger) *ChecklistService {
	return &ChecklistService{store: store, backend: backend, logger: defaultLogger(logger)}
}

func (s *ChecklistService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ChecklistService", operation, attrs...)
}

func (s *ChecklistService) fail(ctx context.Context, logger *slog.Logger, operation string, err error) error {
	err = mapBackendError(operation, err)
	if s.store != nil {
		s.store.noteError(err)
	}
	logger.ErrorContext(ctx, "checklist operation failed", "error", err, "error_kind", ErrorKind(err))
	return err
}

func (s *ChecklistService) knownVenue(venueID string) error {
	if strings.TrimSpace(venueID) == "" {
		return fieldError("venueId", msgRequired)
	}
	if s.store == nil || !s.store.Ready() {
		return nil
	}
	snap, _ := s.store.Snapshot()
	if !venueExists(snap.Venues, venueID) {
		return ErrNotFound
	}
	return nil
}

// ListInfrastructure returns every infrastructure checklist.
func (s *ChecklistService) ListInfrastructure(ctx context.Context) ([]event.Infrastructure, error) {
	logger := s.loggerWith(ctx, "ListInfrastructure")
	items, err := s.backend.ListInfrastructure(ctx)
	if err != nil {
		return nil, s.fail(ctx, logger, "ListInfrastructure", err)
	}
	return items, nil
}

// GetInfrastructure returns the checklist of one venue.
func (s *ChecklistService) GetInfrastructure(ctx context.Context, venueID string) (event.Infrastructure, error) {
	logger := s.loggerWith(ctx, "GetInfrastructure", "venue_id", venueID)
	item, err := s.backend.GetInfrastructure(ctx, venueID)
	if err != nil {
		return event.Infrastructure{}, s.fail(ctx, logger, "GetInfrastructure", err)
	}
	return item, nil
}

// UpsertInfrastructure replaces the checklist of one venue.
func (s *ChecklistService) UpsertInfrastructure(ctx context.Context, item event.Infrastructure) (event.Infrastructure, error) {
	logger := s.loggerWith(ctx, "UpsertInfrastructure", "venue_id", item.VenueID)
	if err := s.knownVenue(item.VenueID); err != nil {
		return event.Infrastructure{}, err
	}
	saved, err := s.backend.UpsertInfrastructure(ctx, item)
	if err != nil {
		return event.Infrastructure{}, s.fail(ctx, logger, "UpsertInfrastructure", err)
	}
	logger.InfoContext(ctx, "infrastructure saved")
	return saved, nil
}

// BatchUpsertInfrastructure replaces the checklists of several venues.
func (s *ChecklistService) BatchUpsertInfrastructure(ctx context.Context, items []event.Infrastructure) ([]event.Infrastructure, error) {
	logger := s.loggerWith(ctx, "BatchUpsertInfrastructure", "count", len(items))
	vErr := &ValidationError{}
	for i, item := range items {
		if strings.TrimSpace(item.VenueID) == "" {
			vErr.add(fmt.Sprintf("updates[%d].venueId", i), msgRequired)
		}
	}
	if vErr.HasErrors() {
		return nil, vErr
	}
	saved, err := s.backend.BatchUpsertInfrastructure(ctx, items)
	if err != nil {
		return nil, s.fail(ctx, logger, "BatchUpsertInfrastructure", err)
	}
	logger.InfoContext(ctx, "infrastructure batch saved")
	return saved, nil
}

// DeleteInfrastructure removes the checklist of one venue.
func (s *ChecklistService) DeleteInfrastructure(ctx context.Context, venueID string) error {
	logger := s.loggerWith(ctx, "DeleteInfrastructure", "venue_id", venueID)
	if err := s.backend.DeleteInfrastructure(ctx, venueID); err != nil {
		return s.fail(ctx, logger, "DeleteInfrastructure", err)
	}
	logger.InfoContext(ctx, "infrastructure deleted")
	return nil
}

// ListAudiovisual returns every audiovisual checklist.
func (s *ChecklistService) ListAudiovisual(ctx context.Context) ([]event.Audiovisual, error) {
	logger := s.loggerWith(ctx, "ListAudiovisual")
	items, err := s.backend.ListAudiovisual(ctx)
	if err != nil {
		return nil, s.fail(ctx, logger, "ListAudiovisual", err)
	}
	return items, nil
}

// GetAudiovisual returns the checklist of one venue.
func (s *ChecklistService) GetAudiovisual(ctx context.Context, venueID string) (event.Audiovisual, error) {
	logger := s.loggerWith(ctx, "GetAudiovisual", "venue_id", venueID)
	item, err := s.backend.GetAudiovisual(ctx, venueID)
	if err != nil {
		return event.Audiovisual{}, s.fail(ctx, logger, "GetAudiovisual", err)
	}
	return item, nil
}

// UpsertAudiovisual replaces the checklist of one venue.
func (s *ChecklistService) UpsertAudiovisual(ctx context.Context, item event.Audiovisual) (event.Audiovisual, error) {
	logger := s.loggerWith(ctx, "UpsertAudiovisual", "venue_id", item.VenueID)
	if err := s.knownVenue(item.VenueID); err != nil {
		return event.Audiovisual{}, err
	}
	saved, err := s.backend.UpsertAudiovisual(ctx, item)
	if err != nil {
		return event.Audiovisual{}, s.fail(ctx, logger, "UpsertAudiovisual", err)
	}
	logger.InfoContext(ctx, "audiovisual saved")
	return saved, nil
}

// BatchUpsertAudiovisual replaces the checklists of several venues.
func (s *ChecklistService) BatchUpsertAudiovisual(ctx context.Context, items []event.Audiovisual) ([]event.Audiovisual, error) {
	logger := s.loggerWith(ctx, "BatchUpsertAudiovisual", "count", len(items))
	vErr := &ValidationError{}
	for i, item := range items {
		if strings.TrimSpace(item.VenueID) == "" {
			vErr.add(fmt.Sprintf("updates[%d].venueId", i), msgRequired)
		}
	}
	if vErr.HasErrors() {
		return nil, vErr
	}
	saved, err := s.backend.BatchUpsertAudiovisual(ctx, items)
	if err != nil {
		return nil, s.fail(ctx, logger, "BatchUpsertAudiovisual", err)
	}
	logger.InfoContext(ctx, "audiovisual batch saved")
	return saved, nil
}

// DeleteAudiovisual removes the checklist of one venue.
func (s *ChecklistService) DeleteAudiovisual(ctx context.Context, venueID string) error {
	logger := s.loggerWith(ctx, "DeleteAudiovisual", "venue_id", venueID)
	if err := s.backend.DeleteAudiovisual(ctx, venueID); err != nil {
		return s.fail(ctx, logger, "DeleteAudiovisual", err)
	}
	logger.InfoContext(ctx, "audiovisual deleted")
	return nil
}

// Summary counts needed and pending requirements over every checklist.
func (s *ChecklistService) Summary(ctx context.Context) (ChecklistSummary, error) {
	infra, err := s.ListInfrastructure(ctx)
	if err != nil {
		return ChecklistSummary{}, err
	}
	av, err := s.ListAudiovisual(ctx)
	if err != nil {
		return ChecklistSummary{}, err
	}

	infraLists := make([][]event.Requirement, 0, len(infra))
	for _, item := range infra {
		infraLists = append(infraLists, item.Requirements())
	}
	avLists := make([][]event.Requirement, 0, len(av))
	for _, item := range av {
		avLists = append(avLists, item.Requirements())
	}
	return ChecklistSummary{
		Infrastructure: event.SummarizeRequirements(infraLists),
		Audiovisual:    event.SummarizeRequirements(avLists),
	}, nil
}
