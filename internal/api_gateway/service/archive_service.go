package service

import (
	"context"
	"log/slog"

	"github.com/ohada-ledger/internal/domain/archive"
)

// ArchiveServiceImpl implements the ArchiveService interface
type ArchiveServiceImpl struct {
	repo   archive.Repository
	logger *slog.Logger
}

// NewArchiveService creates a new archive service
func NewArchiveService(logger *slog.Logger, repo archive.Repository) ArchiveService {
	return &ArchiveServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

// GetPostedEntry retrieves the archived snapshot of a posted entry by reference
func (s *ArchiveServiceImpl) GetPostedEntry(ctx context.Context, reference string) (*archive.PostedEntry, error) {
	return s.repo.GetByReference(ctx, reference)
}

// GetPostedEntriesByAccount retrieves one page of archived entries touching an account.
// Returns entries, total count, and any error
func (s *ArchiveServiceImpl) GetPostedEntriesByAccount(ctx context.Context, code string, page, perPage int) ([]*archive.PostedEntry, int64, error) {
	offset := (page - 1) * perPage

	entries, err := s.repo.GetByAccountCode(ctx, code, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.CountByAccountCode(ctx, code)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
