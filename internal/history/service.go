package history

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service records download requests and lists them for the dashboard.
type Service struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewService creates a new history service.
func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "history").Logger(),
	}
}

// Create records a download request and returns the stored entry.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Entry, error) {
	id := uuid.New().String()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO downloads (id, media_type, catalog_id, title, torrent_id, quality, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, string(input.MediaType), input.CatalogID, input.Title, input.TorrentID, input.Quality, input.Message)
	if err != nil {
		return nil, err
	}

	return s.getByID(ctx, id)
}

// List lists recorded downloads with pagination, newest first.
func (s *Service) List(ctx context.Context, opts ListOptions) (*ListResponse, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 50
	}
	if opts.PageSize > 100 {
		opts.PageSize = 100
	}

	offset := (opts.Page - 1) * opts.PageSize

	args := []any{}
	where := ""
	if opts.MediaType != "" {
		where = "WHERE media_type = ?"
		args = append(args, opts.MediaType)
	}

	var totalCount int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM downloads `+where, args...).Scan(&totalCount); err != nil {
		return nil, err
	}

	query := `
		SELECT id, media_type, catalog_id, title, torrent_id, quality, message, created_at
		FROM downloads ` + where + `
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, opts.PageSize, offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*Entry, 0, opts.PageSize)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int(totalCount) / opts.PageSize
	if int(totalCount)%opts.PageSize > 0 {
		totalPages++
	}

	return &ListResponse{
		Items:      entries,
		Page:       opts.Page,
		PageSize:   opts.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}

// DeleteAll clears the download history.
func (s *Service) DeleteAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM downloads`)
	return err
}

func (s *Service) getByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, media_type, catalog_id, title, torrent_id, quality, message, created_at
		FROM downloads WHERE id = ?`, id)
	return scanEntry(row)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var e Entry
	var mediaType string
	if err := row.Scan(&e.ID, &mediaType, &e.CatalogID, &e.Title, &e.TorrentID, &e.Quality, &e.Message, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.MediaType = MediaType(mediaType)
	return &e, nil
}
