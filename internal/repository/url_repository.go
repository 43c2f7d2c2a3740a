package repository

//go:generate mockgen -source=url_repository.go -destination=mocks/mock_url_repository.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"linkly/internal/apperrors"
	"linkly/internal/entities"
)

// pq SQLSTATE for unique_violation
const uniqueViolation = "23505"

// URLRepository defines the interface for URL database operations
type URLRepository interface {
	// Create inserts a record. It returns an error wrapping apperrors.ErrDuplicateCode
	// if shortCode is already taken.
	Create(ctx context.Context, shortCode, originalURL string, userID, qrCode *string) (*entities.URL, error)
	// FindByShortCode returns the record or (nil, nil) when there is none.
	FindByShortCode(ctx context.Context, shortCode string) (*entities.URL, error)
	// ResolveAndIncrement bumps the click counter and returns the updated record
	// in one atomic step, or (nil, nil) when there is no such code.
	ResolveAndIncrement(ctx context.Context, shortCode string) (*entities.URL, error)
	// ListByOwner returns every record owned by userID, newest first.
	ListByOwner(ctx context.Context, userID string) ([]*entities.URL, error)
	// FindByID returns the record with the given id if userID owns it, or (nil, nil).
	FindByID(ctx context.Context, id, userID string) (*entities.URL, error)
}

type urlRepository struct {
	db *sql.DB
}

// NewURLRepository creates a new URL repository
func NewURLRepository(db *sql.DB) URLRepository {
	return &urlRepository{db: db}
}

const urlColumns = `id, short_code, original_url, user_id, click_count, qrcode_image, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanURL(row rowScanner) (*entities.URL, error) {
	var url entities.URL
	err := row.Scan(
		&url.ID,
		&url.ShortCode,
		&url.OriginalURL,
		&url.UserID,
		&url.ClickCount,
		&url.QRCode,
		&url.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &url, nil
}

// Create inserts a new URL into the database
func (r *urlRepository) Create(ctx context.Context, shortCode, originalURL string, userID, qrCode *string) (*entities.URL, error) {
	query := `
		INSERT INTO urls (short_code, original_url, user_id, qrcode_image)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + urlColumns

	url, err := scanURL(r.db.QueryRowContext(ctx, query, shortCode, originalURL, userID, qrCode))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("short code %q: %w", shortCode, apperrors.ErrDuplicateCode)
		}
		return nil, fmt.Errorf("failed to create URL: %w", err)
	}

	return url, nil
}

// FindByShortCode finds a URL by its short code
func (r *urlRepository) FindByShortCode(ctx context.Context, shortCode string) (*entities.URL, error) {
	query := `SELECT ` + urlColumns + ` FROM urls WHERE short_code = $1`

	url, err := scanURL(r.db.QueryRowContext(ctx, query, shortCode))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find URL: %w", err)
	}

	return url, nil
}

// ResolveAndIncrement increments the click count and returns the updated row.
// The single UPDATE ... RETURNING takes the row lock, so concurrent redirects never lose an increment.
func (r *urlRepository) ResolveAndIncrement(ctx context.Context, shortCode string) (*entities.URL, error) {
	query := `
		UPDATE urls
		SET click_count = click_count + 1
		WHERE short_code = $1
		RETURNING ` + urlColumns

	url, err := scanURL(r.db.QueryRowContext(ctx, query, shortCode))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment click count: %w", err)
	}

	return url, nil
}

// ListByOwner retrieves all URLs for a specific user
func (r *urlRepository) ListByOwner(ctx context.Context, userID string) ([]*entities.URL, error) {
	query := `
		SELECT ` + urlColumns + `
		FROM urls
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get URLs: %w", err)
	}
	defer rows.Close()

	urls := []*entities.URL{}
	for rows.Next() {
		url, err := scanURL(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan URL: %w", err)
		}
		urls = append(urls, url)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating URLs: %w", err)
	}

	return urls, nil
}

// FindByID finds a URL by id, restricted to its owner
func (r *urlRepository) FindByID(ctx context.Context, id, userID string) (*entities.URL, error) {
	query := `SELECT ` + urlColumns + ` FROM urls WHERE id = $1 AND user_id = $2`

	url, err := scanURL(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find URL: %w", err)
	}

	return url, nil
}
