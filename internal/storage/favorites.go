package storage

import (
	"context"

	"github.com/trannm/reviewbooks/internal/models"
)

// AddFavorite marks a book as favorited by a user. Idempotent.
func (d *Database) AddFavorite(ctx context.Context, fav *models.Favorite) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO favorites (user_id, book_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, book_id) DO NOTHING`,
		fav.UserID, fav.BookID, fav.CreatedAt,
	)
	return err
}

// RemoveFavorite removes a favorite. Removing a non-favorite is not an error.
func (d *Database) RemoveFavorite(ctx context.Context, userID, bookID string) error {
	_, err := d.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND book_id = ?`, userID, bookID)
	return err
}

// IsFavorite reports whether a user has favorited a book
func (d *Database) IsFavorite(ctx context.Context, userID, bookID string) (bool, error) {
	var count int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id = ? AND book_id = ?`,
		userID, bookID,
	).Scan(&count)
	return count > 0, err
}

// ListFavoriteBooks returns a page of a user's favorited books, newest first,
// joined against the cached records.
func (d *Database) ListFavoriteBooks(ctx context.Context, userID string, pageNumber, pageSize int) (models.Page[models.Book], error) {
	page := models.EmptyPage[models.Book](pageNumber, pageSize)

	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id = ?`, userID,
	).Scan(&page.TotalCount)
	if err != nil {
		return page, err
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT `+bookColumns+`
		FROM favorites f
		JOIN books ON books.id = f.book_id
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC
		LIMIT ? OFFSET ?`,
		userID, pageSize, (pageNumber-1)*pageSize,
	)
	if err != nil {
		return page, err
	}
	defer rows.Close()

	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return page, err
		}
		page.Items = append(page.Items, *book)
	}
	return page, rows.Err()
}
