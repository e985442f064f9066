package storage

import (
	"context"
	"database/sql"

	"github.com/trannm/reviewbooks/internal/models"
)

// CreateReview inserts a new review
func (d *Database) CreateReview(ctx context.Context, review *models.Review) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO reviews (id, book_id, user_id, rating, comment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		review.ID, review.BookID, review.UserID, review.Rating, review.Comment,
		review.CreatedAt, review.UpdatedAt,
	)
	return err
}

const reviewSelect = `
	SELECT r.id, r.book_id, r.user_id, r.rating, r.comment, r.created_at, r.updated_at,
		u.username, COALESCE(b.title, '')
	FROM reviews r
	JOIN users u ON u.id = r.user_id
	LEFT JOIN books b ON b.id = r.book_id`

func scanReview(row interface{ Scan(...any) error }) (*models.Review, error) {
	review := &models.Review{}
	err := row.Scan(&review.ID, &review.BookID, &review.UserID, &review.Rating,
		&review.Comment, &review.CreatedAt, &review.UpdatedAt,
		&review.Username, &review.BookTitle)
	if err != nil {
		return nil, err
	}
	return review, nil
}

// GetReview retrieves a review by id, or (nil, nil) when absent
func (d *Database) GetReview(ctx context.Context, id string) (*models.Review, error) {
	review, err := scanReview(d.db.QueryRowContext(ctx, reviewSelect+` WHERE r.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return review, nil
}

// reviewOrder maps a sort key to an ORDER BY clause. Unknown keys fall back
// to newest first.
func reviewOrder(sortBy string, descending bool) string {
	dir := "ASC"
	if descending {
		dir = "DESC"
	}
	switch sortBy {
	case "rating":
		return "r.rating " + dir
	case "createdat":
		return "r.created_at " + dir
	default:
		return "r.created_at DESC"
	}
}

func (d *Database) listReviews(ctx context.Context, where, order string, pageNumber, pageSize int, args ...any) (models.Page[models.Review], error) {
	page := models.EmptyPage[models.Review](pageNumber, pageSize)

	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews r WHERE `+where, args...,
	).Scan(&page.TotalCount)
	if err != nil {
		return page, err
	}

	query := reviewSelect + ` WHERE ` + where + ` ORDER BY ` + order + ` LIMIT ? OFFSET ?`
	args = append(args, pageSize, (pageNumber-1)*pageSize)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return page, err
	}
	defer rows.Close()

	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return page, err
		}
		page.Items = append(page.Items, *review)
	}
	return page, rows.Err()
}

// ListReviewsByBook returns a page of reviews for a book
func (d *Database) ListReviewsByBook(ctx context.Context, bookID, sortBy string, descending bool, pageNumber, pageSize int) (models.Page[models.Review], error) {
	return d.listReviews(ctx, "r.book_id = ?", reviewOrder(sortBy, descending), pageNumber, pageSize, bookID)
}

// ListReviewsByUser returns a page of reviews written by a user
func (d *Database) ListReviewsByUser(ctx context.Context, userID, sortBy string, descending bool, pageNumber, pageSize int) (models.Page[models.Review], error) {
	return d.listReviews(ctx, "r.user_id = ?", reviewOrder(sortBy, descending), pageNumber, pageSize, userID)
}

// UpdateReview updates the rating, comment, and updated_at of a review
func (d *Database) UpdateReview(ctx context.Context, review *models.Review) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE reviews SET rating = ?, comment = ?, updated_at = ? WHERE id = ?`,
		review.Rating, review.Comment, review.UpdatedAt, review.ID,
	)
	return err
}

// DeleteReview deletes a review by id
func (d *Database) DeleteReview(ctx context.Context, id string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	return err
}
