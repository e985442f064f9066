package storage

import (
	"context"
	"database/sql"

	"github.com/trannm/reviewbooks/internal/models"
)

// CreatePost inserts a new forum post
func (d *Database) CreatePost(ctx context.Context, post *models.ForumPost) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO forum_posts (id, title, content, user_id, view_count, is_pinned, is_locked, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID, post.Title, post.Content, post.UserID, post.ViewCount,
		post.IsPinned, post.IsLocked, post.CreatedAt, post.UpdatedAt,
	)
	return err
}

const postSelect = `
	SELECT p.id, p.title, p.content, p.user_id, p.view_count, p.is_pinned, p.is_locked,
		p.created_at, p.updated_at, u.username,
		(SELECT COUNT(*) FROM forum_comments c WHERE c.post_id = p.id)
	FROM forum_posts p
	JOIN users u ON u.id = p.user_id`

func scanPost(row interface{ Scan(...any) error }) (*models.ForumPost, error) {
	post := &models.ForumPost{}
	err := row.Scan(&post.ID, &post.Title, &post.Content, &post.UserID, &post.ViewCount,
		&post.IsPinned, &post.IsLocked, &post.CreatedAt, &post.UpdatedAt,
		&post.Username, &post.CommentCount)
	if err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost retrieves a forum post by id, or (nil, nil) when absent
func (d *Database) GetPost(ctx context.Context, id string) (*models.ForumPost, error) {
	post, err := scanPost(d.db.QueryRowContext(ctx, postSelect+` WHERE p.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

// IncrementPostViews bumps the view counter for a post
func (d *Database) IncrementPostViews(ctx context.Context, id string) error {
	_, err := d.db.ExecContext(ctx,
		`UPDATE forum_posts SET view_count = view_count + 1 WHERE id = ?`, id)
	return err
}

// ListPosts returns a page of forum posts, pinned first, newest first
func (d *Database) ListPosts(ctx context.Context, pageNumber, pageSize int) (models.Page[models.ForumPost], error) {
	page := models.EmptyPage[models.ForumPost](pageNumber, pageSize)

	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM forum_posts`).Scan(&page.TotalCount)
	if err != nil {
		return page, err
	}

	rows, err := d.db.QueryContext(ctx,
		postSelect+` ORDER BY p.is_pinned DESC, p.created_at DESC LIMIT ? OFFSET ?`,
		pageSize, (pageNumber-1)*pageSize,
	)
	if err != nil {
		return page, err
	}
	defer rows.Close()

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return page, err
		}
		page.Items = append(page.Items, *post)
	}
	return page, rows.Err()
}

// UpdatePost updates title, content, and updated_at of a post
func (d *Database) UpdatePost(ctx context.Context, post *models.ForumPost) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE forum_posts SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		post.Title, post.Content, post.UpdatedAt, post.ID,
	)
	return err
}

// SetPostFlags sets the pinned and locked flags of a post
func (d *Database) SetPostFlags(ctx context.Context, id string, pinned, locked bool) error {
	_, err := d.db.ExecContext(ctx,
		`UPDATE forum_posts SET is_pinned = ?, is_locked = ? WHERE id = ?`,
		pinned, locked, id)
	return err
}

// DeletePost deletes a post; its comments cascade
func (d *Database) DeletePost(ctx context.Context, id string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM forum_posts WHERE id = ?`, id)
	return err
}

// CreateComment inserts a new comment on a post
func (d *Database) CreateComment(ctx context.Context, comment *models.ForumComment) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO forum_comments (id, post_id, user_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		comment.ID, comment.PostID, comment.UserID, comment.Content,
		comment.CreatedAt, comment.UpdatedAt,
	)
	return err
}

const commentSelect = `
	SELECT c.id, c.post_id, c.user_id, c.content, c.created_at, c.updated_at, u.username
	FROM forum_comments c
	JOIN users u ON u.id = c.user_id`

func scanComment(row interface{ Scan(...any) error }) (*models.ForumComment, error) {
	comment := &models.ForumComment{}
	err := row.Scan(&comment.ID, &comment.PostID, &comment.UserID, &comment.Content,
		&comment.CreatedAt, &comment.UpdatedAt, &comment.Username)
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// GetComment retrieves a comment by id, or (nil, nil) when absent
func (d *Database) GetComment(ctx context.Context, id string) (*models.ForumComment, error) {
	comment, err := scanComment(d.db.QueryRowContext(ctx, commentSelect+` WHERE c.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns a page of comments for a post, oldest first
func (d *Database) ListComments(ctx context.Context, postID string, pageNumber, pageSize int) (models.Page[models.ForumComment], error) {
	page := models.EmptyPage[models.ForumComment](pageNumber, pageSize)

	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM forum_comments WHERE post_id = ?`, postID,
	).Scan(&page.TotalCount)
	if err != nil {
		return page, err
	}

	rows, err := d.db.QueryContext(ctx,
		commentSelect+` WHERE c.post_id = ? ORDER BY c.created_at ASC LIMIT ? OFFSET ?`,
		postID, pageSize, (pageNumber-1)*pageSize,
	)
	if err != nil {
		return page, err
	}
	defer rows.Close()

	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return page, err
		}
		page.Items = append(page.Items, *comment)
	}
	return page, rows.Err()
}

// UpdateComment updates the content and updated_at of a comment
func (d *Database) UpdateComment(ctx context.Context, comment *models.ForumComment) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE forum_comments SET content = ?, updated_at = ? WHERE id = ?`,
		comment.Content, comment.UpdatedAt, comment.ID,
	)
	return err
}

// DeleteComment deletes a comment by id
func (d *Database) DeleteComment(ctx context.Context, id string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM forum_comments WHERE id = ?`, id)
	return err
}
