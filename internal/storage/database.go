package storage

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/trannm/reviewbooks/internal/models"
)

// Database handles all database operations
type Database struct {
	db *sql.DB
}

// NewDatabase creates and initializes the SQLite database
func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	d := &Database{db: db}
	if err := d.migrate(); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Database) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		email_verified INTEGER NOT NULL DEFAULT 0,
		verify_token TEXT DEFAULT '',
		verify_token_expires DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS books (
		id TEXT PRIMARY KEY,
		title TEXT,
		authors TEXT,
		publisher TEXT,
		description TEXT,
		thumbnail TEXT,
		published_date DATETIME,
		isbn TEXT,
		categories TEXT,
		price REAL,
		buy_link TEXT,
		average_rating REAL,
		ratings_count INTEGER,
		system_average_rating REAL,
		system_ratings_count INTEGER NOT NULL DEFAULT 0,
		cached_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS book_snapshots (
		book_id TEXT PRIMARY KEY,
		raw_json TEXT NOT NULL,
		captured_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		book_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		rating INTEGER NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS favorites (
		user_id TEXT NOT NULL,
		book_id TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, book_id),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS forum_posts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		user_id TEXT NOT NULL,
		view_count INTEGER NOT NULL DEFAULT 0,
		is_pinned INTEGER NOT NULL DEFAULT 0,
		is_locked INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS forum_comments (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME,
		FOREIGN KEY (post_id) REFERENCES forum_posts(id) ON DELETE CASCADE,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_reviews_book ON reviews(book_id);
	CREATE INDEX IF NOT EXISTS idx_reviews_user ON reviews(user_id);
	CREATE INDEX IF NOT EXISTS idx_favorites_book ON favorites(book_id);
	CREATE INDEX IF NOT EXISTS idx_forum_comments_post ON forum_comments(post_id);
	`

	_, err := d.db.Exec(schema)
	return err
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

const bookColumns = `id, title, authors, publisher, description, thumbnail,
	published_date, isbn, categories, price, buy_link,
	average_rating, ratings_count, system_average_rating, system_ratings_count, cached_at`

func scanBook(row interface{ Scan(...any) error }) (*models.Book, error) {
	book := &models.Book{}
	err := row.Scan(&book.ID, &book.Title, &book.Authors, &book.Publisher, &book.Description,
		&book.Thumbnail, &book.PublishedDate, &book.ISBN, &book.Categories, &book.Price,
		&book.BuyLink, &book.AverageRating, &book.RatingsCount,
		&book.SystemAverageRating, &book.SystemRatingsCount, &book.CachedAt)
	if err != nil {
		return nil, err
	}
	return book, nil
}

// GetBook retrieves a cached book by volume id, or (nil, nil) when absent
func (d *Database) GetBook(ctx context.Context, id string) (*models.Book, error) {
	book, err := scanBook(d.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return book, nil
}

// UpsertBook inserts or fully overwrites a book record by id
func (d *Database) UpsertBook(ctx context.Context, book *models.Book) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO books (`+bookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			authors = excluded.authors,
			publisher = excluded.publisher,
			description = excluded.description,
			thumbnail = excluded.thumbnail,
			published_date = excluded.published_date,
			isbn = excluded.isbn,
			categories = excluded.categories,
			price = excluded.price,
			buy_link = excluded.buy_link,
			average_rating = excluded.average_rating,
			ratings_count = excluded.ratings_count,
			system_average_rating = excluded.system_average_rating,
			system_ratings_count = excluded.system_ratings_count,
			cached_at = excluded.cached_at`,
		book.ID, book.Title, book.Authors, book.Publisher, book.Description,
		book.Thumbnail, book.PublishedDate, book.ISBN, book.Categories, book.Price,
		book.BuyLink, book.AverageRating, book.RatingsCount,
		book.SystemAverageRating, book.SystemRatingsCount, book.CachedAt,
	)
	return err
}

// GetSnapshot retrieves the raw snapshot for a volume id, or (nil, nil) when absent
func (d *Database) GetSnapshot(ctx context.Context, id string) (*models.BookSnapshot, error) {
	snap := &models.BookSnapshot{}
	err := d.db.QueryRowContext(ctx,
		`SELECT book_id, raw_json, captured_at FROM book_snapshots WHERE book_id = ?`, id,
	).Scan(&snap.BookID, &snap.RawJSON, &snap.CapturedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// UpsertSnapshot inserts or overwrites the raw snapshot for a volume id
func (d *Database) UpsertSnapshot(ctx context.Context, snap *models.BookSnapshot) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO book_snapshots (book_id, raw_json, captured_at)
		VALUES (?, ?, ?)
		ON CONFLICT(book_id) DO UPDATE SET
			raw_json = excluded.raw_json,
			captured_at = excluded.captured_at`,
		snap.BookID, snap.RawJSON, snap.CapturedAt,
	)
	return err
}

// UpdateBookRatings recomputes the system rating aggregate for a book from
// its reviews. Average is rounded to one decimal; no reviews clears it.
func (d *Database) UpdateBookRatings(ctx context.Context, bookID string) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE books SET
			system_average_rating = (
				SELECT ROUND(AVG(rating), 1) FROM reviews WHERE book_id = ?
			),
			system_ratings_count = (
				SELECT COUNT(*) FROM reviews WHERE book_id = ?
			)
		WHERE id = ?`,
		bookID, bookID, bookID,
	)
	return err
}

// --- Users ---

// CreateUser inserts a new user
func (d *Database) CreateUser(ctx context.Context, user *models.User) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, role, email_verified, verify_token, verify_token_expires, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role,
		user.EmailVerified, user.VerifyToken, user.VerifyTokenExpires, user.CreatedAt,
	)
	return err
}

const userColumns = `id, username, email, password_hash, role, email_verified, verify_token, verify_token_expires, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role,
		&user.EmailVerified, &user.VerifyToken, &user.VerifyTokenExpires, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (d *Database) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	return scanUser(d.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where, arg))
}

// GetUserByID retrieves a user by id
func (d *Database) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return d.getUser(ctx, "id = ?", id)
}

// GetUserByUsername retrieves a user by username
func (d *Database) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return d.getUser(ctx, "username = ?", username)
}

// GetUserByEmail retrieves a user by email
func (d *Database) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return d.getUser(ctx, "email = ?", email)
}

// GetUserByVerifyToken retrieves a user by pending verification token, or
// (nil, nil) when no account carries it. Verification clears the token, so a
// reused or made-up token lands here, not in the error path.
func (d *Database) GetUserByVerifyToken(ctx context.Context, token string) (*models.User, error) {
	user, err := d.getUser(ctx, "verify_token = ?", token)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns a page of accounts, newest first
func (d *Database) ListUsers(ctx context.Context, pageNumber, pageSize int) (models.Page[models.User], error) {
	page := models.EmptyPage[models.User](pageNumber, pageSize)

	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&page.TotalCount)
	if err != nil {
		return page, err
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		pageSize, (pageNumber-1)*pageSize,
	)
	if err != nil {
		return page, err
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return page, err
		}
		page.Items = append(page.Items, *user)
	}
	return page, rows.Err()
}

// UpdateUser updates the mutable account fields
func (d *Database) UpdateUser(ctx context.Context, user *models.User) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE users SET username = ?, email = ?, role = ?, email_verified = ?
		WHERE id = ?`,
		user.Username, user.Email, user.Role, user.EmailVerified, user.ID,
	)
	return err
}

// DeleteUser removes an account; its reviews, favorites, posts, and comments
// cascade with it
func (d *Database) DeleteUser(ctx context.Context, id string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

// UserExists checks whether a username or email is already taken
func (d *Database) UserExists(ctx context.Context, username, email string) (bool, error) {
	var count int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`, username, email,
	).Scan(&count)
	return count > 0, err
}

// MarkEmailVerified flips the verification flag and clears the token
func (d *Database) MarkEmailVerified(ctx context.Context, userID string) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE users SET email_verified = 1, verify_token = '', verify_token_expires = NULL
		WHERE id = ?`, userID)
	return err
}

// SetVerifyToken stores a fresh verification token for a user
func (d *Database) SetVerifyToken(ctx context.Context, userID, token string, expires time.Time) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE users SET verify_token = ?, verify_token_expires = ? WHERE id = ?`,
		token, expires, userID)
	return err
}
