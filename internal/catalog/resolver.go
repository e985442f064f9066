package catalog

import (
	"context"
	"encoding/json"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/trannm/reviewbooks/internal/models"
)

// cacheTTL is how long a stored snapshot is trusted before the provider is
// asked again. The comparison is strict: a snapshot captured exactly cacheTTL
// ago counts as stale.
const cacheTTL = 24 * time.Hour

// Store is the narrow persistence contract the resolver depends on. Reads
// return (nil, nil) for a missing row; upserts are idempotent full overwrites
// keyed by volume id, last write wins.
type Store interface {
	GetBook(ctx context.Context, id string) (*models.Book, error)
	UpsertBook(ctx context.Context, book *models.Book) error
	GetSnapshot(ctx context.Context, id string) (*models.BookSnapshot, error)
	UpsertSnapshot(ctx context.Context, snap *models.BookSnapshot) error
}

// Resolver implements cache-aside lookup against the external catalog.
// Concurrent calls for the same id may each hit the provider and each write;
// that is accepted, there is deliberately no per-id single-flight.
type Resolver struct {
	store   Store
	fetcher Fetcher
	cfg     Config
}

// NewResolver creates a resolver over the given store and fetcher.
func NewResolver(store Store, fetcher Fetcher, cfg Config) *Resolver {
	return &Resolver{store: store, fetcher: fetcher, cfg: cfg}
}

// Resolve returns the book for a volume id, or (nil, nil) when it cannot be
// found anywhere. Provider failures degrade to not-found; only store read
// failures surface as errors.
func (r *Resolver) Resolve(ctx context.Context, id string) (*models.Book, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}

	snap, err := r.store.GetSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if snap != nil && time.Since(snap.CapturedAt) < cacheTTL {
		book, err := r.store.GetBook(ctx, id)
		if err != nil {
			return nil, err
		}
		if book != nil {
			// Fast path: the stored record already carries the
			// locally computed rating fields.
			return book, nil
		}
		// A snapshot can exist without a record, e.g. when a search
		// cached the raw item for an id that was never upserted on its
		// own. Serve it by re-parsing the payload.
		if parsed := ParseVolume(id, []byte(snap.RawJSON)); parsed != nil {
			return parsed, nil
		}
	}

	body, err := r.fetcher.Fetch(ctx, r.volumeURL(id))
	if err != nil {
		log.Printf("Warning: catalog fetch failed for %s: %v", id, err)
		return nil, nil
	}

	parsed := ParseVolume(id, body)
	if parsed == nil {
		return nil, nil
	}

	record, err := r.writeThrough(ctx, parsed, string(body))
	if err != nil {
		// Persistence is opportunistic on the read path; the caller
		// still gets the freshly parsed view.
		log.Printf("Warning: failed to cache book %s: %v", id, err)
		return parsed, nil
	}
	return record, nil
}

// Search queries the catalog and caches every parsed result item. A blank
// term short-circuits to an empty page without calling the provider, and any
// provider failure degrades to an empty page.
func (r *Resolver) Search(ctx context.Context, q SearchQuery) (models.Page[models.Book], error) {
	q = q.normalize()
	if q.Term == "" {
		return models.EmptyPage[models.Book](q.PageNumber, q.PageSize), nil
	}

	body, err := r.fetcher.Fetch(ctx, r.searchURL(q))
	if err != nil {
		log.Printf("Warning: catalog search failed for %q: %v", q.Term, err)
		return models.EmptyPage[models.Book](q.PageNumber, q.PageSize), nil
	}

	var envelope struct {
		TotalItems any               `json:"totalItems"`
		Items      []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		log.Printf("Warning: malformed search response for %q: %v", q.Term, err)
		return models.EmptyPage[models.Book](q.PageNumber, q.PageSize), nil
	}

	// The reported total comes from the envelope, so it may exceed the
	// number of items that actually parse. Expected, not a defect.
	total := 0
	if f, ok := envelope.TotalItems.(float64); ok {
		total = int(f)
	}

	items := make([]models.Book, 0, len(envelope.Items))
	for _, raw := range envelope.Items {
		parsed := ParseSearchItem(raw)
		if parsed == nil {
			continue
		}
		record, err := r.writeThrough(ctx, parsed, string(raw))
		if err != nil {
			log.Printf("Warning: failed to cache search item %s: %v", parsed.ID, err)
			items = append(items, *parsed)
			continue
		}
		items = append(items, *record)
	}

	return models.Page[models.Book]{
		Items:       items,
		TotalCount:  total,
		PageSize:    q.PageSize,
		CurrentPage: q.PageNumber,
	}, nil
}

// writeThrough upserts the normalized record and the raw snapshot for one
// volume. The system rating fields belong to the review subsystem, so an
// existing record's values are carried over before the overwrite.
func (r *Resolver) writeThrough(ctx context.Context, parsed *models.Book, rawJSON string) (*models.Book, error) {
	now := time.Now().UTC()

	record := *parsed
	record.CachedAt = now

	existing, err := r.store.GetBook(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		record.SystemAverageRating = existing.SystemAverageRating
		record.SystemRatingsCount = existing.SystemRatingsCount
	}

	if err := r.store.UpsertBook(ctx, &record); err != nil {
		return nil, err
	}

	snap := &models.BookSnapshot{
		BookID:     record.ID,
		RawJSON:    rawJSON,
		CapturedAt: now,
	}
	if err := r.store.UpsertSnapshot(ctx, snap); err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *Resolver) volumeURL(id string) string {
	u := r.cfg.normalizedBaseURL() + "/volumes/" + url.PathEscape(id)
	if r.cfg.APIKey != "" {
		u += "?key=" + url.QueryEscape(r.cfg.APIKey)
	}
	return u
}

func (r *Resolver) searchURL(q SearchQuery) string {
	params := url.Values{}
	params.Set("q", q.Term)
	params.Set("startIndex", strconv.Itoa(q.startIndex()))
	params.Set("maxResults", strconv.Itoa(q.PageSize))
	if q.SortBy != "" {
		params.Set("orderBy", q.SortBy)
	}
	if q.FilterBy != "" {
		params.Set("filter", q.FilterBy)
	}
	if r.cfg.APIKey != "" {
		params.Set("key", r.cfg.APIKey)
	}
	return r.cfg.normalizedBaseURL() + "/volumes?" + params.Encode()
}
