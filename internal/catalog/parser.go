package catalog

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/trannm/reviewbooks/internal/models"
)

// The catalog payload is semi-structured: fields come and go, and a field
// that exists for one volume may carry a different type for another. Parsing
// therefore walks the decoded document defensively instead of decoding into
// rigid structs; a field of an unexpected type simply stays nil.

// ParseVolume parses a single-volume document, whose descriptive section
// lives at the document root under "volumeInfo". Returns nil when the
// document has no usable descriptive section.
func ParseVolume(id string, raw []byte) *models.Book {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}

	info := getObject(doc, "volumeInfo")
	if info == nil {
		return nil
	}

	book := bookFromVolumeInfo(id, info)
	applySaleInfo(book, doc)
	return book
}

// ParseSearchItem parses one item of a search result envelope. The item
// carries its own "id" alongside the nested descriptive section. Returns nil
// when the id or the descriptive section is missing.
func ParseSearchItem(raw []byte) *models.Book {
	var item map[string]any
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil
	}

	id := getString(item, "id")
	if id == nil || *id == "" {
		return nil
	}

	info := getObject(item, "volumeInfo")
	if info == nil {
		return nil
	}

	book := bookFromVolumeInfo(*id, info)
	applySaleInfo(book, item)
	return book
}

func bookFromVolumeInfo(id string, info map[string]any) *models.Book {
	book := &models.Book{
		ID:          id,
		Title:       getString(info, "title"),
		Publisher:   getString(info, "publisher"),
		Description: getString(info, "description"),
	}

	if authors := joinStrings(getArray(info, "authors")); authors != "" {
		book.Authors = &authors
	}
	if categories := joinStrings(getArray(info, "categories")); categories != "" {
		book.Categories = &categories
	}

	if images := getObject(info, "imageLinks"); images != nil {
		// Prefer the larger resolution.
		if thumb := getString(images, "thumbnail"); thumb != nil {
			book.Thumbnail = thumb
		} else {
			book.Thumbnail = getString(images, "smallThumbnail")
		}
	}

	book.AverageRating = getFloat(info, "averageRating")
	book.RatingsCount = getInt(info, "ratingsCount")

	if published := getString(info, "publishedDate"); published != nil {
		book.PublishedDate = parsePublishedDate(*published)
	}

	if ids := getArray(info, "industryIdentifiers"); ids != nil {
		book.ISBN = extractISBN(ids)
	}

	return book
}

// applySaleInfo fills price and buy link from the "saleInfo" section,
// falling back to root-level fields when the section is absent.
func applySaleInfo(book *models.Book, doc map[string]any) {
	if sale := getObject(doc, "saleInfo"); sale != nil {
		if listPrice := getObject(sale, "listPrice"); listPrice != nil {
			book.Price = getFloat(listPrice, "amount")
		}
		book.BuyLink = getString(sale, "buyLink")
		return
	}
	book.Price = getFloat(doc, "price")
	book.BuyLink = getString(doc, "buyLink")
}

// parsePublishedDate handles the three granularities the provider emits:
// bare year, year-month, and full date. Missing parts default to the start
// of the period. Unparseable strings fall back to the current time; this
// mirrors the behavior the rest of the system already depends on.
func parsePublishedDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	now := time.Now().UTC()
	return &now
}

// extractISBN returns the first ISBN_13 or ISBN_10 identifier, in list order.
func extractISBN(ids []any) *string {
	for _, entry := range ids {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		typ := getString(obj, "type")
		if typ == nil {
			continue
		}
		if *typ != "ISBN_13" && *typ != "ISBN_10" {
			continue
		}
		if ident := getString(obj, "identifier"); ident != nil && *ident != "" {
			return ident
		}
	}
	return nil
}

func joinStrings(values []any) string {
	var parts []string
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func getObject(m map[string]any, key string) map[string]any {
	if obj, ok := m[key].(map[string]any); ok {
		return obj
	}
	return nil
}

func getArray(m map[string]any, key string) []any {
	if arr, ok := m[key].([]any); ok {
		return arr
	}
	return nil
}

func getString(m map[string]any, key string) *string {
	if s, ok := m[key].(string); ok && s != "" {
		return &s
	}
	return nil
}

func getFloat(m map[string]any, key string) *float64 {
	if f, ok := m[key].(float64); ok {
		return &f
	}
	return nil
}

// getInt accepts only whole numbers; a fractional value for an integer field
// is as suspect as a wrong type and stays nil.
func getInt(m map[string]any, key string) *int {
	f, ok := m[key].(float64)
	if !ok || f != math.Trunc(f) {
		return nil
	}
	n := int(f)
	return &n
}
