package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVolumeFullDocument(t *testing.T) {
	raw := []byte(`{
		"id": "abc123",
		"volumeInfo": {
			"title": "The Go Programming Language",
			"authors": ["Alan Donovan", "Brian Kernighan"],
			"publisher": "Addison-Wesley",
			"description": "A book about Go",
			"publishedDate": "2015-10-26",
			"categories": ["Computers", "Programming"],
			"averageRating": 4.5,
			"ratingsCount": 120,
			"imageLinks": {
				"smallThumbnail": "http://example.com/small.jpg",
				"thumbnail": "http://example.com/big.jpg"
			},
			"industryIdentifiers": [
				{"type": "ISBN_13", "identifier": "9780134190440"},
				{"type": "ISBN_10", "identifier": "0134190440"}
			]
		},
		"saleInfo": {
			"buyLink": "http://example.com/buy",
			"listPrice": {"amount": 39.99, "currencyCode": "USD"}
		}
	}`)

	book := ParseVolume("abc123", raw)
	require.NotNil(t, book)

	assert.Equal(t, "abc123", book.ID)
	require.NotNil(t, book.Title)
	assert.Equal(t, "The Go Programming Language", *book.Title)
	require.NotNil(t, book.Authors)
	assert.Equal(t, "Alan Donovan, Brian Kernighan", *book.Authors)
	require.NotNil(t, book.Categories)
	assert.Equal(t, "Computers, Programming", *book.Categories)
	require.NotNil(t, book.Thumbnail)
	assert.Equal(t, "http://example.com/big.jpg", *book.Thumbnail)
	require.NotNil(t, book.AverageRating)
	assert.Equal(t, 4.5, *book.AverageRating)
	require.NotNil(t, book.RatingsCount)
	assert.Equal(t, 120, *book.RatingsCount)
	require.NotNil(t, book.ISBN)
	assert.Equal(t, "9780134190440", *book.ISBN)
	require.NotNil(t, book.Price)
	assert.Equal(t, 39.99, *book.Price)
	require.NotNil(t, book.BuyLink)
	assert.Equal(t, "http://example.com/buy", *book.BuyLink)
	require.NotNil(t, book.PublishedDate)
	assert.Equal(t, time.Date(2015, 10, 26, 0, 0, 0, 0, time.UTC), *book.PublishedDate)
}

func TestParseVolumeMissingOptionalFields(t *testing.T) {
	raw := []byte(`{"volumeInfo": {"title": "Bare"}}`)

	book := ParseVolume("x1", raw)
	require.NotNil(t, book)

	require.NotNil(t, book.Title)
	assert.Equal(t, "Bare", *book.Title)
	assert.Nil(t, book.Authors)
	assert.Nil(t, book.Thumbnail)
	assert.Nil(t, book.AverageRating)
	assert.Nil(t, book.RatingsCount)
	assert.Nil(t, book.PublishedDate)
	assert.Nil(t, book.ISBN)
	assert.Nil(t, book.Categories)
	assert.Nil(t, book.Price)
	assert.Nil(t, book.BuyLink)
}

func TestParseVolumeNoDescriptiveSection(t *testing.T) {
	assert.Nil(t, ParseVolume("x1", []byte(`{"id": "x1"}`)))
	assert.Nil(t, ParseVolume("x1", []byte(`{"volumeInfo": "not an object"}`)))
	assert.Nil(t, ParseVolume("x1", []byte(`not json`)))
	assert.Nil(t, ParseVolume("x1", []byte(`[1,2,3]`)))
}

func TestParseVolumeWrongFieldTypes(t *testing.T) {
	raw := []byte(`{
		"volumeInfo": {
			"title": "Odd Types",
			"authors": "just a string",
			"averageRating": "4.5",
			"ratingsCount": "many",
			"imageLinks": []
		}
	}`)

	book := ParseVolume("x1", raw)
	require.NotNil(t, book)
	assert.Nil(t, book.Authors)
	assert.Nil(t, book.AverageRating)
	assert.Nil(t, book.RatingsCount)
	assert.Nil(t, book.Thumbnail)
}

func TestParseVolumeThumbnailFallback(t *testing.T) {
	raw := []byte(`{
		"volumeInfo": {
			"title": "T",
			"imageLinks": {"smallThumbnail": "http://example.com/small.jpg"}
		}
	}`)

	book := ParseVolume("x1", raw)
	require.NotNil(t, book)
	require.NotNil(t, book.Thumbnail)
	assert.Equal(t, "http://example.com/small.jpg", *book.Thumbnail)
}

func TestParseVolumeSaleInfoRootFallback(t *testing.T) {
	raw := []byte(`{
		"volumeInfo": {"title": "T"},
		"price": 9.5,
		"buyLink": "http://example.com/direct"
	}`)

	book := ParseVolume("x1", raw)
	require.NotNil(t, book)
	require.NotNil(t, book.Price)
	assert.Equal(t, 9.5, *book.Price)
	require.NotNil(t, book.BuyLink)
	assert.Equal(t, "http://example.com/direct", *book.BuyLink)
}

func TestParsePublishedDateGranularities(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"bare year", "1999", time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"year and month", "2005-07", time.Date(2005, 7, 1, 0, 0, 0, 0, time.UTC)},
		{"full date", "2010-03-15", time.Date(2010, 3, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := parsePublishedDate(tt.input)
			require.NotNil(t, parsed)
			assert.Equal(t, tt.expected, *parsed)
		})
	}
}

func TestParsePublishedDateUnparseableFallsBackToNow(t *testing.T) {
	before := time.Now().UTC()
	parsed := parsePublishedDate("sometime in spring")
	after := time.Now().UTC()

	require.NotNil(t, parsed)
	assert.False(t, parsed.Before(before))
	assert.False(t, parsed.After(after))
}

func TestExtractISBNFirstMatchWins(t *testing.T) {
	raw := []byte(`{
		"volumeInfo": {
			"title": "T",
			"industryIdentifiers": [
				{"type": "OTHER", "identifier": "OCLC:12345"},
				{"type": "ISBN_10", "identifier": "0134190440"},
				{"type": "ISBN_13", "identifier": "9780134190440"}
			]
		}
	}`)

	book := ParseVolume("x1", raw)
	require.NotNil(t, book)
	require.NotNil(t, book.ISBN)
	assert.Equal(t, "0134190440", *book.ISBN)
}

func TestParseSearchItem(t *testing.T) {
	raw := []byte(`{
		"id": "vol42",
		"volumeInfo": {
			"title": "Found It",
			"authors": ["Solo Author"]
		},
		"saleInfo": {"buyLink": "http://example.com/buy42"}
	}`)

	book := ParseSearchItem(raw)
	require.NotNil(t, book)
	assert.Equal(t, "vol42", book.ID)
	require.NotNil(t, book.Title)
	assert.Equal(t, "Found It", *book.Title)
	require.NotNil(t, book.Authors)
	assert.Equal(t, "Solo Author", *book.Authors)
	require.NotNil(t, book.BuyLink)
	assert.Equal(t, "http://example.com/buy42", *book.BuyLink)
}

func TestParseSearchItemMissingMandatoryFields(t *testing.T) {
	assert.Nil(t, ParseSearchItem([]byte(`{"volumeInfo": {"title": "No Id"}}`)))
	assert.Nil(t, ParseSearchItem([]byte(`{"id": "x"}`)))
	assert.Nil(t, ParseSearchItem([]byte(`{"id": 7, "volumeInfo": {"title": "T"}}`)))
	assert.Nil(t, ParseSearchItem([]byte(`"just a string"`)))
}

func TestParseVolumeFractionalRatingsCount(t *testing.T) {
	raw := []byte(`{
		"volumeInfo": {
			"title": "Oddly Counted",
			"averageRating": 4.7,
			"ratingsCount": 120.5
		}
	}`)

	book := ParseVolume("vol1", raw)
	require.NotNil(t, book)
	assert.Nil(t, book.RatingsCount)
	require.NotNil(t, book.AverageRating)
	assert.Equal(t, 4.7, *book.AverageRating)
}
