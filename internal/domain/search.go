package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// Search limits.
const (
	DefaultPageSize           = 20
	MaxPageSize               = 100
	MaxRadiusKm               = 100.0
	MaxBoundingBoxSpanDegrees = 10.0
	MaxSpatialResults         = 1000
	MaxTotalCount             = 10000
	MaxPage                   = MaxTotalCount
	MaxSearchTextLength       = 200
)

// SortKey selects the result ordering.
type SortKey string

const (
	SortByCreated   SortKey = "created"
	SortByPrice     SortKey = "price"
	SortByDistance  SortKey = "distance"
	SortByTitle     SortKey = "title"
	SortByRelevance SortKey = "relevance"
)

// SortDirection is asc or desc.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// BoundingBox is an axis-aligned lat/lon rectangle.
type BoundingBox struct {
	MinLat, MinLon, MaxLat, MaxLon float64
}

// Contains reports whether loc lies inside the box, edges included.
func (b BoundingBox) Contains(loc Location) bool {
	return loc.Latitude() >= b.MinLat && loc.Latitude() <= b.MaxLat &&
		loc.Longitude() >= b.MinLon && loc.Longitude() <= b.MaxLon
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Location {
	return MustLocation((b.MinLat+b.MaxLat)/2, (b.MinLon+b.MaxLon)/2)
}

// Radius is a circle around a point.
type Radius struct {
	Center Location
	Km     float64
}

// SearchParams is the raw, unvalidated input of a search. Zero values mean "not given".
type SearchParams struct {
	Text       string
	CategoryID string
	Type       string
	Status     string
	MinPrice   string
	MaxPrice   string
	Latitude   *float64
	Longitude  *float64
	RadiusKm   *float64
	MinLat     *float64
	MinLon     *float64
	MaxLat     *float64
	MaxLon     *float64
	SortBy     string
	SortDir    string
	Page       int
	PageSize   int
}

// SearchCriteria is a validated, normalized search.
type SearchCriteria struct {
	Text        string
	CategoryID  *CategoryID
	// CategoryIDs holds CategoryID and its descendants once expanded by the query engine.
	CategoryIDs []CategoryID
	Type        *ListingType
	Status      ListingStatus
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	Radius      *Radius
	BoundingBox *BoundingBox
	SortBy      SortKey
	SortDir     SortDirection
	Page        int
	PageSize    int
}

// NewSearchCriteria validates p and fills in defaults.
func NewSearchCriteria(p SearchParams) (SearchCriteria, error) {
	c := SearchCriteria{
		Text:     SanitizeSearchText(p.Text),
		Status:   ListingStatusActive,
		SortDir:  SortDesc,
		Page:     p.Page,
		PageSize: p.PageSize,
	}

	if err := validation.ValidateStruct(&p,
		validation.Field(&p.Page, validation.Min(0), validation.Max(MaxPage)),
		validation.Field(&p.PageSize, validation.Min(0), validation.Max(MaxPageSize)),
		validation.Field(&p.RadiusKm, validation.Max(MaxRadiusKm)),
	); err != nil {
		return SearchCriteria{}, fmt.Errorf("%w: %v", ErrInvalidSearch, err)
	}
	if p.RadiusKm != nil && !(*p.RadiusKm > 0) {
		return SearchCriteria{}, fmt.Errorf("%w: radiusKm must be positive", ErrInvalidSearch)
	}
	if c.Page == 0 {
		c.Page = 1
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	// no page starts past the last row the engine counts
	if c.Offset() >= MaxTotalCount {
		return SearchCriteria{}, fmt.Errorf("%w: page %d of size %d starts past result %d", ErrInvalidSearch, c.Page, c.PageSize, MaxTotalCount)
	}

	if p.CategoryID != "" {
		id, err := ParseCategoryID(p.CategoryID)
		if err != nil {
			return SearchCriteria{}, fmt.Errorf("%w: categoryId: %v", ErrInvalidSearch, err)
		}
		c.CategoryID = &id
	}
	if p.Type != "" {
		t, err := ParseListingType(p.Type)
		if err != nil {
			return SearchCriteria{}, fmt.Errorf("%w: %v", ErrInvalidSearch, err)
		}
		c.Type = &t
	}
	if p.Status != "" {
		s, err := ParseListingStatus(p.Status)
		if err != nil {
			return SearchCriteria{}, fmt.Errorf("%w: %v", ErrInvalidSearch, err)
		}
		c.Status = s
	}

	var err error
	if c.MinPrice, err = parsePriceBound("minPrice", p.MinPrice); err != nil {
		return SearchCriteria{}, err
	}
	if c.MaxPrice, err = parsePriceBound("maxPrice", p.MaxPrice); err != nil {
		return SearchCriteria{}, err
	}
	if c.MinPrice != nil && c.MaxPrice != nil && c.MinPrice.GreaterThan(*c.MaxPrice) {
		return SearchCriteria{}, fmt.Errorf("%w: minPrice is greater than maxPrice", ErrInvalidSearch)
	}

	if err := c.applySpatial(p); err != nil {
		return SearchCriteria{}, err
	}
	if err := c.applySort(p); err != nil {
		return SearchCriteria{}, err
	}

	return c, nil
}

func parsePriceBound(name, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a number", ErrInvalidSearch, name)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %s must not be negative", ErrInvalidSearch, name)
	}
	return &d, nil
}

func (c *SearchCriteria) applySpatial(p SearchParams) error {
	hasPoint := p.Latitude != nil || p.Longitude != nil
	if hasPoint {
		if p.Latitude == nil || p.Longitude == nil {
			return fmt.Errorf("%w: lat and lon must be given together", ErrInvalidSearch)
		}
		center, err := NewLocation(*p.Latitude, *p.Longitude)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSearch, err)
		}
		if p.RadiusKm == nil {
			return fmt.Errorf("%w: radiusKm is required with lat and lon", ErrInvalidSearch)
		}
		c.Radius = &Radius{Center: center, Km: *p.RadiusKm}
	} else if p.RadiusKm != nil {
		return fmt.Errorf("%w: radiusKm requires lat and lon", ErrInvalidSearch)
	}

	corners := []*float64{p.MinLat, p.MinLon, p.MaxLat, p.MaxLon}
	given := 0
	for _, v := range corners {
		if v != nil {
			given++
		}
	}
	switch {
	case given == 0:
		return nil
	case given != len(corners):
		return fmt.Errorf("%w: bounding box needs minLat, minLon, maxLat and maxLon", ErrInvalidSearch)
	case c.Radius != nil:
		return fmt.Errorf("%w: radius and bounding box are mutually exclusive", ErrInvalidSearch)
	}

	box := BoundingBox{MinLat: *p.MinLat, MinLon: *p.MinLon, MaxLat: *p.MaxLat, MaxLon: *p.MaxLon}
	if _, err := NewLocation(box.MinLat, box.MinLon); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSearch, err)
	}
	if _, err := NewLocation(box.MaxLat, box.MaxLon); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSearch, err)
	}
	if box.MinLat > box.MaxLat || box.MinLon > box.MaxLon {
		return fmt.Errorf("%w: bounding box minimum exceeds maximum", ErrInvalidSearch)
	}
	if box.MaxLat-box.MinLat > MaxBoundingBoxSpanDegrees || box.MaxLon-box.MinLon > MaxBoundingBoxSpanDegrees {
		return fmt.Errorf("%w: bounding box spans more than %.0f degrees", ErrInvalidSearch, MaxBoundingBoxSpanDegrees)
	}
	c.BoundingBox = &box

	return nil
}

func (c *SearchCriteria) applySort(p SearchParams) error {
	switch SortDirection(strings.ToLower(p.SortDir)) {
	case "":
	case SortAsc:
		c.SortDir = SortAsc
	case SortDesc:
		c.SortDir = SortDesc
	default:
		return fmt.Errorf("%w: sortDir must be asc or desc", ErrInvalidSearch)
	}

	key := SortKey(strings.ToLower(p.SortBy))
	switch key {
	case "":
		c.SortBy = SortByCreated
		return nil
	case SortByCreated, SortByTitle, SortByPrice:
	case SortByDistance:
		if !c.IsSpatial() {
			return fmt.Errorf("%w: distance sort requires a radius or bounding box", ErrInvalidSearch)
		}
	case SortByRelevance:
		if c.Text == "" {
			return fmt.Errorf("%w: relevance sort requires search text", ErrInvalidSearch)
		}
	default:
		return fmt.Errorf("%w: unknown sortBy %q", ErrInvalidSearch, p.SortBy)
	}
	c.SortBy = key

	// Nearest first unless asked otherwise.
	if p.SortDir == "" && key == SortByDistance {
		c.SortDir = SortAsc
	}

	return nil
}

// IsSpatial reports whether a radius or bounding box filter is set.
func (c SearchCriteria) IsSpatial() bool {
	return c.Radius != nil || c.BoundingBox != nil
}

// Origin is the point distances are measured from: the radius center or the box center.
func (c SearchCriteria) Origin() *Location {
	switch {
	case c.Radius != nil:
		loc := c.Radius.Center
		return &loc
	case c.BoundingBox != nil:
		loc := c.BoundingBox.Center()
		return &loc
	default:
		return nil
	}
}

// Offset is the number of rows skipped before the current page.
func (c SearchCriteria) Offset() int {
	return (c.Page - 1) * c.PageSize
}

// Limit is the number of rows to fetch for the current page. Spatial searches
// never return rows past MaxSpatialResults, so pages beyond the cap are empty.
func (c SearchCriteria) Limit() int {
	if !c.IsSpatial() {
		return c.PageSize
	}
	remaining := MaxSpatialResults - c.Offset()
	if remaining <= 0 {
		return 0
	}
	return min(c.PageSize, remaining)
}

// CountCap is the largest total the query engine counts up to.
func (c SearchCriteria) CountCap() int {
	if c.IsSpatial() {
		return MaxSpatialResults
	}
	return MaxTotalCount
}

// CacheKey is a stable digest of every field that affects the result.
func (c SearchCriteria) CacheKey() string {
	var b strings.Builder
	b.WriteString("text=" + c.Text)
	if c.CategoryID != nil {
		b.WriteString("|cat=" + c.CategoryID.String())
	}
	if c.Type != nil {
		b.WriteString("|type=" + c.Type.String())
	}
	b.WriteString("|status=" + c.Status.String())
	if c.MinPrice != nil {
		b.WriteString("|min=" + c.MinPrice.String())
	}
	if c.MaxPrice != nil {
		b.WriteString("|max=" + c.MaxPrice.String())
	}
	if c.Radius != nil {
		b.WriteString("|r=" + formatFloat(c.Radius.Center.Latitude()) + "," +
			formatFloat(c.Radius.Center.Longitude()) + "," + formatFloat(c.Radius.Km))
	}
	if bb := c.BoundingBox; bb != nil {
		b.WriteString("|bb=" + formatFloat(bb.MinLat) + "," + formatFloat(bb.MinLon) + "," +
			formatFloat(bb.MaxLat) + "," + formatFloat(bb.MaxLon))
	}
	b.WriteString("|sort=" + string(c.SortBy) + "," + string(c.SortDir))
	b.WriteString("|page=" + strconv.Itoa(c.Page) + "," + strconv.Itoa(c.PageSize))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var searchTextReplacer = strings.NewReplacer(
	"--", " ",
	"/*", " ",
	"*/", " ",
	";", " ",
	"'", " ",
	"\"", " ",
	"\\", " ",
)

// SanitizeSearchText strips control characters and SQL meta characters,
// collapses whitespace and truncates to MaxSearchTextLength runes.
func SanitizeSearchText(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	s = searchTextReplacer.Replace(s)
	s = strings.Join(strings.Fields(s), " ")

	if utf8.RuneCountInString(s) > MaxSearchTextLength {
		s = strings.TrimSpace(string([]rune(s)[:MaxSearchTextLength]))
	}
	return s
}

// SearchHit is one listing in a result page.
type SearchHit struct {
	Listing *Listing
	// DistanceKm is set when the search had a spatial origin.
	DistanceKm *float64
	// Rank is the text relevance; zero without search text.
	Rank float64
}

// SearchResult is one page of listings.
type SearchResult struct {
	Items       []SearchHit
	TotalCount  int
	TotalCapped bool
	PageNumber  int
	PageSize    int
}

// HasNextPage reports whether a later page can contain rows.
func (r *SearchResult) HasNextPage() bool {
	return r.PageNumber*r.PageSize < r.TotalCount
}

// RoundKm rounds a distance to meters for presentation.
func RoundKm(km float64) float64 {
	return math.Round(km*1000) / 1000
}
