package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"go-marketplace/internal/domain"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Compile-time interface check
var _ domain.ListingSearcher = (*ListingSearcher)(nil)

// Weights approximate the title/description weighting of the SQL search vector.
const (
	titleWeight       = 1.0
	descriptionWeight = 0.4
)

// ListingSearcher evaluates search criteria against committed listings with
// haversine distances.
type ListingSearcher struct {
	store *Store
}

// NewListingSearcher creates a searcher over store.
func NewListingSearcher(store *Store) *ListingSearcher {
	return &ListingSearcher{store: store}
}

type candidate struct {
	snapshot domain.ListingSnapshot
	distance *float64
	rank     float64
}

// Search filters, sorts and pages the committed listings.
func (s *ListingSearcher) Search(ctx context.Context, c domain.SearchCriteria) (*domain.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms := strings.Fields(strings.ToLower(c.Text))
	categories := lo.SliceToMap(c.CategoryIDs, func(id domain.CategoryID) (domain.CategoryID, struct{}) {
		return id, struct{}{}
	})

	s.store.mu.RLock()
	matches := make([]candidate, 0)
	for _, l := range s.store.listings {
		if cand, ok := match(c, terms, categories, l); ok {
			matches = append(matches, cand)
		}
	}
	s.store.mu.RUnlock()

	slices.SortFunc(matches, compareCandidates(c))

	result := &domain.SearchResult{
		Items:      []domain.SearchHit{},
		PageNumber: c.Page,
		PageSize:   c.PageSize,
	}

	total := len(matches)
	if c.IsSpatial() {
		// spatial queries never see rows past the cap
		matches = matches[:min(total, domain.MaxSpatialResults)]
	}
	result.TotalCount = min(total, c.CountCap())
	result.TotalCapped = total > c.CountCap()

	start := min(c.Offset(), len(matches))
	end := min(start+c.Limit(), len(matches))
	for _, cand := range matches[start:end] {
		l, err := domain.ReconstructListing(cand.snapshot)
		if err != nil {
			return nil, err
		}
		hit := domain.SearchHit{Listing: l, Rank: cand.rank}
		if cand.distance != nil {
			hit.DistanceKm = lo.ToPtr(domain.RoundKm(*cand.distance))
		}
		result.Items = append(result.Items, hit)
	}

	return result, nil
}

func match(c domain.SearchCriteria, terms []string, categories map[domain.CategoryID]struct{}, l domain.ListingSnapshot) (candidate, bool) {
	if l.DeletedAt != nil || l.Status != c.Status {
		return candidate{}, false
	}
	if c.Type != nil && l.Type != *c.Type {
		return candidate{}, false
	}

	switch {
	case len(categories) > 0:
		if _, ok := categories[l.CategoryID]; !ok {
			return candidate{}, false
		}
	case c.CategoryID != nil:
		if l.CategoryID != *c.CategoryID {
			return candidate{}, false
		}
	}

	if c.MinPrice != nil && l.Price.Amount().LessThan(*c.MinPrice) {
		return candidate{}, false
	}
	if c.MaxPrice != nil && l.Price.Amount().GreaterThan(*c.MaxPrice) {
		return candidate{}, false
	}

	if r := c.Radius; r != nil && l.Location.DistanceTo(r.Center) > r.Km {
		return candidate{}, false
	}
	if b := c.BoundingBox; b != nil && !b.Contains(l.Location) {
		return candidate{}, false
	}

	cand := candidate{snapshot: l}
	if origin := c.Origin(); origin != nil {
		cand.distance = lo.ToPtr(l.Location.DistanceTo(*origin))
	}

	if len(terms) > 0 {
		rank, ok := textRank(terms, l.Title, l.Description)
		if !ok {
			return candidate{}, false
		}
		cand.rank = rank
	}

	return cand, true
}

// textRank requires every term to appear in the title or the description.
func textRank(terms []string, title, description string) (float64, bool) {
	title, description = strings.ToLower(title), strings.ToLower(description)

	var rank float64
	for _, term := range terms {
		inTitle := strings.Count(title, term)
		inDescription := strings.Count(description, term)
		if inTitle == 0 && inDescription == 0 {
			return 0, false
		}
		rank += float64(inTitle)*titleWeight + float64(inDescription)*descriptionWeight
	}
	return rank, true
}

func compareCandidates(c domain.SearchCriteria) func(a, b candidate) int {
	primary := func(a, b candidate) int {
		switch c.SortBy {
		case domain.SortByPrice:
			return a.snapshot.Price.Amount().Cmp(b.snapshot.Price.Amount())
		case domain.SortByTitle:
			return cmp.Compare(a.snapshot.Title, b.snapshot.Title)
		case domain.SortByDistance:
			return cmp.Compare(lo.FromPtr(a.distance), lo.FromPtr(b.distance))
		case domain.SortByRelevance:
			return cmp.Compare(a.rank, b.rank)
		default:
			return a.snapshot.CreatedAt.Compare(b.snapshot.CreatedAt)
		}
	}

	return func(a, b candidate) int {
		order := primary(a, b)
		if c.SortDir == domain.SortDesc {
			order = -order
		}
		if order != 0 {
			return order
		}
		// id breaks ties so pages are stable
		ua, ub := uuid.UUID(a.snapshot.ID), uuid.UUID(b.snapshot.ID)
		return strings.Compare(ua.String(), ub.String())
	}
}
