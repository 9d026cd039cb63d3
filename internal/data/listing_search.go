package data

import (
	"context"
	"database/sql"
	"fmt"

	"go-marketplace/internal/domain"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Compile-time interface check
var _ domain.ListingSearcher = (*listingSearcher)(nil)

const textSearchConfig = "english"

// pgSearchRow is a listing row plus the computed ranking columns.
type pgSearchRow struct {
	pgListing
	DistanceM sql.NullFloat64 `db:"distance_m"`
	Rank      float64         `db:"rank"`
}

// listingSearcher runs discovery queries with Postgres full-text search and PostGIS.
type listingSearcher struct {
	data *Data
	log  *log.Helper
}

// NewListingSearcher creates a new listing searcher.
func NewListingSearcher(data *Data, logger log.Logger) *listingSearcher {
	return &listingSearcher{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Search runs the page query and the capped count query concurrently.
// Queries never join a surrounding transaction.
func (s *listingSearcher) Search(ctx context.Context, c domain.SearchCriteria) (*domain.SearchResult, error) {
	result := &domain.SearchResult{
		Items:      []domain.SearchHit{},
		PageNumber: c.Page,
		PageSize:   c.PageSize,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hits, err := s.page(gctx, c)
		if err != nil {
			return err
		}
		result.Items = hits
		return nil
	})

	g.Go(func() error {
		total, capped, err := s.count(gctx, c)
		if err != nil {
			return err
		}
		result.TotalCount = total
		result.TotalCapped = capped
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *listingSearcher) filtered(c domain.SearchCriteria) *goqu.SelectDataset {
	return s.data.db.From(listingsTable).
		Prepared(true).
		Where(searchConditions(c)...)
}

func (s *listingSearcher) page(ctx context.Context, c domain.SearchCriteria) ([]domain.SearchHit, error) {
	limit := c.Limit()
	if limit == 0 {
		return []domain.SearchHit{}, nil
	}

	ds := s.filtered(c).
		Select(&pgListing{}).
		SelectAppend(distanceExpression(c).As("distance_m"), rankExpression(c).As("rank")).
		Order(searchOrder(c)...).
		Offset(uint(c.Offset())).
		Limit(uint(limit))

	var rows []pgSearchRow
	if err := ds.ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not search listings: %w", err)
	}

	hits := make([]domain.SearchHit, 0, len(rows))
	for _, row := range rows {
		l, err := row.ToDomain()
		if err != nil {
			return nil, err
		}
		hit := domain.SearchHit{Listing: l, Rank: row.Rank}
		if row.DistanceM.Valid {
			hit.DistanceKm = lo.ToPtr(domain.RoundKm(row.DistanceM.Float64 / 1000))
		}
		hits = append(hits, hit)
	}

	return hits, nil
}

// count counts matches up to the cap plus one so a larger total is reported as capped.
func (s *listingSearcher) count(ctx context.Context, c domain.SearchCriteria) (int, bool, error) {
	limit := c.CountCap()
	inner := s.filtered(c).
		Select(goqu.L("1")).
		Limit(uint(limit + 1))

	var n int
	if _, err := s.data.db.From(inner.As("matches")).
		Prepared(true).
		Select(goqu.COUNT(goqu.Star())).
		ScanValContext(ctx, &n); err != nil {
		return 0, false, fmt.Errorf("could not count listings: %w", err)
	}

	if n > limit {
		return limit, true, nil
	}
	return n, false, nil
}

func searchConditions(c domain.SearchCriteria) []exp.Expression {
	conds := []exp.Expression{
		goqu.I("deleted_at").IsNull(),
		goqu.I("status").Eq(c.Status.String()),
	}

	if c.Type != nil {
		conds = append(conds, goqu.I("listing_type").Eq(c.Type.String()))
	}

	switch {
	case len(c.CategoryIDs) > 0:
		ids := lo.Map(c.CategoryIDs, func(id domain.CategoryID, _ int) uuid.UUID { return uuid.UUID(id) })
		conds = append(conds, goqu.I("category_id").In(ids))
	case c.CategoryID != nil:
		conds = append(conds, goqu.I("category_id").Eq(uuid.UUID(*c.CategoryID)))
	}

	if c.MinPrice != nil {
		conds = append(conds, goqu.I("price_amount").Gte(c.MinPrice.String()))
	}
	if c.MaxPrice != nil {
		conds = append(conds, goqu.I("price_amount").Lte(c.MaxPrice.String()))
	}

	if c.Text != "" {
		conds = append(conds, goqu.L("search_vector @@ websearch_to_tsquery(?::regconfig, ?)", textSearchConfig, c.Text))
	}

	if r := c.Radius; r != nil {
		conds = append(conds, goqu.L(
			"ST_DWithin(location, ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography, ?)",
			r.Center.Longitude(), r.Center.Latitude(), r.Km*1000,
		))
	}
	if b := c.BoundingBox; b != nil {
		conds = append(conds, goqu.L(
			"location && ST_MakeEnvelope(?, ?, ?, ?, 4326)::geography",
			b.MinLon, b.MinLat, b.MaxLon, b.MaxLat,
		))
	}

	return conds
}

func distanceExpression(c domain.SearchCriteria) exp.LiteralExpression {
	origin := c.Origin()
	if origin == nil {
		return goqu.L("NULL::double precision")
	}
	return goqu.L(
		"ST_Distance(location, ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography)",
		origin.Longitude(), origin.Latitude(),
	)
}

func rankExpression(c domain.SearchCriteria) exp.LiteralExpression {
	if c.Text == "" {
		return goqu.L("0::real")
	}
	return goqu.L("ts_rank(search_vector, websearch_to_tsquery(?::regconfig, ?))", textSearchConfig, c.Text)
}

func searchOrder(c domain.SearchCriteria) []exp.OrderedExpression {
	dir := func(e exp.Orderable) exp.OrderedExpression {
		if c.SortDir == domain.SortAsc {
			return e.Asc()
		}
		return e.Desc()
	}

	var primary exp.OrderedExpression
	switch c.SortBy {
	case domain.SortByPrice:
		primary = dir(goqu.I("price_amount"))
	case domain.SortByTitle:
		primary = dir(goqu.I("title"))
	case domain.SortByDistance:
		primary = dir(goqu.I("distance_m"))
	case domain.SortByRelevance:
		primary = dir(goqu.I("rank"))
	default:
		primary = dir(goqu.I("created_at"))
	}

	// id breaks ties so pages are stable
	return []exp.OrderedExpression{primary, goqu.I("id").Asc()}
}
