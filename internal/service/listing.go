package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go-marketplace/internal/biz"
	"go-marketplace/internal/domain"
	"go-marketplace/pkg/serrors"

	"github.com/go-chi/chi/v5"
	"github.com/go-kratos/kratos/v2/log"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SellerIDHeader carries the authenticated seller, set by the gateway.
const SellerIDHeader = "X-Seller-ID"

// ListingService exposes the listing usecases over HTTP.
type ListingService struct {
	listings *biz.ListingUsecase
	search   *biz.SearchUsecase
	log      *log.Helper
}

func NewListingService(listings *biz.ListingUsecase, search *biz.SearchUsecase, logger log.Logger) *ListingService {
	return &ListingService{
		listings: listings,
		search:   search,
		log:      log.NewHelper(logger),
	}
}

// Routes mounts the listing endpoints on r.
func (s *ListingService) Routes(r chi.Router) {
	r.Route("/listings", func(r chi.Router) {
		r.Post("/free", s.CreateFreeListing)
		r.Post("/free-to-auction", s.CreateFreeToAuctionListing)
		r.Post("/forward-auction", s.CreateForwardAuctionListing)
		r.Post("/reverse-auction", s.CreateReverseAuctionListing)
		r.Post("/fixed-price", s.CreateFixedPriceListing)
		r.Get("/search", s.SearchListings)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetListing)
			r.Put("/", s.UpdateListing)
			r.Delete("/", s.DeleteListing)
			r.Post("/restore", s.RestoreListing)
			r.Post("/complete", s.CompleteListing)
			r.Post("/expire", s.ExpireListing)
			r.Post("/convert", s.ConvertListing)
		})
	})
}

// CreateFreeListing handles POST /listings/free
func (s *ListingService) CreateFreeListing(w http.ResponseWriter, r *http.Request) {
	s.create(w, r, domain.ListingTypeFree)
}

// CreateFreeToAuctionListing handles POST /listings/free-to-auction
func (s *ListingService) CreateFreeToAuctionListing(w http.ResponseWriter, r *http.Request) {
	s.create(w, r, domain.ListingTypeFreeToAuction)
}

// CreateForwardAuctionListing handles POST /listings/forward-auction
func (s *ListingService) CreateForwardAuctionListing(w http.ResponseWriter, r *http.Request) {
	s.create(w, r, domain.ListingTypeForwardAuction)
}

// CreateReverseAuctionListing handles POST /listings/reverse-auction
func (s *ListingService) CreateReverseAuctionListing(w http.ResponseWriter, r *http.Request) {
	s.create(w, r, domain.ListingTypeReverseAuction)
}

// CreateFixedPriceListing handles POST /listings/fixed-price
func (s *ListingService) CreateFixedPriceListing(w http.ResponseWriter, r *http.Request) {
	s.create(w, r, domain.ListingTypeFixedPrice)
}

func (s *ListingService) create(w http.ResponseWriter, r *http.Request, t domain.ListingType) {
	requester, err := requesterFrom(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req CreateListingRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.validate(t); err != nil {
		s.fail(w, r, err)
		return
	}
	cmd, err := req.command(requester)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	listing, err := s.createByType(r.Context(), t, req, cmd)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Location", "/listings/"+listing.ID().String())
	writeJSON(w, http.StatusCreated, listingFromDomain(listing))
}

func (s *ListingService) createByType(ctx context.Context, t domain.ListingType, req CreateListingRequest, cmd biz.CreateListingCommand) (*domain.Listing, error) {
	switch t {
	case domain.ListingTypeFree:
		return s.listings.CreateFreeListing(ctx, cmd)
	case domain.ListingTypeFreeToAuction:
		return s.listings.CreateFreeToAuctionListing(ctx, cmd, req.duration())
	case domain.ListingTypeForwardAuction:
		starting, err := req.StartingPrice.toDomain()
		if err != nil {
			return nil, err
		}
		reserve, err := optionalMoney(req.ReservePrice)
		if err != nil {
			return nil, err
		}
		buyNow, err := optionalMoney(req.BuyNowPrice)
		if err != nil {
			return nil, err
		}
		return s.listings.CreateForwardAuctionListing(ctx, cmd, starting, reserve, buyNow, req.duration())
	case domain.ListingTypeReverseAuction:
		maxPrice, err := req.MaxPrice.toDomain()
		if err != nil {
			return nil, err
		}
		return s.listings.CreateReverseAuctionListing(ctx, cmd, maxPrice, req.duration())
	case domain.ListingTypeFixedPrice:
		price, err := req.Price.toDomain()
		if err != nil {
			return nil, err
		}
		return s.listings.CreateFixedPriceListing(ctx, cmd, price)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidListingType, t)
	}
}

// GetListing handles GET /listings/{id}
func (s *ListingService) GetListing(w http.ResponseWriter, r *http.Request) {
	id, err := listingIDFrom(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	listing, err := s.listings.GetListing(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listingFromDomain(listing))
}

// SearchListings handles GET /listings/search
func (s *ListingService) SearchListings(w http.ResponseWriter, r *http.Request) {
	params, err := searchParams(r.URL.Query())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.search.Search(r.Context(), params)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchFromDomain(result))
}

// UpdateListing handles PUT /listings/{id}
func (s *ListingService) UpdateListing(w http.ResponseWriter, r *http.Request) {
	id, requester, err := listingAndRequester(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req UpdateListingRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	cmd, err := req.command(id, requester)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	listing, err := s.listings.UpdateListing(r.Context(), cmd)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listingFromDomain(listing))
}

// DeleteListing handles DELETE /listings/{id}
func (s *ListingService) DeleteListing(w http.ResponseWriter, r *http.Request) {
	id, requester, err := listingAndRequester(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.listings.DeleteListing(r.Context(), id, requester); err != nil {
		s.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RestoreListing handles POST /listings/{id}/restore
func (s *ListingService) RestoreListing(w http.ResponseWriter, r *http.Request) {
	s.ownerTransition(w, r, s.listings.RestoreListing)
}

// CompleteListing handles POST /listings/{id}/complete
func (s *ListingService) CompleteListing(w http.ResponseWriter, r *http.Request) {
	s.ownerTransition(w, r, s.listings.MarkListingCompleted)
}

func (s *ListingService) ownerTransition(
	w http.ResponseWriter,
	r *http.Request,
	transition func(context.Context, domain.ListingID, domain.SellerID) (*domain.Listing, error),
) {
	id, requester, err := listingAndRequester(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	listing, err := transition(r.Context(), id, requester)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listingFromDomain(listing))
}

// ExpireListing handles POST /listings/{id}/expire, called by the expiry sweep.
func (s *ListingService) ExpireListing(w http.ResponseWriter, r *http.Request) {
	id, err := listingIDFrom(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	listing, err := s.listings.ExpireListing(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listingFromDomain(listing))
}

// ConvertListing handles POST /listings/{id}/convert, called by the bidding
// service when a free-to-auction listing receives its first bid.
func (s *ListingService) ConvertListing(w http.ResponseWriter, r *http.Request) {
	id, err := listingIDFrom(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req ConvertListingRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	firstBid, err := req.FirstBid.toDomain()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	listing, err := s.listings.ConvertToForwardAuction(r.Context(), id, firstBid)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listingFromDomain(listing))
}

func (s *ListingService) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, err, s.log)
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return serrors.Wrap(serrors.ErrBadRequest, err, "request body must be valid JSON")
	}
	return nil
}

func requesterFrom(r *http.Request) (domain.SellerID, error) {
	id, err := domain.ParseSellerID(r.Header.Get(SellerIDHeader))
	if err != nil {
		return domain.SellerID{}, errMissingRequester
	}
	return id, nil
}

func listingIDFrom(r *http.Request) (domain.ListingID, error) {
	return domain.ParseListingID(chi.URLParam(r, "id"))
}

func listingAndRequester(r *http.Request) (domain.ListingID, domain.SellerID, error) {
	requester, err := requesterFrom(r)
	if err != nil {
		return domain.ListingID{}, domain.SellerID{}, err
	}
	id, err := listingIDFrom(r)
	if err != nil {
		return domain.ListingID{}, domain.SellerID{}, err
	}
	return id, requester, nil
}

// searchParams reads the query string. Range and consistency checks happen
// in domain.NewSearchCriteria; only the number formats are checked here.
func searchParams(q url.Values) (domain.SearchParams, error) {
	p := domain.SearchParams{
		Text:       q.Get("text"),
		CategoryID: q.Get("categoryId"),
		Type:       q.Get("type"),
		Status:     q.Get("status"),
		MinPrice:   q.Get("minPrice"),
		MaxPrice:   q.Get("maxPrice"),
		SortBy:     q.Get("sortBy"),
		SortDir:    q.Get("sortDir"),
	}

	errs := validation.Errors{}
	floats := map[string]**float64{
		"lat":      &p.Latitude,
		"lon":      &p.Longitude,
		"radiusKm": &p.RadiusKm,
		"minLat":   &p.MinLat,
		"minLon":   &p.MinLon,
		"maxLat":   &p.MaxLat,
		"maxLon":   &p.MaxLon,
	}
	for name, dst := range floats {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs[name] = errors.New("must be a number")
			continue
		}
		*dst = &f
	}

	ints := map[string]*int{"page": &p.Page, "pageSize": &p.PageSize}
	for name, dst := range ints {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs[name] = errors.New("must be an integer")
			continue
		}
		*dst = n
	}

	if len(errs) > 0 {
		return p, errs
	}
	return p, nil
}
