package service

import (
	"net/http"

	"go-marketplace/internal/biz"
	"go-marketplace/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-kratos/kratos/v2/log"
)

// CategoryService exposes category tree maintenance over HTTP.
type CategoryService struct {
	uc  *biz.CategoryUsecase
	log *log.Helper
}

func NewCategoryService(uc *biz.CategoryUsecase, logger log.Logger) *CategoryService {
	return &CategoryService{uc: uc, log: log.NewHelper(logger)}
}

func (s *CategoryService) Routes(r chi.Router) {
	r.Post("/categories", s.CreateCategory)
	r.Put("/categories/{id}/parent", s.MoveCategory)
}

// CreateCategory handles POST /categories
func (s *CategoryService) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err, s.log)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, err, s.log)
		return
	}
	parent, err := parseOptionalCategoryID(req.ParentID)
	if err != nil {
		writeError(w, r, err, s.log)
		return
	}

	c, err := s.uc.CreateCategory(r.Context(), req.Name, parent)
	if err != nil {
		writeError(w, r, err, s.log)
		return
	}

	writeJSON(w, http.StatusCreated, categoryFromDomain(c))
}

// MoveCategory handles PUT /categories/{id}/parent
func (s *CategoryService) MoveCategory(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCategoryID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, s.log)
		return
	}

	var req MoveCategoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err, s.log)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, err, s.log)
		return
	}
	parent, err := parseOptionalCategoryID(req.ParentID)
	if err != nil {
		writeError(w, r, err, s.log)
		return
	}

	c, err := s.uc.MoveCategory(r.Context(), id, parent)
	if err != nil {
		writeError(w, r, err, s.log)
		return
	}

	writeJSON(w, http.StatusOK, categoryFromDomain(c))
}
