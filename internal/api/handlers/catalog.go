package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/hbnb-api/internal/api/httpx"
	"github.com/baharkarakas/hbnb-api/internal/middleware"
	"github.com/baharkarakas/hbnb-api/internal/models"
	"github.com/baharkarakas/hbnb-api/internal/services"
	"github.com/baharkarakas/hbnb-api/internal/validate"
)

// CatalogHandler exposes the users, places, reviews, amenities and audit
// resources.
type CatalogHandler struct {
	Catalog *services.Catalog
}

func NewCatalogHandler(c *services.Catalog) *CatalogHandler {
	return &CatalogHandler{Catalog: c}
}

func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	httpx.WriteServiceError(w, err, !middleware.ActorFrom(r.Context()).Authenticated())
}

type message struct {
	Message string `json:"message"`
}

// ---------- users ----------

func (h *CatalogHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Catalog.ListUsers(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *CatalogHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.Catalog.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *CatalogHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in models.NewUser
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.WriteBadRequest(w, err)
		return
	}
	u, err := h.Catalog.CreateUser(r.Context(), middleware.ActorFrom(r.Context()), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u)
}

func (h *CatalogHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch models.UserPatch
	if err := httpx.DecodeJSON(w, r, &patch); err != nil {
		httpx.WriteBadRequest(w, err)
		return
	}
	u, err := h.Catalog.UpdateUser(r.Context(), middleware.ActorFrom(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

// ---------- places ----------

// queryFloat parses an optional numeric query parameter.
func queryFloat(r *http.Request, key string, errs *validate.Errs) *float64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		errs.Add(&validate.ErrField{Field: key, Msg: "must be a number"})
		return nil
	}
	return &f
}

func (h *CatalogHandler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	var errs validate.Errs
	filter := models.PlaceFilter{
		Query:    r.URL.Query().Get("q"),
		MinPrice: queryFloat(r, "min_price", &errs),
		MaxPrice: queryFloat(r, "max_price", &errs),
	}
	if len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", "validation failed", errs)
		return
	}
	places, err := h.Catalog.ListPlaces(r.Context(), filter)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, places)
}

func (h *CatalogHandler) GetPlace(w http.ResponseWriter, r *http.Request) {
	d, err := h.Catalog.GetPlace(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

func (h *CatalogHandler) ListPlaceReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Catalog.ListPlaceReviews(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, reviews)
}

func (h *CatalogHandler) CreatePlace(w http.ResponseWriter, r *http.Request) {
	var in models.NewPlace
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.WriteBadRequest(w, err)
		return
	}
	d, err := h.Catalog.CreatePlace(r.Context(), middleware.ActorFrom(r.Context()), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, d)
}

func (h *CatalogHandler) UpdatePlace(w http.ResponseWriter, r *http.Request) {
	var patch models.PlacePatch
	if err := httpx.DecodeJSON(w, r, &patch); err != nil {
		httpx.WriteBadRequest(w, err)
		return
	}
	d, err := h.Catalog.UpdatePlace(r.Context(), middleware.ActorFrom(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

func (h *CatalogHandler) DeletePlace(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeletePlace(r.Context(), middleware.ActorFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, message{"place deleted"})
}

// ---------- reviews ----------

func (h *CatalogHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Catalog.ListReviews(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, reviews)
}

func (h *CatalogHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	rv, err := h.Catalog.GetReview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rv)
}

func (h *CatalogHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var in models.NewReview
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.WriteBadRequest(w, err)
		return
	}
	rv, err := h.Catalog.CreateReview(r.Context(), middleware.ActorFrom(r.Context()), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rv)
}

func (h *CatalogHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	var patch models.ReviewPatch
	if err := httpx.DecodeJSON(w, r, &patch); err != nil {
		httpx.WriteBadRequest(w, err)
		return
	}
	rv, err := h.Catalog.UpdateReview(r.Context(), middleware.ActorFrom(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rv)
}

func (h *CatalogHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteReview(r.Context(), middleware.ActorFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, message{"review deleted"})
}

// ---------- amenities ----------

func (h *CatalogHandler) ListAmenities(w http.ResponseWriter, r *http.Request) {
	out, err := h.Catalog.ListAmenities(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) GetAmenity(w http.ResponseWriter, r *http.Request) {
	a, err := h.Catalog.GetAmenity(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}

func (h *CatalogHandler) CreateAmenity(w http.ResponseWriter, r *http.Request) {
	var in models.NewAmenity
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.WriteBadRequest(w, err)
		return
	}
	a, err := h.Catalog.CreateAmenity(r.Context(), middleware.ActorFrom(r.Context()), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, a)
}

func (h *CatalogHandler) UpdateAmenity(w http.ResponseWriter, r *http.Request) {
	var patch models.AmenityPatch
	if err := httpx.DecodeJSON(w, r, &patch); err != nil {
		httpx.WriteBadRequest(w, err)
		return
	}
	a, err := h.Catalog.UpdateAmenity(r.Context(), middleware.ActorFrom(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}

// ---------- audit ----------

func (h *CatalogHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "bad_request", "limit must be an integer", nil)
			return
		}
		if ef := validate.MinInt("limit", int64(n), 1); ef != nil {
			httpx.WriteError(w, http.StatusBadRequest, "validation_error", "validation failed", validate.Errs{*ef})
			return
		}
		limit = n
	}
	logs, err := h.Catalog.ListAuditLogs(r.Context(), middleware.ActorFrom(r.Context()), limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, logs)
}
