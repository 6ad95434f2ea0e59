package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/food-catalog-api/internal/app/dto"
	"github.com/mrops-br/food-catalog-api/internal/app/service"
	"github.com/mrops-br/food-catalog-api/internal/domain"
	"github.com/mrops-br/food-catalog-api/internal/infrastructure/http/response"
)

const maxBodyBytes = 1 << 20

var errInvalidType = errors.New(`invalid type, allowed types are "fruit" and "vegetable"`)

// FoodItemHandler handles HTTP requests for food items
type FoodItemHandler struct {
	foodItems *service.FoodItemService
	batches   *service.BatchProcessor
	search    *service.SearchService
	logger    *slog.Logger
}

// NewFoodItemHandler creates a new food item handler
func NewFoodItemHandler(
	foodItems *service.FoodItemService,
	batches *service.BatchProcessor,
	search *service.SearchService,
	logger *slog.Logger,
) *FoodItemHandler {
	return &FoodItemHandler{
		foodItems: foodItems,
		batches:   batches,
		search:    search,
		logger:    logger,
	}
}

// RegisterRoutes mounts every food item endpoint on r
func (h *FoodItemHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/process-fooditems", h.ProcessFoodItems)

	r.Route("/api/fooditems", func(r chi.Router) {
		r.Get("/", h.ListFoodItems)
		r.Post("/add", h.AddFoodItem)
		r.Post("/add/{type}", h.AddFoodItemsOfType)
		r.Get("/search", h.SearchFoodItems)
		r.Get("/search/{type}", h.SearchFoodItems)
		r.Delete("/remove/{id}", h.RemoveFoodItem)
		r.Get("/{id}", h.GetFoodItem)
	})
}

// ProcessFoodItems handles POST /api/process-fooditems
func (h *FoodItemHandler) ProcessFoodItems(w http.ResponseWriter, r *http.Request) {
	h.processBatch(w, r, nil)
}

// AddFoodItemsOfType handles POST /api/fooditems/add/{type}
func (h *FoodItemHandler) AddFoodItemsOfType(w http.ResponseWriter, r *http.Request) {
	category, ok := domain.ParseCategory(chi.URLParam(r, "type"))
	if !ok {
		response.Error(w, http.StatusBadRequest, errInvalidType)
		return
	}
	h.processBatch(w, r, &category)
}

func (h *FoodItemHandler) processBatch(w http.ResponseWriter, r *http.Request, forced *domain.Category) {
	var rawItems []domain.RawFoodItem
	if !h.decode(w, r, &rawItems) {
		return
	}

	result, err := h.batches.Process(r.Context(), rawItems, forced)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	status := http.StatusCreated
	if !result.Successful {
		status = http.StatusUnprocessableEntity
	}
	h.respond(w, r, status, dto.ToBatchResponse(result))
}

// AddFoodItem handles POST /api/fooditems/add
func (h *FoodItemHandler) AddFoodItem(w http.ResponseWriter, r *http.Request) {
	var raw domain.RawFoodItem
	if !h.decode(w, r, &raw) {
		return
	}

	item, err := h.foodItems.AddFoodItem(r.Context(), raw)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusCreated, dto.ToFoodItemResponse(item, domain.UnitGrams))
}

// ListFoodItems handles GET /api/fooditems
func (h *FoodItemHandler) ListFoodItems(w http.ResponseWriter, r *http.Request) {
	groups, err := h.foodItems.ListByCategory(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, dto.ToGroupedResponse(groups, outputUnit(r)))
}

// GetFoodItem handles GET /api/fooditems/{id}
func (h *FoodItemHandler) GetFoodItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.foodItems.GetFoodItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, dto.ToFoodItemResponse(item, outputUnit(r)))
}

// RemoveFoodItem handles DELETE /api/fooditems/remove/{id}
func (h *FoodItemHandler) RemoveFoodItem(w http.ResponseWriter, r *http.Request) {
	removed, err := h.foodItems.DeleteFoodItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !removed {
		response.Error(w, http.StatusNotFound, domain.ErrFoodItemNotFound)
		return
	}

	response.Message(w, http.StatusOK, "food item deleted successfully")
}

// SearchFoodItems handles GET /api/fooditems/search and /search/{type}
func (h *FoodItemHandler) SearchFoodItems(w http.ResponseWriter, r *http.Request) {
	typ := chi.URLParam(r, "type")

	params := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	results, err := h.search.Search(r.Context(), typ, params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	unit := outputUnit(r)
	if typ == "" {
		h.respond(w, r, http.StatusOK, dto.ToGroupedResponse(results, unit))
		return
	}

	category, _ := domain.ParseCategory(typ)
	h.respond(w, r, http.StatusOK, dto.ToCategoryResponse(category, results[category], unit))
}

// decode reads a JSON body keeping numbers as json.Number. It writes the
// error response itself and reports whether decoding succeeded.
func (h *FoodItemHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	err := dec.Decode(v)
	if err == nil && dec.More() {
		err = errors.New("unexpected data after JSON body")
	}
	if err == nil {
		return true
	}

	h.logger.WarnContext(r.Context(), "Failed to decode request body",
		slog.String("error", err.Error()),
	)

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		response.Error(w, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
	case errors.Is(err, io.EOF):
		response.Error(w, http.StatusBadRequest, errors.New("request body is empty"))
	default:
		response.Error(w, http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err))
	}
	return false
}

func (h *FoodItemHandler) respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	if err := response.JSON(w, status, data); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to write response",
			slog.String("error", err.Error()),
		)
	}
}

func (h *FoodItemHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case domain.IsValidationError(err):
		response.Error(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, domain.ErrInvalidArgument):
		response.Error(w, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrFoodItemNotFound):
		response.Error(w, http.StatusNotFound, err)
	default:
		h.logger.ErrorContext(r.Context(), "Request failed",
			slog.String("error", err.Error()),
		)
		response.Error(w, http.StatusInternalServerError, err)
	}
}

func outputUnit(r *http.Request) string {
	if unit := r.URL.Query().Get("unit"); unit != "" {
		return unit
	}
	return domain.UnitGrams
}
