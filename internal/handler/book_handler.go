package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/shelfmark/internal/service"
)

// BookHandler handles book CRUD requests. All routes require a valid
// bearer token; the auth middleware runs before these handlers.
type BookHandler struct {
	bookService *service.BookService
	logger      zerolog.Logger
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(bookService *service.BookService, logger zerolog.Logger) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		logger:      logger.With().Str("handler", "book").Logger(),
	}
}

// RegisterRoutes registers book routes on an authenticated router.
func (h *BookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/books", h.handleCreate)
	r.Get("/books", h.handleList)
	r.Get("/books/{id}", h.handleGet)
	r.Put("/books/{id}", h.handleUpdate)
	r.Delete("/books/{id}", h.handleDelete)
}

// createBookRequest is the body of a create request.
type createBookRequest struct {
	Title         string `json:"title"`
	Code          string `json:"code"`
	Author        string `json:"author"`
	Description   string `json:"description"`
	PublishedYear int    `json:"publishedYear"`
}

// updateBookRequest is the body of an update request. Absent fields keep
// their stored values.
type updateBookRequest struct {
	Title         *string `json:"title"`
	Code          *string `json:"code"`
	Author        *string `json:"author"`
	Description   *string `json:"description"`
	PublishedYear *int    `json:"publishedYear"`
}

func (h *BookHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	book, err := h.bookService.Create(r.Context(), service.CreateBookInput{
		Title:         req.Title,
		Code:          req.Code,
		Author:        req.Author,
		Description:   req.Description,
		PublishedYear: req.PublishedYear,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, book)
}

func (h *BookHandler) handleList(w http.ResponseWriter, r *http.Request) {
	books, err := h.bookService.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, books)
}

func (h *BookHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}

	book, err := h.bookService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

func (h *BookHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}

	var req updateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	book, err := h.bookService.Update(r.Context(), id, service.UpdateBookInput{
		Title:         req.Title,
		Code:          req.Code,
		Author:        req.Author,
		Description:   req.Description,
		PublishedYear: req.PublishedYear,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

func (h *BookHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}

	if err := h.bookService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeMessage(w, http.StatusOK, "Book deleted successfully")
}

// bookID parses the {id} route parameter. An unparseable id cannot name an
// existing record, so it reports the same 404 as a missing book.
func bookID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Book not found")
		return uuid.Nil, false
	}
	return id, true
}
