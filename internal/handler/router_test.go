package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/shelfmark/internal/auth"
	"github.com/prn-tf/shelfmark/internal/domain"
	"github.com/prn-tf/shelfmark/internal/repository"
	"github.com/prn-tf/shelfmark/internal/service"
	"github.com/prn-tf/shelfmark/internal/token"
)

// mockUserRepo is an in-memory repository.UserRepository.
type mockUserRepo struct {
	users  map[string]*domain.User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*domain.User), nextID: 1}
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Username]; exists {
		return domain.ErrUserAlreadyExists
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.Username] = user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if u, exists := m.users[username]; exists {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, exists := m.users[username]
	return exists, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

// mockBookRepo is an in-memory repository.BookRepository.
type mockBookRepo struct {
	books map[uuid.UUID]*domain.Book
	order []uuid.UUID
}

func newMockBookRepo() *mockBookRepo {
	return &mockBookRepo{books: make(map[uuid.UUID]*domain.Book)}
}

func (m *mockBookRepo) Create(ctx context.Context, book *domain.Book) error {
	for _, b := range m.books {
		if b.Title == book.Title || b.Code == book.Code {
			return domain.ErrBookAlreadyExists
		}
	}
	stored := *book
	m.books[book.ID] = &stored
	m.order = append(m.order, book.ID)
	return nil
}

func (m *mockBookRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	if b, exists := m.books[id]; exists {
		copied := *b
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockBookRepo) List(ctx context.Context) ([]*domain.Book, error) {
	var books []*domain.Book
	for _, id := range m.order {
		if b, exists := m.books[id]; exists {
			copied := *b
			books = append(books, &copied)
		}
	}
	return books, nil
}

func (m *mockBookRepo) Update(ctx context.Context, book *domain.Book) error {
	if _, exists := m.books[book.ID]; !exists {
		return repository.ErrNotFound
	}
	stored := *book
	m.books[book.ID] = &stored
	return nil
}

func (m *mockBookRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.books[id]; !exists {
		return repository.ErrNotFound
	}
	delete(m.books, id)
	return nil
}

func (m *mockBookRepo) ExistsConflicting(ctx context.Context, title, code string, excludeID uuid.UUID) (bool, error) {
	for _, b := range m.books {
		if b.ID == excludeID {
			continue
		}
		if b.Title == title || b.Code == code {
			return true, nil
		}
	}
	return false, nil
}

// newTestHandler wires the full HTTP stack: real router, real auth
// middleware, real services, in-memory repositories.
func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	logger := zerolog.Nop()
	tokens := token.NewManager([]byte("test-secret"), time.Hour)

	authService := service.NewAuthService(newMockUserRepo(), tokens, logger)
	bookService := service.NewBookService(newMockBookRepo(), logger)

	authHandler := NewAuthHandler(AuthHandlerConfig{
		AuthService: authService,
		CookieName:  "token",
		TokenTTL:    time.Hour,
		Logger:      logger,
	})
	bookHandler := NewBookHandler(bookService, logger)

	authMiddleware := auth.Middleware(tokens, auth.Config{
		CookieName: "token",
		SkipPaths:  []string{"/health"},
	}, logger)

	return NewRouter(RouterConfig{
		AuthHandler:    authHandler,
		BookHandler:    bookHandler,
		AuthMiddleware: authMiddleware,
		AllowedOrigin:  "http://localhost:3000",
		Logger:         logger,
	}).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

// registerAndLogin creates an account and returns a valid token.
func registerAndLogin(t *testing.T, h http.Handler) string {
	t.Helper()

	// Short passwords are valid; only empty is rejected.
	creds := map[string]string{"username": "alice", "password": "pw"}

	rec := doJSON(t, h, http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/auth/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestRegister(t *testing.T) {
	h := newTestHandler(t)
	creds := map[string]string{"username": "alice", "password": "pw"}

	rec := doJSON(t, h, http.MethodPost, "/auth/register", "", creds)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "User registered successfully", message(t, rec))

	// Same username again.
	rec = doJSON(t, h, http.MethodPost, "/auth/register", "", creds)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists", message(t, rec))
}

func TestRegisterInvalidBody(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", message(t, rec))
}

func TestLogin(t *testing.T) {
	h := newTestHandler(t)
	creds := map[string]string{"username": "alice", "password": "secret1"}

	rec := doJSON(t, h, http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("success sets cookie and returns token", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/auth/login", "", creds)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Message string `json:"message"`
			Token   string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Login successful", body.Message)
		assert.NotEmpty(t, body.Token)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "token", cookies[0].Name)
		assert.Equal(t, body.Token, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/auth/login", "", map[string]string{
			"username": "alice", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", message(t, rec))
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/auth/login", "", map[string]string{
			"username": "nobody", "password": "secret1",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", message(t, rec))
	})
}

func TestBooksRequireToken(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/books", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No token provided", message(t, rec))

	rec = doJSON(t, h, http.MethodGet, "/books", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", message(t, rec))
}

func TestBooksTokenViaCookie(t *testing.T) {
	h := newTestHandler(t)
	tok := registerAndLogin(t, h)

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tok})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBookCRUDFlow(t *testing.T) {
	h := newTestHandler(t)
	tok := registerAndLogin(t, h)

	// Empty catalog.
	rec := doJSON(t, h, http.MethodGet, "/books", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	// Create.
	rec = doJSON(t, h, http.MethodPost, "/books", tok, map[string]interface{}{
		"title":         "The Go Programming Language",
		"code":          "GO-001",
		"author":        "Donovan & Kernighan",
		"description":   "The definitive Go reference",
		"publishedYear": 2015,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "The Go Programming Language", created.Title)
	assert.Equal(t, 2015, created.PublishedYear)

	// List now has one entry.
	rec = doJSON(t, h, http.MethodGet, "/books", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []domain.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	// Get by ID.
	rec = doJSON(t, h, http.MethodGet, "/books/"+created.ID.String(), tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched domain.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, created.Title, fetched.Title)

	// Partial update keeps unspecified fields.
	rec = doJSON(t, h, http.MethodPut, "/books/"+created.ID.String(), tok, map[string]interface{}{
		"description": "Updated description",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated domain.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Updated description", updated.Description)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Code, updated.Code)

	// Delete.
	rec = doJSON(t, h, http.MethodDelete, "/books/"+created.ID.String(), tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Book deleted successfully", message(t, rec))

	// Gone.
	rec = doJSON(t, h, http.MethodGet, "/books/"+created.ID.String(), tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Book not found", message(t, rec))

	rec = doJSON(t, h, http.MethodDelete, "/books/"+created.ID.String(), tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateBookDuplicate(t *testing.T) {
	h := newTestHandler(t)
	tok := registerAndLogin(t, h)

	first := map[string]interface{}{"title": "Dune", "code": "SF-001"}
	rec := doJSON(t, h, http.MethodPost, "/books", tok, first)
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"same title", map[string]interface{}{"title": "Dune", "code": "SF-002"}},
		{"same code", map[string]interface{}{"title": "Hyperion", "code": "SF-001"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/books", tok, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Book with this title or code already exists", message(t, rec))
		})
	}
}

func TestUpdateBookConflict(t *testing.T) {
	h := newTestHandler(t)
	tok := registerAndLogin(t, h)

	rec := doJSON(t, h, http.MethodPost, "/books", tok, map[string]interface{}{
		"title": "Dune", "code": "SF-001",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/books", tok, map[string]interface{}{
		"title": "Hyperion", "code": "SF-002",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var second domain.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))

	// Taking the first book's title is a conflict.
	rec = doJSON(t, h, http.MethodPut, "/books/"+second.ID.String(), tok, map[string]interface{}{
		"title": "Dune",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Book with this title or code already exists", message(t, rec))

	// Re-submitting its own title is not.
	rec = doJSON(t, h, http.MethodPut, "/books/"+second.ID.String(), tok, map[string]interface{}{
		"title": "Hyperion",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBookIDValidation(t *testing.T) {
	h := newTestHandler(t)
	tok := registerAndLogin(t, h)

	// Unparseable ids report the same 404 as missing books.
	rec := doJSON(t, h, http.MethodGet, "/books/not-a-uuid", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Book not found", message(t, rec))

	rec = doJSON(t, h, http.MethodGet, "/books/"+uuid.NewString(), tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Book not found", message(t, rec))
}

func TestCreateBookValidation(t *testing.T) {
	h := newTestHandler(t)
	tok := registerAndLogin(t, h)

	rec := doJSON(t, h, http.MethodPost, "/books", tok, map[string]interface{}{
		"title": "", "code": "SF-001",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/books", tok, map[string]interface{}{
		"title": "Dune", "code": "",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/books", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSPreflightDisallowedOrigin(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/books", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	// The preflight still terminates here, just without allow headers.
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}
