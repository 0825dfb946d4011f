package post

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"Chirp/internal/api/middleware"
	"Chirp/internal/auth"
	"Chirp/internal/core/posts"
	"Chirp/internal/core/users"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPostService implements posts.Service for testing
type mockPostService struct {
	listPageFunc   func(ctx context.Context, req posts.ListPageRequest) (*posts.Page, error)
	createPostFunc func(ctx context.Context, req posts.CreatePostRequest) (*posts.Post, error)
	getByIDFunc    func(ctx context.Context, id string) (*posts.Post, error)
}

func (m *mockPostService) ListAll(ctx context.Context) ([]*posts.Post, error) {
	return []*posts.Post{}, nil
}

func (m *mockPostService) ListByAuthor(ctx context.Context, authorID string) ([]*posts.Post, error) {
	return []*posts.Post{{ID: "p1", AuthorID: authorID}}, nil
}

func (m *mockPostService) ListPage(ctx context.Context, req posts.ListPageRequest) (*posts.Page, error) {
	if m.listPageFunc != nil {
		return m.listPageFunc(ctx, req)
	}
	return &posts.Page{Posts: []*posts.Post{}}, nil
}

func (m *mockPostService) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, posts.ErrNotFound
}

func (m *mockPostService) CreatePost(ctx context.Context, req posts.CreatePostRequest) (*posts.Post, error) {
	if m.createPostFunc != nil {
		return m.createPostFunc(ctx, req)
	}
	return &posts.Post{ID: "new", Content: req.Content, AuthorID: req.AuthorID}, nil
}

// mockUserService implements users.UserService for testing
type mockUserService struct {
	indexed []users.IndexUserRequest
	err     error
}

func (m *mockUserService) IndexUser(ctx context.Context, req users.IndexUserRequest) (*users.User, error) {
	m.indexed = append(m.indexed, req)
	if m.err != nil {
		return nil, m.err
	}
	return &users.User{ID: req.ID, Username: req.Username}, nil
}

func (m *mockUserService) GetUserByID(ctx context.Context, id string) (*users.User, error) {
	return nil, users.ErrUserNotFound
}

func (m *mockUserService) GetProfile(ctx context.Context, actor string) (*users.ProfileView, error) {
	return nil, users.ErrUserNotFound
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandleListPage_ParsesQuery(t *testing.T) {
	createdAt := time.Date(2024, 3, 1, 12, 0, 0, 123456000, time.UTC)
	var got posts.ListPageRequest
	svc := &mockPostService{listPageFunc: func(ctx context.Context, req posts.ListPageRequest) (*posts.Page, error) {
		got = req
		return &posts.Page{
			Posts:      []*posts.Post{{ID: "p2"}},
			NextCursor: &posts.Cursor{CreatedAt: createdAt, ID: "p2"},
		}, nil
	}}
	handler := NewListHandler(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/xrpc/social.chirp.post.listPage?limit=2&authorId=user_a&cursorCreatedAt="+createdAt.Format(time.RFC3339Nano)+"&cursorId=p3", nil)
	w := httptest.NewRecorder()
	handler.HandleListPage(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, got.Limit)
	id, scoped := got.Author.AuthorID()
	assert.True(t, scoped)
	assert.Equal(t, "user_a", id)
	require.NotNil(t, got.Cursor)
	assert.True(t, createdAt.Equal(got.Cursor.CreatedAt))
	assert.Equal(t, "p3", got.Cursor.ID)

	var page posts.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, "p2", page.NextCursor.ID)
}

func TestHandleListPage_Defaults(t *testing.T) {
	var got posts.ListPageRequest
	svc := &mockPostService{listPageFunc: func(ctx context.Context, req posts.ListPageRequest) (*posts.Page, error) {
		got = req
		return &posts.Page{Posts: []*posts.Post{}}, nil
	}}

	w := httptest.NewRecorder()
	NewListHandler(svc).HandleListPage(w, httptest.NewRequest(http.MethodGet, "/xrpc/social.chirp.post.listPage", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, posts.DefaultPageLimit, got.Limit)
	assert.Nil(t, got.Cursor)
	_, scoped := got.Author.AuthorID()
	assert.False(t, scoped)
	assert.JSONEq(t, `{"posts":[]}`, w.Body.String())
}

func TestHandleListPage_BadInput(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantError string
	}{
		{name: "non-numeric limit", query: "limit=abc", wantError: "InvalidRequest"},
		{name: "half a cursor", query: "cursorId=p1", wantError: "InvalidCursor"},
		{name: "bad timestamp", query: "cursorCreatedAt=yesterday&cursorId=p1", wantError: "InvalidCursor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewListHandler(&mockPostService{}).HandleListPage(w,
				httptest.NewRequest(http.MethodGet, "/xrpc/social.chirp.post.listPage?"+tt.query, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantError, decodeError(t, w)["error"])
		})
	}
}

func TestHandleListByAuthor_RequiresAuthor(t *testing.T) {
	handler := NewListHandler(&mockPostService{})

	w := httptest.NewRecorder()
	handler.HandleListByAuthor(w, httptest.NewRequest(http.MethodGet, "/xrpc/social.chirp.post.listByAuthor", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	handler.HandleListByAuthor(w, httptest.NewRequest(http.MethodGet, "/xrpc/social.chirp.post.listByAuthor?authorId=user_a", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authorId":"user_a"`)
}

func TestHandleGet_NotFound(t *testing.T) {
	w := httptest.NewRecorder()
	NewGetHandler(&mockPostService{}).HandleGet(w, httptest.NewRequest(http.MethodGet, "/xrpc/social.chirp.post.get?id=nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PostNotFound", decodeError(t, w)["error"])
}

func newCreateRequest(body string, claims *auth.Claims) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/xrpc/social.chirp.post.create", strings.NewReader(body))
	if claims != nil {
		req = req.WithContext(middleware.SetTestClaims(req.Context(), claims))
	}
	return req
}

func testClaims() *auth.Claims {
	return &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user_a"},
		Username:         "alice",
		ImageURL:         "https://img.example.com/a.png",
	}
}

func TestHandleCreate_Success(t *testing.T) {
	var got posts.CreatePostRequest
	svc := &mockPostService{createPostFunc: func(ctx context.Context, req posts.CreatePostRequest) (*posts.Post, error) {
		got = req
		return &posts.Post{ID: "p1", Content: req.Content, AuthorID: req.AuthorID}, nil
	}}
	userSvc := &mockUserService{}

	w := httptest.NewRecorder()
	NewCreateHandler(svc, userSvc).HandleCreate(w, newCreateRequest(`{"content":"hello"}`, testClaims()))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user_a", got.AuthorID)
	assert.Equal(t, "hello", got.Content)
	require.Len(t, userSvc.indexed, 1)
	assert.Equal(t, "alice", userSvc.indexed[0].Username)
}

func TestHandleCreate_Unauthenticated(t *testing.T) {
	w := httptest.NewRecorder()
	NewCreateHandler(&mockPostService{}, &mockUserService{}).HandleCreate(w, newCreateRequest(`{"content":"hello"}`, nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AuthenticationRequired", decodeError(t, w)["error"])
}

func TestHandleCreate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		retryAfter string
	}{
		{
			name:       "validation",
			err:        posts.NewValidationError("content", "Post too long (max 255 characters)"),
			wantStatus: http.StatusBadRequest,
			wantError:  "InvalidRequest",
		},
		{
			name:       "rate limited",
			err:        &posts.RateLimitError{Limit: 3, RetryAfter: 12300 * time.Millisecond},
			wantStatus: http.StatusTooManyRequests,
			wantError:  "RateLimitExceeded",
			retryAfter: "13",
		},
		{
			name:       "limiter unavailable",
			err:        errors.Join(posts.ErrRateLimiterUnavailable, errors.New("dial tcp: refused")),
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "ServiceUnavailable",
		},
		{
			name:       "storage",
			err:        posts.NewStorageError("create post", errors.New("pq: deadlock detected")),
			wantStatus: http.StatusInternalServerError,
			wantError:  "InternalServerError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockPostService{createPostFunc: func(ctx context.Context, req posts.CreatePostRequest) (*posts.Post, error) {
				return nil, tt.err
			}}

			w := httptest.NewRecorder()
			NewCreateHandler(svc, &mockUserService{}).HandleCreate(w, newCreateRequest(`{"content":"hello"}`, testClaims()))

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.wantError, body["error"])
			assert.NotContains(t, body["message"], "pq:")
			assert.Equal(t, tt.retryAfter, w.Header().Get("Retry-After"))
		})
	}
}

func TestHandleCreate_ValidationMessageIsShown(t *testing.T) {
	svc := &mockPostService{createPostFunc: func(ctx context.Context, req posts.CreatePostRequest) (*posts.Post, error) {
		return nil, posts.NewValidationError("content", "Can't create empty post")
	}}

	w := httptest.NewRecorder()
	NewCreateHandler(svc, &mockUserService{}).HandleCreate(w, newCreateRequest(`{"content":""}`, testClaims()))

	assert.Equal(t, "Can't create empty post", decodeError(t, w)["message"])
}

func TestHandleCreate_BadBody(t *testing.T) {
	for _, body := range []string{
		`{not json`,
		`{}`,
		`{"content": 42}`,
		`{"content":"hi","authorId":"someone_else"}`,
	} {
		called := false
		svc := &mockPostService{createPostFunc: func(ctx context.Context, req posts.CreatePostRequest) (*posts.Post, error) {
			called = true
			return nil, nil
		}}
		w := httptest.NewRecorder()
		NewCreateHandler(svc, &mockUserService{}).HandleCreate(w, newCreateRequest(body, testClaims()))
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "InvalidRequest", decodeError(t, w)["error"], body)
		assert.False(t, called, body)
	}

	w := httptest.NewRecorder()
	huge := `{"content":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	NewCreateHandler(&mockPostService{}, &mockUserService{}).HandleCreate(w, newCreateRequest(huge, testClaims()))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestHandleCreate_IndexFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewCreateHandler(&mockPostService{}, &mockUserService{err: users.ErrUsernameTaken}).
		HandleCreate(w, newCreateRequest(`{"content":"hello"}`, testClaims()))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandleCreate_InvalidContentSkipsIndexing(t *testing.T) {
	for name, content := range map[string]string{
		"empty":          "",
		"256 characters": strings.Repeat("a", posts.MaxContentLength+1),
	} {
		t.Run(name, func(t *testing.T) {
			called := false
			svc := &mockPostService{createPostFunc: func(ctx context.Context, req posts.CreatePostRequest) (*posts.Post, error) {
				called = true
				return nil, nil
			}}
			// An indexing failure would surface as 409 if indexing ran first
			userSvc := &mockUserService{err: users.ErrUsernameTaken}

			body, err := json.Marshal(map[string]string{"content": content})
			require.NoError(t, err)

			w := httptest.NewRecorder()
			NewCreateHandler(svc, userSvc).HandleCreate(w, newCreateRequest(string(body), testClaims()))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "InvalidRequest", decodeError(t, w)["error"])
			assert.Empty(t, userSvc.indexed, "user must not be indexed for invalid content")
			assert.False(t, called)
		})
	}
}
