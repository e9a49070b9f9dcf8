package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/thejerf/abtime"

	"github.com/preetk/blogapi/internal/auth"
	"github.com/preetk/blogapi/internal/config"
	"github.com/preetk/blogapi/internal/models"
	"github.com/preetk/blogapi/internal/store"
)

// fakeStore is an in-memory store.UserStore + store.PostStore so handler
// tests drive the real router without Postgres.
type fakeStore struct {
	users []models.User
	posts []models.Post

	nextUser int64
	nextPost int64
	now      func() time.Time
}

func newFakeStore(now func() time.Time) *fakeStore {
	return &fakeStore{nextUser: 1, nextPost: 1, now: now}
}

func (s *fakeStore) Create(email, name, passwordHash string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return nil, store.ErrEmailTaken
		}
	}
	u := models.User{
		ID:        s.nextUser,
		Email:     email,
		Name:      name,
		Password:  passwordHash,
		CreatedAt: s.now(),
	}
	s.nextUser++
	s.users = append(s.users, u)
	return &u, nil
}

func (s *fakeStore) ByEmail(email string) (*models.User, error) {
	for i := range s.users {
		if s.users[i].Email == email {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeStore) ByID(id int64) (*models.User, error) {
	for i := range s.users {
		if s.users[i].ID == id {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeStore) List(limit, offset int) ([]models.User, error) {
	if offset >= len(s.users) {
		return []models.User{}, nil
	}
	end := offset + limit
	if end > len(s.users) {
		end = len(s.users)
	}
	return append([]models.User{}, s.users[offset:end]...), nil
}

func (s *fakeStore) Count() (int64, error) {
	return int64(len(s.users)), nil
}

func (s *fakeStore) CreatedSince(cutoff time.Time) ([]models.User, error) {
	out := []models.User{}
	for _, u := range s.users {
		if !u.CreatedAt.Before(cutoff) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeStore) PostIDs(userID int64) ([]int64, error) {
	ids := []int64{}
	for _, p := range s.posts {
		if p.UserID == userID {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

// postStore is the PostStore face of fakeStore; separate type only so the
// method sets don't collide on Create/ByID/List/Count.
type postStore struct{ s *fakeStore }

func (ps postStore) Create(userID int64, title, content string) (*models.Post, error) {
	owner, err := ps.s.ByID(userID)
	if err != nil {
		return nil, err
	}
	p := models.Post{
		ID:       ps.s.nextPost,
		UserID:   userID,
		Title:    title,
		Content:  content,
		PostDate: ps.s.now(),
		UserName: owner.Name,
	}
	ps.s.nextPost++
	ps.s.posts = append(ps.s.posts, p)
	return &p, nil
}

func (ps postStore) ByID(id int64) (*models.Post, error) {
	for i := range ps.s.posts {
		if ps.s.posts[i].ID == id {
			p := ps.s.posts[i]
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (ps postStore) List(limit, offset int) ([]models.Post, error) {
	sorted := append([]models.Post{}, ps.s.posts...)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].PostDate.Equal(sorted[j].PostDate) {
			return sorted[i].PostDate.After(sorted[j].PostDate)
		}
		return sorted[i].ID > sorted[j].ID
	})
	if offset >= len(sorted) {
		return []models.Post{}, nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[offset:end], nil
}

func (ps postStore) Count() (int64, error) {
	return int64(len(ps.s.posts)), nil
}

func (ps postStore) Update(id int64, title, content string) (*models.Post, error) {
	for i := range ps.s.posts {
		if ps.s.posts[i].ID == id {
			ps.s.posts[i].Title = title
			ps.s.posts[i].Content = content
			p := ps.s.posts[i]
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (ps postStore) Delete(id int64) error {
	for i := range ps.s.posts {
		if ps.s.posts[i].ID == id {
			ps.s.posts = append(ps.s.posts[:i], ps.s.posts[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// testEnv wires the real route table over the fake store.
type testEnv struct {
	t      *testing.T
	router http.Handler
	store  *fakeStore
	clock  *abtime.ManualTime
	issuer *auth.Issuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := abtime.NewManualAtTime(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	st := newFakeStore(clock.Now)
	issuer := auth.NewIssuer("test-secret", 5*time.Minute, 24*time.Hour, clock)

	cfg := &config.Config{PageSize: 10, StaffDomain: "abc.com"}
	h := New(cfg, st, postStore{st}, issuer, clock)

	return &testEnv{
		t:      t,
		router: h.Routes(),
		store:  st,
		clock:  clock,
		issuer: issuer,
	}
}

// do runs one request through the router. A non-empty token is sent as a
// bearer credential.
func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatalf("encode body: %v", err)
		}
	}

	r := httptest.NewRequest(method, "http://testserver"+path, &buf)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

// decode unmarshals a response body into a generic map.
func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

// decodeList unmarshals a response whose body is a JSON array.
func decodeList(t *testing.T, w *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	out := []interface{}{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

// register creates a user through the API and returns the token pair.
func (e *testEnv) register(email, name, password string) auth.TokenPair {
	e.t.Helper()

	w := e.do("POST", "/api/register/", "", map[string]string{
		"email": email, "name": name, "password": password,
	})
	if w.Code != http.StatusCreated {
		e.t.Fatalf("register %s: status %d, body %s", email, w.Code, w.Body.String())
	}

	var resp struct {
		Token auth.TokenPair `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		e.t.Fatalf("decode register response: %v", err)
	}
	return resp.Token
}

// createPost makes a post as the given caller and returns its id.
func (e *testEnv) createPost(token, title, content string) int64 {
	e.t.Helper()

	w := e.do("POST", "/api/posts/", token, map[string]string{
		"title": title, "content": content,
	})
	if w.Code != http.StatusCreated {
		e.t.Fatalf("create post: status %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		e.t.Fatalf("decode create response: %v", err)
	}
	return resp.ID
}

func postPath(id int64) string {
	return fmt.Sprintf("/api/posts/%d/", id)
}
