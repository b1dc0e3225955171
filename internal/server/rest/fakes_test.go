package rest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/blogapi/internal/common"
	"github.com/dmitrijs2005/blogapi/internal/logging"
	"github.com/dmitrijs2005/blogapi/internal/server/auth"
	"github.com/dmitrijs2005/blogapi/internal/server/models"
	"github.com/dmitrijs2005/blogapi/internal/server/services"
)

const testSecret = "rest-test-secret"

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// fakeUsers answers from canned values; Authenticate uses a real TokenService.
type fakeUsers struct {
	tokens *auth.TokenService

	registerErr error
	registered  []string

	loginRes *services.LoginResult
	loginErr error

	verifyErr   error
	verifiedTok string

	logoutErr  error
	loggedOut  []string
	sessionErr error
}

func newFakeUsers(t *testing.T, c *clock) *fakeUsers {
	t.Helper()
	ts, err := auth.NewTokenService(testSecret, time.Hour, auth.WithClock(c.Now))
	require.NoError(t, err)
	return &fakeUsers{tokens: ts}
}

func (f *fakeUsers) Register(_ context.Context, name, email, password string) (*models.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, common.ErrValidation
	}
	if _, err := auth.HashPassword(password); err != nil {
		return nil, err
	}
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	f.registered = append(f.registered, email)
	return &models.User{ID: "u-1", Name: name, Email: email}, nil
}

func (f *fakeUsers) Login(context.Context, string, string) (*services.LoginResult, error) {
	return f.loginRes, f.loginErr
}

func (f *fakeUsers) VerifyEmail(_ context.Context, token string) error {
	if token == "" {
		return common.ErrMissingToken
	}
	f.verifiedTok = token
	return f.verifyErr
}

func (f *fakeUsers) Logout(_ context.Context, sessionID string) error {
	f.loggedOut = append(f.loggedOut, sessionID)
	return f.logoutErr
}

func (f *fakeUsers) Session(_ context.Context, sessionID string) (*models.Session, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return &models.Session{ID: sessionID, UserID: "u-1"}, nil
}

func (f *fakeUsers) Authenticate(token string) (*auth.Identity, error) {
	if token == "" {
		return nil, common.ErrMissingToken
	}
	claims, err := f.tokens.Verify(token, auth.PurposeLogin)
	if err != nil {
		return nil, err
	}
	return claims.Identity(), nil
}

type fakeBlogs struct {
	mu      sync.Mutex
	blogs   map[string]*models.Blog
	order   []string
	err     error
	created int
}

func newFakeBlogs() *fakeBlogs {
	return &fakeBlogs{blogs: map[string]*models.Blog{}}
}

func (f *fakeBlogs) add(b *models.Blog) {
	f.blogs[b.ID] = b
	f.order = append(f.order, b.ID)
}

func (f *fakeBlogs) List(context.Context) ([]*models.Blog, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.Blog, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.blogs[id])
	}
	return out, nil
}

func (f *fakeBlogs) Get(_ context.Context, id string) (*models.Blog, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.blogs[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return b, nil
}

func (f *fakeBlogs) Create(_ context.Context, title, snippet, body string) (*models.Blog, error) {
	if title == "" || snippet == "" || body == "" {
		return nil, common.ErrValidation
	}
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	b := &models.Blog{ID: "b-new", Title: title, Snippet: snippet, Body: body}
	f.add(b)
	return b, nil
}

func (f *fakeBlogs) Update(_ context.Context, id, title, snippet, body string) (*models.Blog, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.blogs[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if title == "" || snippet == "" || body == "" {
		return nil, common.ErrValidation
	}
	b.Title, b.Snippet, b.Body = title, snippet, body
	return b, nil
}

func (f *fakeBlogs) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.blogs[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.blogs, id)
	for i, v := range f.order {
		if v == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

var nopLogger logging.Logger = logging.Nop{}
