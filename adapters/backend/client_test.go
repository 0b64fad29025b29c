package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/portli/internal/application/service"
	"github.com/khoahotran/portli/internal/config"
	"github.com/khoahotran/portli/internal/domain/account"
	"github.com/khoahotran/portli/internal/domain/portfolio"
	"github.com/khoahotran/portli/internal/testutil/fakebackend"
	"github.com/khoahotran/portli/pkg/apperror"
	"github.com/khoahotran/portli/pkg/logger"
)

type staticToken string

func (s staticToken) AccessToken(context.Context) (string, bool) {
	return string(s), s != ""
}

type recorded struct {
	method string
	path   string
	auth   string
	body   []byte
}

func newTestClient(t *testing.T, token string, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recorded) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, recorded{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization"), body: body})
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	var cfg config.Config
	cfg.Backend.BaseURL = srv.URL + "/api/"
	return NewClient(cfg, staticToken(token), logger.NewNopLogger()), &calls
}

func TestClient_URLJoinsLikeTheBrowserClient(t *testing.T) {
	var cfg config.Config
	cfg.Backend.BaseURL = "http://127.0.0.1:8000/api"
	c := NewClient(cfg, nil, logger.NewNopLogger())

	assert.Equal(t, "http://127.0.0.1:8000/api/login/", c.URL(PathLogin))
	assert.Equal(t, "http://127.0.0.1:8000/api/portfolio/user/", c.URL(PathUserPortfolio))
	assert.Equal(t, "http://127.0.0.1:8000/api/api/portfolio/public/abc/", c.URL(publicPortfolioPath("abc")))
}

func TestClient_BearerSkippedForLoginAndRegister(t *testing.T) {
	c, calls := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/login/" {
			w.Write([]byte(`{"access":"a","refresh":"r","user":{"username":"abc"}}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	ctx := context.Background()

	_, err := c.Login(ctx, account.LoginForm{Username: "abc", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, c.Register(ctx, account.RegisterForm{Username: "abc"}))
	require.NoError(t, c.VerifyOTP(ctx, account.VerifyOTPForm{Email: "a@b.com", OTP: "123456"}))

	require.Len(t, *calls, 3)
	assert.Empty(t, (*calls)[0].auth)
	assert.Empty(t, (*calls)[1].auth)
	assert.Equal(t, "Bearer tok", (*calls)[2].auth)
	assert.JSONEq(t, `{"email":"a@b.com","otp":"123456"}`, string((*calls)[2].body))
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	c, calls := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := c.GetUserPortfolio(context.Background())
	require.NoError(t, err)
	assert.Empty(t, (*calls)[0].auth)
}

func TestClient_LoginDecodesTriple(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access":"a1","refresh":"r1","user":{"username":"abc","email":"a@b.com"}}`))
	})

	out, err := c.Login(context.Background(), account.LoginForm{Username: "abc", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "a1", out.Access)
	assert.Equal(t, "r1", out.Refresh)
	assert.Equal(t, "abc", out.User.Username)
	assert.JSONEq(t, `{"username":"abc","email":"a@b.com"}`, string(out.User.Raw))
}

func TestClient_ErrorSurfacedUnchanged(t *testing.T) {
	c, calls := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"token expired","message":"Please sign in again"}`))
	})

	_, err := c.GetUserPortfolio(context.Background())
	require.Error(t, err)
	assert.Len(t, *calls, 1, "no retry")
	assert.ErrorIs(t, err, apperror.ErrUpstream)
	assert.Equal(t, http.StatusUnauthorized, service.StatusOf(err))
	assert.Equal(t, "token expired", service.MessageOf(err, "fallback", service.FieldError, service.FieldMessage))
	assert.Equal(t, "Please sign in again", service.MessageOf(err, "fallback", service.FieldMessage))
}

func TestClient_ErrorWithoutMessageUsesFallback(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"email":["already taken"]}`))
	})

	err := c.Register(context.Background(), account.RegisterForm{})
	assert.Equal(t, "Registration failed", service.MessageOf(err, "Registration failed", service.FieldMessage))
}

func TestClient_PortfolioEndpoints(t *testing.T) {
	doc := portfolio.Default()
	doc.Username = "abc"
	doc.FullName = "A B"

	c, calls := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/portfolio/user/":
			w.Write([]byte(`{"_id":{"$oid":"65f"},"username":"abc","full_name":"A B"}`))
		case "/api/portfolio/save/":
			body, _ := json.Marshal(doc)
			w.Write(body)
		case "/api/portfolio/65f/delete/":
			w.WriteHeader(http.StatusNoContent)
		case "/api/api/portfolio/public/abc/":
			w.Write([]byte(`{"username":"abc","full_name":"A B","layout":{"theme":"cyberpunk"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	got, err := c.GetUserPortfolio(ctx)
	require.NoError(t, err)
	assert.Equal(t, portfolio.ID("65f"), got.ID)
	assert.NotNil(t, got.Education)

	saved, err := c.SavePortfolio(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, doc, saved)

	require.NoError(t, c.DeletePortfolio(ctx, got.ID))

	pub, err := c.GetPublicPortfolio(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, portfolio.ThemeCyberpunk, pub.Layout.Theme)

	methods := []string{}
	for _, call := range *calls {
		methods = append(methods, call.method+" "+call.path)
	}
	assert.Equal(t, []string{
		"GET /api/portfolio/user/",
		"POST /api/portfolio/save/",
		"DELETE /api/portfolio/65f/delete/",
		"GET /api/api/portfolio/public/abc/",
	}, methods)
}

func TestClient_DeleteWithEmptyIDMakesNoCall(t *testing.T) {
	c, calls := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {})

	err := c.DeletePortfolio(context.Background(), "")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Empty(t, *calls)
}

func TestClient_EmptyPortfolioBodyIsAbsent(t *testing.T) {
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	})

	got, err := c.GetUserPortfolio(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = c.GetPublicPortfolio(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestClient_EmptyObjectPortfolioIsAbsent(t *testing.T) {
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(` {} `))
	})

	got, err := c.GetUserPortfolio(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestClient_SaveThenFetchRoundTrip(t *testing.T) {
	fake := fakebackend.New()
	require.NoError(t, fake.AddUser("abc", "a@b.com", "secret1"))
	baseURL, stop := fake.Start()
	t.Cleanup(stop)

	var cfg config.Config
	cfg.Backend.BaseURL = baseURL
	anon := NewClient(cfg, nil, logger.NewNopLogger())
	login, err := anon.Login(context.Background(), account.LoginForm{Username: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	c := NewClient(cfg, staticToken(login.Access), logger.NewNopLogger())
	doc := portfolio.Default()
	doc.Username = "abc"
	doc.FullName = "A B"
	doc.Education = []portfolio.Education{{Degree: "BSc", Institution: "HCMUT", StartYear: "2015", EndYear: "2019"}}
	doc.Skills = []portfolio.Skill{{Skill: "Go", Level: "Advanced"}}
	doc.Layout.Theme = portfolio.ThemeOceanBreeze

	saved, err := c.SavePortfolio(context.Background(), doc)
	require.NoError(t, err)
	require.False(t, saved.ID.IsZero())

	fetched, err := c.GetUserPortfolio(context.Background())
	require.NoError(t, err)
	assert.Equal(t, saved.ID, fetched.ID)
	if diff := cmp.Diff(doc, fetched, cmpopts.IgnoreFields(portfolio.Document{}, "ID")); diff != "" {
		t.Errorf("fetched document differs from saved (-saved +fetched):\n%s", diff)
	}
}
