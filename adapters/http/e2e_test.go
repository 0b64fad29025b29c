package http

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/portli/adapters/backend"
	"github.com/khoahotran/portli/internal/application/service"
	authUC "github.com/khoahotran/portli/internal/application/usecase/auth"
	portfolioUC "github.com/khoahotran/portli/internal/application/usecase/portfolio"
	"github.com/khoahotran/portli/internal/config"
	"github.com/khoahotran/portli/internal/domain/analytics"
	"github.com/khoahotran/portli/internal/domain/session"
	"github.com/khoahotran/portli/internal/testutil/fakebackend"
	"github.com/khoahotran/portli/pkg/auth"
	"github.com/khoahotran/portli/pkg/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []analytics.ViewEvent
}

func (p *recordingPublisher) PublishView(_ context.Context, ev analytics.ViewEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type stubUploader struct {
	mu      sync.Mutex
	uploads [][]byte
}

func (u *stubUploader) Upload(_ context.Context, file io.Reader, folder, publicID string) (string, error) {
	body, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploads = append(u.uploads, body)
	return "https://img.example.com/" + folder + "/" + publicID + ".png", nil
}

func (u *stubUploader) Delete(context.Context, string) error { return nil }

type E2ETestSuite struct {
	suite.Suite
	backend     *fakebackend.Backend
	stopBackend func()
	publisher   *recordingPublisher
	server      *httptest.Server
	client      *http.Client
}

func TestE2ETestSuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}

func (s *E2ETestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.backend = fakebackend.New()
	s.publisher = &recordingPublisher{}
	s.boot(nil, nil)
}

func (s *E2ETestSuite) TearDownTest() {
	s.server.Close()
	s.stopBackend()
}

// boot starts the app against a fresh fake backend with a fresh cookie jar.
// A nil uploader leaves profile image uploads disabled.
func (s *E2ETestSuite) boot(tokens *auth.TokenInspector, uploader service.Uploader) {
	if s.server != nil {
		s.server.Close()
		s.stopBackend()
	}

	var cfg config.Config
	var baseURL string
	baseURL, s.stopBackend = s.backend.Start()
	cfg.Backend.BaseURL = baseURL
	cfg.Backend.Timeout = 5 * time.Second
	cfg.Session.TTL = time.Hour

	log := logger.NewNopLogger()
	sessions := session.NewProvider(session.NewMemoryStorage())
	client := backend.NewClient(cfg, sessions, log)

	opener := portfolioUC.NewOpenEditorUseCase(client, sessions, log)
	saver := portfolioUC.NewSavePortfolioUseCase(client, log)
	h := Handlers{
		Auth: NewAuthHandler(
			authUC.NewLoginUseCase(client, sessions, log),
			authUC.NewRegisterUseCase(client, sessions, log),
			authUC.NewVerifyOTPUseCase(client, sessions, log),
			authUC.NewForgotPasswordUseCase(client, sessions, log),
			authUC.NewResetPasswordUseCase(client, sessions, log),
			authUC.NewLogoutUseCase(sessions),
			sessions, log,
		),
		Dashboard: NewDashboardHandler(
			portfolioUC.NewGetDashboardUseCase(client, sessions, nil, nil, log),
			portfolioUC.NewDeletePortfolioUseCase(client, log),
			sessions, log,
		),
		Editor: NewEditorHandler(
			opener,
			portfolioUC.NewEditPortfolioUseCase(opener, saver, sessions, uploader, log),
			sessions, log,
		),
		Public: NewPublicHandler(portfolioUC.NewViewPublicPortfolioUseCase(client, s.publisher, log)),
		Feed:   NewFeedHandler(portfolioUC.NewPortfolioFeedUseCase(client, log), log),
	}

	router, err := NewRouter(cfg, log, sessions, tokens, h)
	s.Require().NoError(err)
	s.server = httptest.NewServer(router)

	jar, err := cookiejar.New(nil)
	s.Require().NoError(err)
	s.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (s *E2ETestSuite) get(path string) (int, string, *http.Response) {
	resp, err := s.client.Get(s.server.URL + path)
	s.Require().NoError(err)
	return s.read(resp)
}

func (s *E2ETestSuite) post(path string, form url.Values) (int, string, *http.Response) {
	resp, err := s.client.PostForm(s.server.URL+path, form)
	s.Require().NoError(err)
	return s.read(resp)
}

// postMultipart submits the editor the way a browser does when uploads are
// enabled: the file part is always present, empty when nothing was picked.
func (s *E2ETestSuite) postMultipart(path string, fields map[string]string, fileName string, file []byte) (int, string, *http.Response) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		s.Require().NoError(w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("profile_image_file", fileName)
	s.Require().NoError(err)
	_, err = part.Write(file)
	s.Require().NoError(err)
	s.Require().NoError(w.Close())

	resp, err := s.client.Post(s.server.URL+path, w.FormDataContentType(), &body)
	s.Require().NoError(err)
	return s.read(resp)
}

func (s *E2ETestSuite) read(resp *http.Response) (int, string, *http.Response) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp.StatusCode, string(body), resp
}

func (s *E2ETestSuite) signIn() {
	s.Require().NoError(s.backend.AddUser("abc", "a@b.com", "secret1"))
	status, body, _ := s.post("/login", url.Values{"username": {"abc"}, "password": {"secret1"}})
	s.Require().Equal(http.StatusOK, status)
	s.Require().Contains(body, "Login Successful")
}

func (s *E2ETestSuite) TestRegister_InterstitialThenOTPPage() {
	status, body, _ := s.post("/register", url.Values{
		"username":  {"abc"},
		"full_name": {"A B"},
		"email":     {"a@b.com"},
		"password":  {"secret1"},
	})
	s.Equal(http.StatusOK, status)
	s.Contains(body, "Registration Successful")
	s.Contains(body, `content="2;url=/otp-verify"`)
	s.Contains(body, "1500")

	_, body, _ = s.get("/otp-verify")
	s.Contains(body, "a@b.com")

	status, body, _ = s.post("/otp-verify", url.Values{"otp": {fakebackend.DefaultOTP}})
	s.Equal(http.StatusOK, status)
	s.Contains(body, "OTP Verified")
	s.Contains(body, "url=/login")
}

func (s *E2ETestSuite) TestRegister_ValidationMakesNoCall() {
	status, body, _ := s.post("/register", url.Values{"username": {"abc"}})
	s.Equal(http.StatusOK, status)
	s.Contains(body, "Full name is required")
	s.Empty(s.backend.Requests())
}

func (s *E2ETestSuite) TestGuard_RedirectsAnonymousToLogin() {
	for _, path := range []string{"/dashboard", "/edit-portfolio", "/create-portfolio"} {
		status, _, resp := s.get(path)
		s.Equal(http.StatusSeeOther, status, path)
		s.Equal("/login", resp.Header.Get("Location"), path)
	}
}

func (s *E2ETestSuite) TestLogin_RejectedLeavesNoSession() {
	s.Require().NoError(s.backend.AddUser("abc", "a@b.com", "secret1"))

	status, body, _ := s.post("/login", url.Values{"username": {"abc"}, "password": {"wrong"}})
	s.Equal(http.StatusOK, status)
	s.Contains(body, "Invalid credentials")

	status, _, _ = s.get("/dashboard")
	s.Equal(http.StatusSeeOther, status)
}

func (s *E2ETestSuite) TestLogin_BearerOnlyAfterSignIn() {
	s.signIn()

	status, body, _ := s.get("/dashboard")
	s.Equal(http.StatusOK, status)
	s.Contains(body, "Welcome, abc")
	s.Contains(body, "You have not created a portfolio yet.")

	var sawLogin, sawPortfolio bool
	for _, r := range s.backend.Requests() {
		switch r.Path {
		case "/api/login/":
			sawLogin = true
			s.Empty(r.Authorization)
		case "/api/portfolio/user/":
			sawPortfolio = true
			s.True(strings.HasPrefix(r.Authorization, "Bearer "))
		}
	}
	s.True(sawLogin)
	s.True(sawPortfolio)
}

func (s *E2ETestSuite) TestLogout_ClearsSession() {
	s.signIn()

	status, _, resp := s.post("/logout", nil)
	s.Equal(http.StatusSeeOther, status)
	s.Equal("/login", resp.Header.Get("Location"))

	status, _, _ = s.get("/dashboard")
	s.Equal(http.StatusSeeOther, status)
}

func (s *E2ETestSuite) TestEditor_AddRemoveSave() {
	s.signIn()

	status, body, _ := s.get("/create-portfolio")
	s.Equal(http.StatusOK, status)
	s.Contains(body, `name="full_name"`)
	s.NotContains(body, `name="education.0.degree"`)

	_, body, _ = s.post("/create-portfolio", url.Values{"full_name": {"A B"}, "action": {"add:education"}})
	s.Contains(body, `name="education.0.degree"`)
	s.Contains(body, `value="A B"`)

	_, body, _ = s.post("/create-portfolio", url.Values{
		"education.0.degree": {"BSc"},
		"action":             {"add:education"},
	})
	s.Contains(body, `value="BSc"`)
	s.Contains(body, `name="education.1.degree"`)

	_, body, _ = s.post("/create-portfolio", url.Values{"action": {"remove:education:0"}})
	s.NotContains(body, `value="BSc"`)
	s.NotContains(body, `name="education.1.degree"`)

	status, _, resp := s.post("/create-portfolio", url.Values{"title": {"Engineer"}, "action": {"save"}})
	s.Equal(http.StatusSeeOther, status)
	s.Equal("/dashboard", resp.Header.Get("Location"))

	doc, ok := s.backend.Portfolio("abc")
	s.Require().True(ok)
	s.Equal("A B", doc["full_name"])
	s.Equal("Engineer", doc["title"])
	s.Len(doc["education"], 1)

	_, body, _ = s.get("/dashboard")
	s.Contains(body, "Portfolio saved successfully!")
	s.Contains(body, "Engineer")
}

func (s *E2ETestSuite) TestEditor_SaveFailureKeepsDraft() {
	s.signIn()
	s.get("/create-portfolio")
	s.backend.FailNext("/api/portfolio/save/")

	status, body, _ := s.post("/create-portfolio", url.Values{"full_name": {"A B"}, "action": {"save"}})
	s.Equal(http.StatusOK, status)
	s.Contains(body, "Failed to save portfolio. Try again!")
	s.Contains(body, `value="A B"`)

	_, ok := s.backend.Portfolio("abc")
	s.False(ok)
}

func (s *E2ETestSuite) TestEditor_MultipartWithUploads() {
	uploader := &stubUploader{}
	s.boot(nil, uploader)
	s.signIn()

	_, body, _ := s.get("/edit-portfolio")
	s.Contains(body, `enctype="multipart/form-data"`)
	s.Contains(body, `name="profile_image_file"`)

	status, body, _ := s.postMultipart("/edit-portfolio", map[string]string{
		"full_name": "A B",
		"action":    "add:education",
	}, "", nil)
	s.Equal(http.StatusOK, status)
	s.Contains(body, `name="education.0.degree"`)
	s.Contains(body, `value="A B"`)
	s.Empty(uploader.uploads)

	status, _, resp := s.postMultipart("/edit-portfolio", map[string]string{
		"education.0.degree": "BSc",
		"action":             "save",
	}, "me.png", []byte("png-bytes"))
	s.Equal(http.StatusSeeOther, status)
	s.Equal("/dashboard", resp.Header.Get("Location"))

	s.Require().Len(uploader.uploads, 1)
	s.Equal("png-bytes", string(uploader.uploads[0]))
	doc, ok := s.backend.Portfolio("abc")
	s.Require().True(ok)
	s.Equal("A B", doc["full_name"])
	s.Contains(doc["profile_image"], "https://img.example.com/portli/profile/")
}

func (s *E2ETestSuite) TestDashboard_Delete() {
	s.signIn()
	s.backend.PutPortfolio("abc", map[string]any{"full_name": "A B", "title": "Engineer"})
	doc, _ := s.backend.Portfolio("abc")
	id := doc["_id"].(map[string]any)["$oid"].(string)

	_, body, _ := s.get("/dashboard")
	s.Contains(body, "Engineer")
	s.Contains(body, id)

	status, _, resp := s.post("/dashboard/delete", url.Values{"id": {id}})
	s.Equal(http.StatusSeeOther, status)
	s.Equal("/dashboard", resp.Header.Get("Location"))

	_, ok := s.backend.Portfolio("abc")
	s.False(ok)
	_, body, _ = s.get("/dashboard")
	s.Contains(body, "Create Your Portfolio")
}

func (s *E2ETestSuite) TestPublic_LoadingThenThemedPage() {
	status, body, _ := s.get("/public/abc")
	s.Equal(http.StatusOK, status)
	s.Contains(body, "Loading...")
	s.Zero(s.publisher.count())

	s.backend.PutPortfolio("abc", map[string]any{
		"full_name": "A B",
		"layout":    map[string]any{"theme": "cyberpunk"},
	})
	status, body, _ = s.get("/public/abc")
	s.Equal(http.StatusOK, status)
	s.Contains(body, "/static/themes/cyberpunk.css")
	s.Contains(body, "A B | Built with Portli")
	s.Equal(1, s.publisher.count())
}

func (s *E2ETestSuite) TestPublic_EducationGatedByPresence() {
	s.backend.PutPortfolio("abc", map[string]any{"full_name": "A B", "education": []any{}})
	_, body, _ := s.get("/public/abc")
	s.NotContains(body, `id="education"`)
	s.NotContains(body, `href="#education"`)

	s.backend.PutPortfolio("abc", map[string]any{
		"full_name": "A B",
		"education": []any{
			map[string]any{"degree": "BSc", "institution": "HCMUT", "start_year": "2015", "end_year": "2019"},
			map[string]any{"degree": "MSc", "institution": "NUS", "start_year": "2020", "end_year": "2022"},
		},
	})
	_, body, _ = s.get("/public/abc")
	s.Contains(body, `id="education"`)
	s.Contains(body, `href="#education"`)
	s.Contains(body, "2015 - 2019")
	s.Less(strings.Index(body, "BSc"), strings.Index(body, "MSc"))
	s.Less(strings.Index(body, "HCMUT"), strings.Index(body, "NUS"))
}

func (s *E2ETestSuite) TestPublic_ProjectFeed() {
	status, _, _ := s.get("/public/ghost/feed.xml")
	s.Equal(http.StatusNotFound, status)

	s.backend.PutPortfolio("abc", map[string]any{
		"full_name": "A B",
		"projects": []any{
			map[string]any{"title": "Portli", "description": "Portfolio builder", "live_link": "https://portli.dev"},
			map[string]any{"title": ""},
		},
	})
	status, body, resp := s.get("/public/abc/feed.xml")
	s.Equal(http.StatusOK, status)
	s.Contains(resp.Header.Get("Content-Type"), "application/rss+xml")
	s.Contains(body, "<title>A B - Projects</title>")
	s.Contains(body, "https://portli.dev")
	s.Equal(1, strings.Count(body, "<item>"))
}

func (s *E2ETestSuite) TestExpiredTokenSignsOut() {
	s.backend.TokenTTL = -time.Minute
	s.boot(auth.NewTokenInspector(0), nil)
	s.signIn()

	status, _, resp := s.get("/dashboard")
	s.Equal(http.StatusSeeOther, status)
	s.Equal("/login", resp.Header.Get("Location"))

	status, body, _ := s.get("/login")
	s.Equal(http.StatusOK, status)
	s.NotContains(body, "Logout")
}

func (s *E2ETestSuite) TestHealth() {
	status, body, _ := s.get("/health")
	s.Equal(http.StatusOK, status)
	s.JSONEq(`{"status":"UP"}`, body)
}
