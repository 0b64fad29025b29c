// Package fakebackend is an in-memory stand-in for the portfolio REST
// service. It follows the same routes and status codes so handlers can be
// tested end to end without the real backend.
package fakebackend

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const DefaultOTP = "123456"

type user struct {
	Username     string
	FullName     string
	Email        string
	PasswordHash []byte
	Verified     bool
}

// Request is one call the fake received.
type Request struct {
	Method        string
	Path          string
	Authorization string
}

type Backend struct {
	// OTP is the code issued for every verification and reset.
	OTP string
	// TokenTTL is the lifetime of issued access tokens. Negative values
	// issue tokens that are already expired.
	TokenTTL time.Duration

	secret []byte

	mu         sync.Mutex
	users      map[string]*user
	pending    map[string]string
	resets     map[string]string
	portfolios map[string]map[string]any
	requests   []Request
	failures   map[string]int
}

func New() *Backend {
	return &Backend{
		OTP:        DefaultOTP,
		TokenTTL:   time.Hour,
		secret:     []byte(uuid.NewString()),
		users:      make(map[string]*user),
		pending:    make(map[string]string),
		resets:     make(map[string]string),
		portfolios: make(map[string]map[string]any),
		failures:   make(map[string]int),
	}
}

// Start serves the fake on a local port. The returned base URL is what
// backend.base_url should be set to.
func (b *Backend) Start() (baseURL string, stop func()) {
	srv := httptest.NewServer(b.Router())
	return srv.URL + "/api", srv.Close
}

// FailNext makes the next call to path answer 500.
func (b *Backend) FailNext(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[path]++
}

func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Portfolio returns the stored document of username, if any.
func (b *Backend) Portfolio(username string) (map[string]any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	doc, ok := b.portfolios[username]
	return doc, ok
}

// PutPortfolio stores doc for username as if it had been saved.
func (b *Backend) PutPortfolio(username string, doc map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.store(username, doc)
}

// AddUser registers a verified account.
func (b *Backend) AddUser(username, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[username] = &user{Username: username, Email: email, PasswordHash: hash, Verified: true}
	return nil
}

func (b *Backend) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), b.record)

	api := r.Group("/api")
	api.POST("/register/", b.register)
	api.POST("/verify-otp/", b.verifyOTP)
	api.POST("/login/", b.login)
	api.POST("/forgot-password/", b.forgotPassword)
	api.POST("/reset-password/", b.resetPassword)

	private := api.Group("/portfolio")
	private.Use(b.authenticate)
	private.GET("/user/", b.userPortfolio)
	private.POST("/save/", b.savePortfolio)
	private.DELETE("/:id/delete/", b.deletePortfolio)

	api.GET("/api/portfolio/public/:username/", b.publicPortfolio)
	return r
}

func (b *Backend) record(c *gin.Context) {
	b.mu.Lock()
	b.requests = append(b.requests, Request{
		Method:        c.Request.Method,
		Path:          c.Request.URL.Path,
		Authorization: c.GetHeader("Authorization"),
	})
	fail := b.failures[c.Request.URL.Path] > 0
	if fail {
		b.failures[c.Request.URL.Path]--
	}
	b.mu.Unlock()

	if fail {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.Next()
}

func (b *Backend) findUser(login string) *user {
	if u, ok := b.users[login]; ok {
		return u
	}
	for _, u := range b.users {
		if strings.EqualFold(u.Email, login) {
			return u
		}
	}
	return nil
}

func (b *Backend) register(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.findUser(req.Username) != nil || b.findUser(req.Email) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "hash failed"})
		return
	}
	b.users[req.Username] = &user{Username: req.Username, FullName: req.FullName, Email: req.Email, PasswordHash: hash}
	b.pending[req.Email] = b.OTP
	c.JSON(http.StatusCreated, gin.H{"message": "User registered. OTP sent to email."})
}

func (b *Backend) verifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	_ = c.ShouldBindJSON(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	code, ok := b.pending[req.Email]
	if !ok || code != req.OTP {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired OTP"})
		return
	}
	delete(b.pending, req.Email)
	b.findUser(req.Email).Verified = true
	c.JSON(http.StatusOK, gin.H{"message": "Account verified"})
}

func (b *Backend) login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	_ = c.ShouldBindJSON(&req)

	b.mu.Lock()
	u := b.findUser(req.Username)
	b.mu.Unlock()

	if u == nil || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}
	if !u.Verified {
		c.JSON(http.StatusForbidden, gin.H{"message": "Please verify your email first"})
		return
	}

	access, err := b.issue(u.Username, b.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "token failed"})
		return
	}
	refresh, err := b.issue(u.Username, 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "token failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access":  access,
		"refresh": refresh,
		"user": gin.H{
			"username":  u.Username,
			"email":     u.Email,
			"full_name": u.FullName,
		},
	})
}

func (b *Backend) forgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	_ = c.ShouldBindJSON(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.findUser(req.Email) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Email not found"})
		return
	}
	b.resets[req.Email] = b.OTP
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent"})
}

func (b *Backend) resetPassword(c *gin.Context) {
	var req struct {
		Email           string `json:"email"`
		OTP             string `json:"otp"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	_ = c.ShouldBindJSON(&req)

	if req.NewPassword != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	code, ok := b.resets[req.Email]
	if !ok || code != req.OTP {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired OTP"})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash failed"})
		return
	}
	delete(b.resets, req.Email)
	b.findUser(req.Email).PasswordHash = hash
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

const ctxUsername = "username"

func (b *Backend) issue(username string, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   username,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
}

func (b *Backend) authenticate(c *gin.Context) {
	header := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == header || tokenString == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided."})
		return
	}

	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return b.secret, nil
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid or expired"})
		return
	}
	c.Set(ctxUsername, claims.Subject)
	c.Next()
}

func (b *Backend) userPortfolio(c *gin.Context) {
	b.mu.Lock()
	doc, ok := b.portfolios[c.GetString(ctxUsername)]
	b.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Portfolio not found"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (b *Backend) savePortfolio(c *gin.Context) {
	var doc map[string]any
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, b.store(c.GetString(ctxUsername), doc))
}

// store keeps the id of an existing document and encodes new ids the way
// a Mongo-backed service does.
func (b *Backend) store(username string, doc map[string]any) map[string]any {
	if prev, ok := b.portfolios[username]; ok {
		doc["_id"] = prev["_id"]
	} else {
		doc["_id"] = map[string]any{"$oid": strings.ReplaceAll(uuid.NewString(), "-", "")[:24]}
	}
	doc["username"] = username
	b.portfolios[username] = doc
	return doc
}

func oid(doc map[string]any) string {
	switch v := doc["_id"].(type) {
	case string:
		return v
	case map[string]any:
		s, _ := v["$oid"].(string)
		return s
	}
	return ""
}

func (b *Backend) deletePortfolio(c *gin.Context) {
	username := c.GetString(ctxUsername)

	b.mu.Lock()
	defer b.mu.Unlock()
	doc, ok := b.portfolios[username]
	if !ok || oid(doc) != c.Param("id") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Portfolio not found"})
		return
	}
	delete(b.portfolios, username)
	c.Status(http.StatusNoContent)
}

func (b *Backend) publicPortfolio(c *gin.Context) {
	b.mu.Lock()
	doc, ok := b.portfolios[c.Param("username")]
	b.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Portfolio not found"})
		return
	}
	c.JSON(http.StatusOK, doc)
}
