// Package optest runs an in-process OpenCircle backend stub for integration
// tests: gin handlers over fixture accounts, bcrypt credential checks, and a
// JWT session cookie, mimicking the real API's multipart and cookie
// behavior.
package optest

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionCookie = "session_token"
	jwtSecret     = "optest-secret"

	// ValidOTP is the only authenticator code the stub accepts.
	ValidOTP = "123456"
	// ValidBackupCode is the only backup code the stub accepts.
	ValidBackupCode = "a1b2c3d4e5"
)

// Account is a fixture credential the stub authenticates against.
type Account struct {
	Email    string
	Password string
	// Organization switches the signin payload shape and role id.
	Organization bool
	// TwoFARequired forces the OTP challenge on signin.
	TwoFARequired bool
	// TwoFAConfigured marks the second factor as already set up.
	TwoFAConfigured bool
	// TwoFABypass marks the second factor as explicitly skipped.
	TwoFABypass bool

	hash []byte
}

// Options tune stub behavior per test.
type Options struct {
	// WithholdLoginCookie suppresses the Set-Cookie on signin so the
	// client's cookie poll times out.
	WithholdLoginCookie bool
	// Events is the dataset served by the public feed, split into pages of
	// PageSize.
	Events   []Event
	PageSize int
}

// Event is the wire shape of one feed entry.
type Event struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	TotalComments int    `json:"total_comments"`
}

// Server is the running stub.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]*Account
	opts     Options
	bypassed map[string]bool
	enabled  map[string]bool
}

// New starts the stub with the given fixture accounts.
func New(opts Options, accounts ...Account) *Server {
	if opts.PageSize <= 0 {
		opts.PageSize = 2
	}
	s := &Server{
		accounts: map[string]*Account{},
		opts:     opts,
		bypassed: map[string]bool{},
		enabled:  map[string]bool{},
	}
	for i := range accounts {
		a := accounts[i]
		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		a.hash = hash
		s.accounts[a.Email] = &a
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")

	api.POST("/account/user_signin", s.userSignin)
	api.POST("/account/organization_signin", s.organizationSignin)
	api.POST("/account/logout", s.logout)
	api.GET("/account/auth_user", s.authUser)
	api.POST("/account/two_fa/setup_initiate", s.setupInitiate)
	api.POST("/account/two_fa/enable", s.enable)
	api.POST("/account/two_fa/bypass", s.bypass)
	api.POST("/account/two_fa/verify", s.verify)
	api.GET("/account/two_fa/status", s.status)
	api.GET("/event/random", s.randomEvents)
	api.POST("/rsvp", s.createRSVP)

	s.Server = httptest.NewServer(r)
	return s
}

func (s *Server) account(email string) *Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[email]
}

// checkCredentials authenticates a multipart signin body.
func (s *Server) checkCredentials(c *gin.Context) *Account {
	email := c.PostForm("login")
	password := c.PostForm("password")
	account := s.account(email)
	if account == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return nil
	}
	if bcrypt.CompareHashAndPassword(account.hash, []byte(password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return nil
	}
	return account
}

func (s *Server) issueCookie(c *gin.Context, email string) {
	claims := jwt.MapClaims{
		"sub": email,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to sign token"})
		return
	}
	c.SetCookie(sessionCookie, token, 24*3600, "/", "", false, true)
}

// sessionEmail resolves the cookie to an account email, or "" when the
// request carries no valid session.
func (s *Server) sessionEmail(c *gin.Context) string {
	raw, err := c.Cookie(sessionCookie)
	if err != nil || raw == "" {
		return ""
	}
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}

func memberPayload(email string) gin.H {
	return gin.H{
		"id": 1, "account_id": 1,
		"first_name": "Test", "last_name": "Member",
		"email": email, "uuid": "member-" + email, "role_id": 1,
	}
}

func organizationPayload(email string) gin.H {
	return gin.H{
		"id": 1, "account_id": 2,
		"name": "Test Organization", "email": email,
		"category": "community", "uuid": "org-" + email, "role_id": 2,
	}
}

func (s *Server) userSignin(c *gin.Context) {
	account := s.checkCredentials(c)
	if account == nil || account.Organization {
		if account != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		}
		return
	}

	if account.TwoFARequired {
		c.JSON(http.StatusOK, gin.H{"two_fa_required": true})
		return
	}
	if !s.opts.WithholdLoginCookie {
		s.issueCookie(c, account.Email)
	}
	c.JSON(http.StatusOK, gin.H{
		"user":              memberPayload(account.Email),
		"expires_at":        time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"two_fa_configured": account.TwoFAConfigured,
		"two_fa_bypass":     account.TwoFABypass,
	})
}

func (s *Server) organizationSignin(c *gin.Context) {
	account := s.checkCredentials(c)
	if account == nil {
		return
	}
	if !account.Organization {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return
	}
	s.issueCookie(c, account.Email)
	c.JSON(http.StatusOK, gin.H{
		"organization": organizationPayload(account.Email),
		"expires_at":   time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
}

func (s *Server) logout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (s *Server) authUser(c *gin.Context) {
	email := s.sessionEmail(c)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
		return
	}
	account := s.account(email)
	if account != nil && account.Organization {
		c.JSON(http.StatusOK, organizationPayload(email))
		return
	}
	c.JSON(http.StatusOK, memberPayload(email))
}

func (s *Server) setupInitiate(c *gin.Context) {
	if s.sessionEmail(c) == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"qr_code":      "data:image/png;base64,c3R1Yg==",
		"backup_codes": []string{ValidBackupCode},
	})
}

func (s *Server) enable(c *gin.Context) {
	email := s.sessionEmail(c)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
		return
	}
	if c.PostForm("totp_token") != ValidOTP {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid code"})
		return
	}
	s.mu.Lock()
	s.enabled[email] = true
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"message": "enabled"})
}

func (s *Server) bypass(c *gin.Context) {
	email := s.sessionEmail(c)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
		return
	}
	s.mu.Lock()
	s.bypassed[email] = c.PostForm("bypass_status") == "true"
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"message": "bypassed"})
}

func (s *Server) verify(c *gin.Context) {
	email := c.PostForm("login")
	account := s.account(email)
	if account == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid code"})
		return
	}
	otp := c.PostForm("totp_token")
	backup := c.PostForm("backup_code")
	if otp != ValidOTP && backup != ValidBackupCode {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid code"})
		return
	}
	s.issueCookie(c, email)
	payload := gin.H{"expires_at": time.Now().Add(24 * time.Hour).Format(time.RFC3339)}
	if account.Organization {
		payload["organization"] = organizationPayload(email)
	} else {
		payload["user"] = memberPayload(email)
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) status(c *gin.Context) {
	email := s.sessionEmail(c)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"enabled": s.enabled[email], "bypass": s.bypassed[email]})
}

func (s *Server) randomEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	size := s.opts.PageSize
	total := len(s.opts.Events)
	pages := (total + size - 1) / size

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	events := s.opts.Events[start:end]
	if events == nil {
		events = []Event{}
	}

	c.JSON(http.StatusOK, gin.H{
		"events":     events,
		"pagination": gin.H{"page": page, "pages": pages, "total": total},
	})
}

func (s *Server) createRSVP(c *gin.Context) {
	if s.sessionEmail(c) == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "rsvp recorded"})
}
