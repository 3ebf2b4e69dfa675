package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/naveenspark/mdd/pkg/domain"
)

// TokenSource yields the bearer token attached to every request.
// An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Get() (string, bool)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Get implements TokenSource.
func (t StaticToken) Get() (string, bool) {
	return string(t), t != ""
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is the payload for editing the current user's profile.
type UpdateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CreateArticleRequest is the payload for publishing an article.
type CreateArticleRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	ThemeID int64  `json:"themeId"`
}

// CreateCommentRequest is the payload for commenting on an article.
type CreateCommentRequest struct {
	Content   string `json:"content"`
	UserID    int64  `json:"userId"`
	ArticleID int64  `json:"articleId"`
}

// Client is the platform API client.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	log        logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP transport timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithRateLimit throttles outgoing requests to r per second with the given burst.
// A zero rate disables throttling.
func WithRateLimit(r float64, burst int) Option {
	return func(c *Client) {
		if r <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a new API client. baseURL is the server root, e.g.
// "http://localhost:8080"; tokens may be nil for anonymous use.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(10, 20), // 10 req/sec, burst of 20
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- Auth ---

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, usernameOrEmail, password string) (string, error) {
	body := map[string]string{"usernameOrEmail": usernameOrEmail, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.post(ctx, "/api/auth/login", body, &resp); err != nil {
		return "", fmt.Errorf("client.Login: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("client.Login: %w", ErrNoToken)
	}
	return resp.Token, nil
}

// Register creates a new account. It does not log the user in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if err := c.post(ctx, "/api/auth/register", req, nil); err != nil {
		return fmt.Errorf("client.Register: %w", err)
	}
	return nil
}

// --- Current user ---

// GetMe returns the authenticated user's profile with its subscriptions.
func (c *Client) GetMe(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/api/me", &u); err != nil {
		return nil, fmt.Errorf("client.GetMe: %w", err)
	}
	return &u, nil
}

// UpdateMe edits the authenticated user's username and email.
func (c *Client) UpdateMe(ctx context.Context, req UpdateUserRequest) (*domain.User, error) {
	var u domain.User
	if err := c.doRequest(ctx, http.MethodPut, "/api/update", req, &u); err != nil {
		return nil, fmt.Errorf("client.UpdateMe: %w", err)
	}
	return &u, nil
}

// --- Themes ---

// ListThemes returns the full theme catalog.
func (c *Client) ListThemes(ctx context.Context) ([]domain.Theme, error) {
	var themes []domain.Theme
	if err := c.get(ctx, "/api/themes", &themes); err != nil {
		return nil, fmt.Errorf("client.ListThemes: %w", err)
	}
	return themes, nil
}

// GetTheme fetches a single theme by ID.
func (c *Client) GetTheme(ctx context.Context, id int64) (*domain.Theme, error) {
	var theme domain.Theme
	if err := c.get(ctx, "/api/theme/"+idPath(id), &theme); err != nil {
		return nil, fmt.Errorf("client.GetTheme: %w", err)
	}
	return &theme, nil
}

// Subscribe adds the theme to the current user's subscriptions.
func (c *Client) Subscribe(ctx context.Context, themeID int64) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/subscribe/"+idPath(themeID), struct{}{}, nil); err != nil {
		return fmt.Errorf("client.Subscribe: %w", err)
	}
	return nil
}

// Unsubscribe removes the theme from the current user's subscriptions.
func (c *Client) Unsubscribe(ctx context.Context, themeID int64) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/unsubscribe/"+idPath(themeID), nil, nil); err != nil {
		return fmt.Errorf("client.Unsubscribe: %w", err)
	}
	return nil
}

// --- Articles ---

// ListArticles returns the feed of articles in the current user's subscribed themes.
func (c *Client) ListArticles(ctx context.Context) ([]domain.Article, error) {
	var articles []domain.Article
	if err := c.get(ctx, "/api/articles", &articles); err != nil {
		return nil, fmt.Errorf("client.ListArticles: %w", err)
	}
	return articles, nil
}

// GetArticle fetches a single article by ID.
func (c *Client) GetArticle(ctx context.Context, id int64) (*domain.Article, error) {
	var article domain.Article
	if err := c.get(ctx, "/api/article/"+idPath(id), &article); err != nil {
		return nil, fmt.Errorf("client.GetArticle: %w", err)
	}
	return &article, nil
}

// CreateArticle publishes a new article authored by the current user.
func (c *Client) CreateArticle(ctx context.Context, req CreateArticleRequest) (*domain.Article, error) {
	var created domain.Article
	if err := c.post(ctx, "/api/article", req, &created); err != nil {
		return nil, fmt.Errorf("client.CreateArticle: %w", err)
	}
	return &created, nil
}

// --- Comments ---

// ListComments returns the comments of an article.
func (c *Client) ListComments(ctx context.Context, articleID int64) ([]domain.Comment, error) {
	var comments []domain.Comment
	if err := c.get(ctx, "/api/comments/article/"+idPath(articleID), &comments); err != nil {
		return nil, fmt.Errorf("client.ListComments: %w", err)
	}
	return comments, nil
}

// CreateComment posts a comment on an article.
func (c *Client) CreateComment(ctx context.Context, req CreateCommentRequest) (*domain.Comment, error) {
	var created domain.Comment
	if err := c.post(ctx, "/api/comments/comment", req, &created); err != nil {
		return nil, fmt.Errorf("client.CreateComment: %w", err)
	}
	return &created, nil
}

func idPath(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if tok, ok := c.tokens.Get(); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{"request_id": reqID, "method": method, "path": path}).
			WithError(err).Debug("api request failed")
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	c.log.WithFields(logrus.Fields{
		"request_id": reqID,
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"elapsed":    time.Since(start).String(),
	}).Debug("api request")

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			if apiErr.Message != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
			}
			if apiErr.Error != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
			}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}
