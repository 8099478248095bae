package directory

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/datametrics/matchdesk/internal/domain/staff"
	"github.com/datametrics/matchdesk/internal/platform/cache"
	"github.com/datametrics/matchdesk/internal/platform/logging"
	"github.com/datametrics/matchdesk/internal/usecase"
)

const usersCacheKey = "directory:assignable-users"

// Client talks to the account service: token introspection for the auth
// gate and the staff listing behind the assignee selectors. Both lookups
// are cached with separate TTLs; principals turn over much faster than the
// staff roster.
type Client struct {
	httpClient    *http.Client
	introspectURL string
	usersURL      string
	principals    *cache.Store
	users         *cache.Store
	logger        *logging.Logger
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	IntrospectPath string
	UsersPath      string
	PrincipalTTL   time.Duration
	UsersTTL       time.Duration
	Logger         *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.PrincipalTTL <= 0 {
		cfg.PrincipalTTL = 30 * time.Second
	}
	if cfg.UsersTTL <= 0 {
		cfg.UsersTTL = 5 * time.Minute
	}

	return &Client{
		httpClient:    cfg.HTTPClient,
		introspectURL: buildURL(cfg.BaseURL, cfg.IntrospectPath),
		usersURL:      buildURL(cfg.BaseURL, cfg.UsersPath),
		principals:    cache.NewStore(cfg.PrincipalTTL),
		users:         cache.NewStore(cfg.UsersTTL),
		logger:        cfg.Logger,
	}
}

// VerifyAccessToken introspects a bearer token and returns the principal it
// belongs to. Verified principals are cached briefly under the token hash so
// bursts of requests do not hammer the account service.
func (c *Client) VerifyAccessToken(ctx context.Context, token string) (staff.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return staff.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	cacheKey := "directory:principal:" + hashToken(token)
	if cached, ok := c.principals.Get(ctx, cacheKey); ok {
		if principal, valid := cached.(staff.Principal); valid {
			return principal, nil
		}
	}

	principal, err := c.introspect(ctx, token)
	if err != nil {
		return staff.Principal{}, err
	}

	c.principals.Set(ctx, cacheKey, principal)
	return principal, nil
}

func (c *Client) introspect(ctx context.Context, token string) (staff.Principal, error) {
	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return staff.Principal{}, fmt.Errorf("marshal introspect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return staff.Principal{}, fmt.Errorf("create introspect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return staff.Principal{}, fmt.Errorf("request introspection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return staff.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return staff.Principal{}, fmt.Errorf("read introspect response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "introspection non-200", "status_code", resp.StatusCode)
		return staff.Principal{}, fmt.Errorf("introspection failed with status %d", resp.StatusCode)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return staff.Principal{}, fmt.Errorf("unmarshal introspect response: %w", err)
	}

	if !decoded.Active {
		return staff.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return staff.Principal{}, fmt.Errorf("invalid introspect response: user_id is empty")
	}

	return staff.Principal{
		UserID: decoded.UserID,
		Email:  decoded.Email,
	}, nil
}

// ListAssignableUsers fetches the staff directory and keeps only the roles
// fixtures can be assigned to. Concurrent cold-cache calls collapse into a
// single upstream fetch.
func (c *Client) ListAssignableUsers(ctx context.Context) ([]staff.User, error) {
	value, err := c.users.GetOrLoad(ctx, usersCacheKey, func(ctx context.Context) (any, error) {
		return c.fetchAssignableUsers(ctx)
	})
	if err != nil {
		return nil, err
	}

	users, ok := value.([]staff.User)
	if !ok {
		return nil, fmt.Errorf("unexpected cache payload for %s", usersCacheKey)
	}
	return append([]staff.User(nil), users...), nil
}

func (c *Client) fetchAssignableUsers(ctx context.Context) ([]staff.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.usersURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create users request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request staff directory: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read users response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "staff directory non-200", "status_code", resp.StatusCode)
		return nil, fmt.Errorf("staff directory failed with status %d", resp.StatusCode)
	}

	var decoded []directoryUser
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal users response: %w", err)
	}

	users := make([]staff.User, 0, len(decoded))
	for _, entry := range decoded {
		if strings.TrimSpace(entry.ID) == "" {
			continue
		}
		if !staff.IsAssignableRole(entry.Role) {
			continue
		}
		users = append(users, staff.User{
			ID:       entry.ID,
			Email:    entry.Email,
			FullName: entry.FullName,
			Role:     entry.Role,
		})
	}
	return users, nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type directoryUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func buildURL(baseURL, path string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return baseURL + path
}
