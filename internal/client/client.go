// internal/client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"finance-tracker/internal/apierr"
	"finance-tracker/internal/domain"
	"finance-tracker/internal/reconcile"
)

// Client talks to the finance-tracker REST API.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

var _ reconcile.Remote = (*Client)(nil)

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// WithToken returns a copy of the client that authenticates as the token's user.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) Token() string {
	return c.token
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Register creates an account and returns a client logged in as it.
func (c *Client) Register(ctx context.Context, username, password string) (*Client, error) {
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", credentials{username, password}, &resp); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return c.WithToken(resp.Token), nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*Client, error) {
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", credentials{username, password}, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return c.WithToken(resp.Token), nil
}

func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var u domain.User
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u)
	return u, err
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var cats []domain.Category
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, &cats); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (c *Client) CreateCategory(ctx context.Context, in domain.CategoryInput) (domain.Category, error) {
	var cat domain.Category
	err := c.do(ctx, http.MethodPost, "/api/categories", in, &cat)
	return cat, err
}

type transactionBody struct {
	Type       domain.Kind `json:"type"`
	Amount     string      `json:"amount"`
	Date       string      `json:"date"`
	CategoryID string      `json:"categoryId"`
	Note       string      `json:"note,omitempty"`
}

func (c *Client) CreateTransaction(ctx context.Context, in domain.TransactionInput) (domain.Transaction, error) {
	body := transactionBody{
		Type:       in.Kind,
		Amount:     in.Amount.String(),
		Date:       in.OccurredOn.UTC().Format(time.RFC3339),
		CategoryID: in.CategoryID.String(),
		Note:       in.Note,
	}
	var t domain.Transaction
	err := c.do(ctx, http.MethodPost, "/api/transactions", body, &t)
	return t, err
}

func (c *Client) CreateAsset(ctx context.Context, in domain.AssetInput) (domain.Asset, error) {
	var a domain.Asset
	err := c.do(ctx, http.MethodPost, "/api/investments/assets", in, &a)
	return a, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// decodeError turns an error envelope into *apierr.Error.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var env apierr.Envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Error == nil {
		return &apierr.Error{Code: apierr.CodeInternal, Message: fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(raw))}
	}
	return env.Error
}

// IsCode reports whether err is an API error with the given code.
func IsCode(err error, code string) bool {
	var apiErr *apierr.Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}
