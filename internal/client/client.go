// Package client is a typed Go client for the movielist HTTP API.
//
// A Session is obtained only through Login and holds the authenticated
// account until Logout.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/movielist-back/internal/db"
	"github.com/Rogue-Bear-Innovations/movielist-back/internal/models"
)

const defaultTimeout = 10 * time.Second

var (
	ErrServerUnreachable = errors.New("cannot reach server")
	ErrLoggedOut         = errors.New("session is logged out")
)

// APIError carries the message text the server answered with.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

type Client struct {
	http *resty.Client
}

func New(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(defaultTimeout).
			SetHeader("Content-Type", "application/json"),
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	return send(req, method, path)
}

// send maps transport failures to ErrServerUnreachable and error statuses to
// *APIError.
func send(req *resty.Request, method, path string) (*resty.Response, error) {
	resp, err := req.
		SetError(&models.MessageResp{}).
		Execute(method, path)
	if err != nil {
		return nil, errors.Wrap(ErrServerUnreachable, err.Error())
	}
	if resp.IsError() {
		apiErr := &APIError{Status: resp.StatusCode(), Message: resp.String()}
		if msg, ok := resp.Error().(*models.MessageResp); ok && msg.Message != "" {
			apiErr.Message = msg.Message
		}
		return resp, apiErr
	}
	return resp, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (uint64, error) {
	result := models.RegisterResp{}
	_, err := c.do(ctx, http.MethodPost, "/registrar", models.RegisterReq{
		Name:     name,
		Email:    email,
		Password: password,
	}, &result)
	if err != nil {
		return 0, err
	}
	return result.UserID, nil
}

func (c *Client) VerifyEmail(ctx context.Context, email string) error {
	_, err := c.do(ctx, http.MethodPost, "/verificar-email", models.EmailReq{Email: email}, nil)
	return err
}

func (c *Client) ResetPassword(ctx context.Context, email, newPassword string) error {
	_, err := c.do(ctx, http.MethodPost, "/redefinir-senha", models.ResetPasswordReq{
		Email:       email,
		NewPassword: newPassword,
	}, nil)
	return err
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	result := models.LoginResp{}
	_, err := c.do(ctx, http.MethodPost, "/logar", models.LoginReq{
		Email:    email,
		Password: password,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &Session{client: c, account: result.Account, loggedIn: true}, nil
}

////////

type Session struct {
	client *Client

	mu       sync.RWMutex
	account  models.AccountResp
	loggedIn bool
}

func (s *Session) accountID() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loggedIn {
		return 0, ErrLoggedOut
	}
	return s.account.ID, nil
}

// Account returns the logged in account, or ErrLoggedOut.
func (s *Session) Account() (models.AccountResp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loggedIn {
		return models.AccountResp{}, ErrLoggedOut
	}
	return s.account, nil
}

func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = models.AccountResp{}
	s.loggedIn = false
}

// Lists returns the account's entries grouped by category. Every category is
// present in the result, possibly empty.
func (s *Session) Lists(ctx context.Context) (map[db.Category][]models.ListEntryResp, error) {
	id, err := s.accountID()
	if err != nil {
		return nil, err
	}

	entries := []models.ListEntryResp{}
	if _, err := s.client.do(ctx, http.MethodGet, "/api/listas/"+strconv.FormatUint(id, 10), nil, &entries); err != nil {
		return nil, err
	}

	grouped := make(map[db.Category][]models.ListEntryResp, len(db.Categories))
	for _, category := range db.Categories {
		grouped[category] = []models.ListEntryResp{}
	}
	for _, entry := range entries {
		category, err := db.ParseCategory(entry.Category)
		if err != nil {
			return nil, err
		}
		grouped[category] = append(grouped[category], entry)
	}
	return grouped, nil
}

// Add reports false when the movie was already in one of the lists.
func (s *Session) Add(ctx context.Context, movieID uint64, title string, posterPath *string, category db.Category) (bool, error) {
	id, err := s.accountID()
	if err != nil {
		return false, err
	}

	resp, err := s.client.do(ctx, http.MethodPost, "/api/listas", models.ListEntryReq{
		UserID:     id,
		MovieID:    movieID,
		Title:      title,
		PosterPath: posterPath,
		Category:   category.String(),
	}, nil)
	if err != nil {
		return false, err
	}
	return resp.StatusCode() == http.StatusCreated, nil
}

func (s *Session) Move(ctx context.Context, movieID uint64, category db.Category) error {
	id, err := s.accountID()
	if err != nil {
		return err
	}
	_, err = s.client.do(ctx, http.MethodPut, "/api/listas", models.ListChangeReq{
		UserID:   id,
		MovieID:  movieID,
		Category: category.String(),
	}, nil)
	return err
}

func (s *Session) Remove(ctx context.Context, movieID uint64, category db.Category) error {
	id, err := s.accountID()
	if err != nil {
		return err
	}
	req := s.client.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"userId":   strconv.FormatUint(id, 10),
			"movieId":  strconv.FormatUint(movieID, 10),
			"category": category.String(),
		})
	_, err = send(req, http.MethodDelete, "/api/listas")
	return err
}

func (s *Session) Search(ctx context.Context, term string) ([]json.RawMessage, error) {
	if _, err := s.accountID(); err != nil {
		return nil, err
	}

	results := []json.RawMessage{}
	req := s.client.http.R().
		SetContext(ctx).
		SetQueryParam("query", term).
		SetResult(&results)
	if _, err := send(req, http.MethodGet, "/api/search"); err != nil {
		return nil, err
	}
	return results, nil
}
