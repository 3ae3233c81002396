// Package backend talks to the tariften WordPress REST API. It covers the
// pantry sync endpoints, the receipt analyzer, and the recipe/AI routes.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/tariften/kitchenpilot/internal/domain"
)

// Compile-time interface check.
var _ domain.PantryBackend = (*Client)(nil)

// Client is a resty-backed implementation of domain.PantryBackend.
type Client struct {
	httpClient *resty.Client
	log        *zap.SugaredLogger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.SetTimeout(d)
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New builds an API client. baseURL is the site root; the wp-json prefix
// and namespace are appended here. An empty token leaves requests
// unauthenticated, which the pantry endpoints reject with 401.
func New(baseURL, token string, opts ...Option) *Client {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/") + "/wp-json/tariften/v1").
		SetHeader("Content-Type", "application/json").
		SetTimeout(20 * time.Second)
	if token != "" {
		restyClient.SetHeader("Authorization", "Bearer "+token)
	}

	c := &Client{
		httpClient: restyClient,
		log:        zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiError is the WP REST error envelope.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// checkStatus maps an HTTP response to the domain error taxonomy.
// 401/403 surface as ErrUnauthorized so callers can flip into the
// logged-out state instead of retrying.
func checkStatus(resp *resty.Response, apiErr *apiError, what string) error {
	code := resp.StatusCode()
	if code < http.StatusBadRequest {
		return nil
	}
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return fmt.Errorf("%s: %w", what, domain.ErrUnauthorized)
	}
	msg := apiErr.Message
	if msg == "" {
		msg = resp.Status()
	}
	return fmt.Errorf("%s: status %d: %s", what, code, msg)
}

type pantryPayload struct {
	Items []domain.PantryItem `json:"items"`
}

// FetchPantry retrieves the full pantry list for the signed-in user.
func (c *Client) FetchPantry(ctx context.Context) ([]domain.PantryItem, error) {
	result := new(pantryPayload)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Get("/pantry")
	if err != nil {
		return nil, fmt.Errorf("fetch pantry: %w", err)
	}
	if err := checkStatus(resp, apiErr, "fetch pantry"); err != nil {
		return nil, err
	}
	c.log.Debugw("pantry fetched", "items", len(result.Items))
	return result.Items, nil
}

// SavePantry replaces the server-side pantry with the given list. The
// endpoint is replace-all; partial updates are expressed by sending the
// whole mutated list.
func (c *Client) SavePantry(ctx context.Context, items []domain.PantryItem) error {
	if items == nil {
		items = []domain.PantryItem{}
	}
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(pantryPayload{Items: items}).
		SetError(apiErr).
		Post("/pantry/update")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSaveRejected, err)
	}
	if err := checkStatus(resp, apiErr, "save pantry"); err != nil {
		if code := resp.StatusCode(); code != http.StatusUnauthorized && code != http.StatusForbidden {
			return fmt.Errorf("%w: %v", domain.ErrSaveRejected, err)
		}
		return err
	}
	c.log.Debugw("pantry saved", "items", len(items))
	return nil
}

type analyzeRequest struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

type analyzeResponse struct {
	Items []domain.ScannedItem `json:"items"`
}

// AnalyzeReceipt sends receipt text or a base64 photo to the analyzer and
// returns the recognized items with their guessed expiry dates.
func (c *Client) AnalyzeReceipt(ctx context.Context, text, image string) ([]domain.ScannedItem, error) {
	result := new(analyzeResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(analyzeRequest{Text: text, Image: image}).
		SetResult(result).
		SetError(apiErr).
		Post("/pantry/analyze")
	if err != nil {
		return nil, fmt.Errorf("analyze receipt: %w", err)
	}
	if err := checkStatus(resp, apiErr, "analyze receipt"); err != nil {
		return nil, err
	}
	return result.Items, nil
}

type generateRequest struct {
	Ingredients string `json:"ingredients"`
}

type generateResponse struct {
	Title   string   `json:"title"`
	Steps   []string `json:"steps"`
	ChefTip string   `json:"chef_tip"`
}

type createRecipeResponse struct {
	ID   int    `json:"id"`
	Slug string `json:"slug"`
}

// GenerateRecipe asks the AI endpoint for a recipe built around the given
// ingredients, publishes it as a draft recipe post, and returns a ref the
// caller can open with FetchRecipe.
func (c *Client) GenerateRecipe(ctx context.Context, ingredients string) (*domain.RecipeRef, error) {
	generated := new(generateResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(generateRequest{Ingredients: ingredients}).
		SetResult(generated).
		SetError(apiErr).
		Post("/ai/generate")
	if err != nil {
		return nil, fmt.Errorf("generate recipe: %w", err)
	}
	if err := checkStatus(resp, apiErr, "generate recipe"); err != nil {
		return nil, err
	}

	created := new(createRecipeResponse)
	apiErr = new(apiError)
	resp, err = c.httpClient.R().
		SetContext(ctx).
		SetBody(generated).
		SetResult(created).
		SetError(apiErr).
		Post("/recipes/create")
	if err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	if err := checkStatus(resp, apiErr, "create recipe"); err != nil {
		return nil, err
	}
	return &domain.RecipeRef{ID: strconv.Itoa(created.ID), Slug: created.Slug}, nil
}

// wireRecipe is the search payload. Steps arrive either as plain strings
// or as objects with per-step timer metadata, depending on how old the
// recipe post is, so they decode through RawMessage.
type wireRecipe struct {
	ID      int               `json:"id"`
	Slug    string            `json:"slug"`
	Title   string            `json:"title"`
	Steps   []json.RawMessage `json:"steps"`
	ChefTip string            `json:"chef_tip"`
}

type wireStep struct {
	Content      string `json:"content"`
	TimerSeconds int    `json:"timer_seconds"`
}

// FetchRecipe looks a recipe up by slug. Missing recipes return
// ErrNotFound rather than an empty value.
func (c *Client) FetchRecipe(ctx context.Context, slug string) (*domain.Recipe, error) {
	result := new(wireRecipe)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("slug", slug).
		SetResult(result).
		SetError(apiErr).
		Get("/recipes/search")
	if err != nil {
		return nil, fmt.Errorf("fetch recipe %q: %w", slug, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("recipe %q: %w", slug, domain.ErrNotFound)
	}
	if err := checkStatus(resp, apiErr, "fetch recipe"); err != nil {
		return nil, err
	}
	if result.Slug == "" && len(result.Steps) == 0 {
		return nil, fmt.Errorf("recipe %q: %w", slug, domain.ErrNotFound)
	}

	recipe := &domain.Recipe{
		ID:      strconv.Itoa(result.ID),
		Slug:    result.Slug,
		Title:   result.Title,
		ChefTip: result.ChefTip,
	}
	for i, raw := range result.Steps {
		step, err := decodeStep(raw)
		if err != nil {
			return nil, fmt.Errorf("recipe %q step %d: %w", slug, i+1, err)
		}
		recipe.Steps = append(recipe.Steps, step)
	}
	return recipe, nil
}

// decodeStep accepts both step encodings and normalizes them.
func decodeStep(raw json.RawMessage) (domain.RecipeStep, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return domain.RecipeStep{Content: text}, nil
	}
	var obj wireStep
	if err := json.Unmarshal(raw, &obj); err != nil {
		return domain.RecipeStep{}, fmt.Errorf("decode step: %w", err)
	}
	return domain.RecipeStep{Content: obj.Content, TimerSeconds: obj.TimerSeconds}, nil
}
