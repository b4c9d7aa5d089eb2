// Package client habla con la API de cotizaciones por HTTP. Lo usan la CLI y
// el editor de grillas en terminal.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "quotectl/1.0"
)

// APIError respuesta de error de la API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, e.Code)
	}
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
}

// IsStatus indica si err es un APIError con el status dado.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client cliente JSON con token Bearer.
type Client struct {
	baseURL *url.URL
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New crea un cliente contra server (http://host:puerto). timeout <= 0 usa el
// valor por defecto.
func New(server, token string, timeout time.Duration) (*Client, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		return nil, fmt.Errorf("client: servidor vacío")
	}
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}
	base, err := url.Parse(strings.TrimRight(server, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: servidor inválido %q: %w", server, err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{baseURL: base, http: &http.Client{Timeout: timeout}, token: token}, nil
}

// SetToken reemplaza el token Bearer.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token devuelve el token actual.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// ── Autenticación ────────────────────────────────────────────────────────────

// Login inicia sesión y guarda el token recibido.
func (c *Client) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, dto.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// ── Catálogo y partes ────────────────────────────────────────────────────────

// Library página del catálogo de partes.
func (c *Client) Library(ctx context.Context, page, perPage int, search string) (*dto.PartLibraryListResponse, error) {
	q := url.Values{}
	if search = strings.TrimSpace(search); search != "" {
		q.Set("search", search)
	}
	var out dto.PartLibraryListResponse
	path := "/api/Part/" + strconv.Itoa(page) + "/" + strconv.Itoa(perPage)
	if err := c.do(ctx, http.MethodGet, path, q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// QuoteParts partes de una cotización.
func (c *Client) QuoteParts(ctx context.Context, quoteID string) ([]dto.QuotePartResponse, error) {
	var out []dto.QuotePartResponse
	if err := c.do(ctx, http.MethodGet, "/api/part/quote/"+url.PathEscape(quoteID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ── Cotizaciones ─────────────────────────────────────────────────────────────

// Quotes lista cotizaciones con búsqueda y paginación.
func (c *Client) Quotes(ctx context.Context, search string, page, perPage int) (*dto.QuoteListResponse, error) {
	q := url.Values{}
	if search = strings.TrimSpace(search); search != "" {
		q.Set("search", search)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("perPage", strconv.Itoa(perPage))
	}
	var out dto.QuoteListResponse
	if err := c.do(ctx, http.MethodGet, "/api/Quotation", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Summary resumen de costos de la cotización.
func (c *Client) Summary(ctx context.Context, quoteID string) (*dto.SummaryResponse, error) {
	var out dto.SummaryResponse
	if err := c.do(ctx, http.MethodGet, "/api/Quotation/"+url.PathEscape(quoteID)+"/summary", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Progress avance de recepción e instalación.
func (c *Client) Progress(ctx context.Context, quoteID string) (*dto.ProgressResponse, error) {
	var out dto.ProgressResponse
	if err := c.do(ctx, http.MethodGet, "/installation/"+url.PathEscape(quoteID)+"/progress", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Issue emite el PDF de la cotización y lo archiva.
func (c *Client) Issue(ctx context.Context, quoteID string) (*dto.DocumentResponse, error) {
	var out dto.DocumentResponse
	if err := c.do(ctx, http.MethodPost, "/api/Quotation/"+url.PathEscape(quoteID)+"/issue", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Export descarga la grilla como libro xlsx.
func (c *Client) Export(ctx context.Context, scope, kind, quoteID string) ([]byte, error) {
	return c.download(ctx, "/api/export/"+url.PathEscape(scope)+"/"+url.PathEscape(kind)+"/"+url.PathEscape(quoteID))
}

// ── Grillas ──────────────────────────────────────────────────────────────────

// Grid lee una grilla de definición o de conteo.
func (c *Client) Grid(ctx context.Context, scope, kind, quoteID string) (*dto.GridResponse, error) {
	var out dto.GridResponse
	path := "/api/" + url.PathEscape(scope) + "/" + url.PathEscape(kind) + "/" + url.PathEscape(quoteID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCell escribe una celda. En definición EntityID es la parte de la
// cotización; en conteo es la fila.
func (c *Client) UpdateCell(ctx context.Context, scope, kind string, in dto.UpdateCellRequest) (*dto.CellResponse, error) {
	var path string
	switch scope {
	case "definition":
		path = "/api/part/" + url.PathEscape(kind) + "/updatePart"
	case "count":
		path = "/api/row/" + url.PathEscape(kind) + "/update"
	default:
		return nil, fmt.Errorf("client: scope desconocido %q", scope)
	}
	var out dto.CellResponse
	if err := c.do(ctx, http.MethodPut, path, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddColumn crea una columna (bahía, frameline, flue o fila).
func (c *Client) AddColumn(ctx context.Context, kind, name, quoteID string) (*dto.ColumnCreatedResponse, error) {
	var out dto.ColumnCreatedResponse
	path := "/api/definition/" + url.PathEscape(kind) + "/" + url.PathEscape(name) + "/" + url.PathEscape(quoteID)
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteColumn elimina una columna y sus celdas.
func (c *Client) DeleteColumn(ctx context.Context, kind, quoteID, columnID string) error {
	q := url.Values{"columnId": {columnID}}
	return c.do(ctx, http.MethodDelete, "/api/Definition/"+url.PathEscape(kind)+"/"+url.PathEscape(quoteID), q, nil, nil)
}

// ── Transporte ───────────────────────────────────────────────────────────────

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	// path llega con los segmentos ya escapados.
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("client: crear request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: serializar body: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decodificar respuesta: %w", err)
	}
	return nil
}

func (c *Client) download(ctx context.Context, path string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: GET %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return nil, decodeError(resp)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: leer descarga: %w", err)
	}
	return b, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body dto.ErrorResponse
	if json.Unmarshal(b, &body) == nil && body.Code != "" {
		apiErr.Code, apiErr.Message = body.Code, body.Message
		return apiErr
	}
	apiErr.Code = strings.ToUpper(strings.ReplaceAll(http.StatusText(resp.StatusCode), " ", "_"))
	apiErr.Message = strings.TrimSpace(string(b))
	return apiErr
}
