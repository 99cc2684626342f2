package category

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/controlefinanceiro/lancamentos/internal/models"
)

type categoryResponse struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// HTTPDirectory queries GET {baseURL}/categoryById?id=<id>.
type HTTPDirectory struct {
	baseURL string
	client  *http.Client
}

func NewHTTPDirectory(baseURL string, timeout time.Duration) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (d *HTTPDirectory) fetch(ctx context.Context, id int64) (*categoryResponse, error) {
	endpoint := d.baseURL + "/categoryById?" + url.Values{"id": {strconv.FormatInt(id, 10)}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		log.Printf("[CATEGORY] Lookup of category %d failed: %v", id, err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[CATEGORY] Category %d lookup returned status %d", id, resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrNoCategory, resp.StatusCode)
	}

	var body categoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrNoCategory, err)
	}
	return &body, nil
}

func (d *HTTPDirectory) ResolveName(ctx context.Context, id int64) (string, error) {
	c, err := d.fetch(ctx, id)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(c.Name) == "" {
		return "", fmt.Errorf("%w: category %d has no name", ErrNoCategory, id)
	}
	return c.Name, nil
}

func (d *HTTPDirectory) ResolveKind(ctx context.Context, id int64) (models.Kind, error) {
	c, err := d.fetch(ctx, id)
	if err != nil {
		return "", err
	}
	kind, err := models.ParseKind(c.Kind)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoCategory, err)
	}
	return kind, nil
}

var _ Directory = (*HTTPDirectory)(nil)
