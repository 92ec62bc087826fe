package catalogservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент каталога услуг и барберов
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента каталога
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetService получает услугу с её длительностью и ценой
func (c *Client) GetService(ctx context.Context, serviceID int64) (*Service, error) {
	var service Service
	url := fmt.Sprintf("%s/internal/services/%d", c.baseURL, serviceID)

	if err := c.get(ctx, url, ErrServiceNotFound, &service); err != nil {
		c.log.Warn("GetService: service_id=%d failed: %v", serviceID, err)
		return nil, err
	}

	if service.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: service_id=%d has non-positive duration %d", ErrInvalidResponse, serviceID, service.DurationMinutes)
	}

	return &service, nil
}

// GetBarber получает барбера
func (c *Client) GetBarber(ctx context.Context, barberID int64) (*Barber, error) {
	var barber Barber
	url := fmt.Sprintf("%s/internal/barbers/%d", c.baseURL, barberID)

	if err := c.get(ctx, url, ErrBarberNotFound, &barber); err != nil {
		c.log.Warn("GetBarber: barber_id=%d failed: %v", barberID, err)
		return nil, err
	}

	return &barber, nil
}

func (c *Client) get(ctx context.Context, url string, notFound error, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		return fmt.Errorf("%w: invalid ID format", ErrInvalidResponse)
	case http.StatusNotFound:
		return notFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}
