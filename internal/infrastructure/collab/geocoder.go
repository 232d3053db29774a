package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sustaingain/backend/usecase"
)

// Geocoder reverse-geocodes coordinates against a Nominatim-style endpoint.
type Geocoder struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

func NewGeocoder(baseURL string, timeout time.Duration, logger *zap.Logger) *Geocoder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Geocoder{
		client:  &fasthttp.Client{ReadTimeout: timeout, WriteTimeout: timeout},
		baseURL: baseURL,
		timeout: timeout,
		logger:  logger,
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		Country string `json:"country"`
	} `json:"address"`
}

// Reverse resolves coordinates into a short human-readable location.
func (g *Geocoder) Reverse(_ context.Context, lat, lon float64) (string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/reverse?format=json&lat=%f&lon=%f", g.baseURL, lat, lon))
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := g.client.DoTimeout(req, resp, g.timeout); err != nil {
		return "", err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return "", fmt.Errorf("geocoder returned status %d", resp.StatusCode())
	}

	var parsed reverseResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", err
	}

	place := parsed.Address.City
	if place == "" {
		place = parsed.Address.Town
	}
	if place == "" {
		place = parsed.Address.Village
	}
	if place != "" && parsed.Address.Country != "" {
		return place + ", " + parsed.Address.Country, nil
	}
	return parsed.DisplayName, nil
}

var _ usecase.Geocoder = (*Geocoder)(nil)
