// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/wneessen/osm2csv/internal/geocode"
	"github.com/wneessen/osm2csv/internal/http"
)

const (
	APIEndpoint      = "https://nominatim.openstreetmap.org"
	APITimeout       = time.Second * 10
	DefaultRateLimit = 1.0
	name             = "osm-nominatim"
	reversePath      = "/reverse"
)

type Nominatim struct {
	endpoint string
	email    string
	http     *http.Client
	lang     language.Tag
	limiter  *rate.Limiter
	timeout  time.Duration
}

// Option configures the Nominatim provider.
type Option func(*Nominatim)

type ReverseResult struct {
	APILat      string            `json:"lat"`
	APILon      string            `json:"lon"`
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
	Error       json.RawMessage   `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// WithEndpoint sets the base URL of a self-hosted Nominatim instance.
func WithEndpoint(endpoint string) Option {
	return func(n *Nominatim) {
		if endpoint != "" {
			n.endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithEmail sets the contact address Nominatim asks bulk users to provide.
func WithEmail(email string) Option {
	return func(n *Nominatim) {
		n.email = email
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(n *Nominatim) {
		if timeout > 0 {
			n.timeout = timeout
		}
	}
}

// WithRateLimit sets the maximum number of requests per second. A value <= 0
// disables pacing.
func WithRateLimit(rps float64) Option {
	return func(n *Nominatim) {
		if rps <= 0 {
			n.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		n.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

func New(client *http.Client, lang language.Tag, opts ...Option) *Nominatim {
	n := &Nominatim{
		endpoint: APIEndpoint,
		http:     client,
		lang:     lang,
		limiter:  rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		timeout:  APITimeout,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Nominatim) Name() string {
	return name
}

func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (geocode.Address, error) {
	var result ReverseResult
	var err error

	if err = n.limiter.Wait(ctx); err != nil {
		return geocode.Address{}, fmt.Errorf("failed to wait for Nominatim rate limiter: %w", err)
	}

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("addressdetails", "1")
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("accept-language", n.lang.String())
	if n.email != "" {
		query.Set("email", n.email)
	}

	status, err := n.http.GetWithTimeout(ctx, n.endpoint+reversePath, &result, query, nil, n.timeout)
	if err != nil {
		return geocode.Address{}, fmt.Errorf("failed to fetch reverse address details from Nominatim API: %w", err)
	}
	if msg := errorMessage(result.Error); msg != "" {
		if status >= 400 && status != 404 {
			return geocode.Address{}, fmt.Errorf("Nominatim API returned status %d: %s", status, msg)
		}
		return geocode.Address{}, fmt.Errorf("%w (%f, %f): %s", geocode.ErrNoResult, lat, lon, msg)
	}
	if status >= 400 {
		return geocode.Address{}, fmt.Errorf("Nominatim API returned unexpected status %d", status)
	}
	if result.Address == nil {
		return geocode.Address{}, fmt.Errorf("%w (%f, %f)", geocode.ErrNoResult, lat, lon)
	}

	// Fill the geocode.Address struct
	address := geocode.Address{
		AddressFound: true,
		DisplayName:  result.DisplayName,
		Fields:       result.Address,
	}
	address.Latitude, err = strconv.ParseFloat(result.APILat, 64)
	if err != nil {
		return geocode.Address{}, fmt.Errorf("failed to parse latitude from Nominatim API response: %w", err)
	}
	address.Longitude, err = strconv.ParseFloat(result.APILon, 64)
	if err != nil {
		return geocode.Address{}, fmt.Errorf("failed to parse longitude from Nominatim API response: %w", err)
	}

	return address, nil
}

// errorMessage extracts the error text. Nominatim reports errors either as a
// plain string or as an object with code and message.
func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return msg
	}
	var apiErr apiError
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	return string(raw)
}
