// Package geocode wraps the OpenRouteService reverse-geocoding API. It is
// a presentation-only collaborator: a failed or missing lookup degrades to
// an empty label and must never abort telemetry queries.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://api.openrouteservice.org"

// ErrNoAPIKey is returned by Directions when the client has no key.
// ReverseGeocode degrades silently instead; path lookups cannot.
var ErrNoAPIKey = errors.New("openrouteservice api key not configured")

// Client calls ORS /geocode/reverse. The API key is injected; a client
// built with an empty key answers every lookup with an empty label.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

type reverseResponse struct {
	Features []struct {
		Properties struct {
			Label string `json:"label"`
		} `json:"properties"`
	} `json:"features"`
}

// ReverseGeocode looks up a human-readable label for the point. The label
// is empty (never an error) when the key is unset, the service fails, or
// no feature comes back.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) string {
	if c == nil || c.apiKey == "" {
		return ""
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("point.lat", fmt.Sprintf("%f", lat))
	params.Set("point.lon", fmt.Sprintf("%f", lon))
	params.Set("size", "1")
	params.Set("sources", "osm")

	endpoint := c.baseURL + "/geocode/reverse?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		logrus.WithError(err).Warn("geocode: building reverse request failed")
		return ""
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logrus.WithError(err).Warn("geocode: reverse lookup failed")
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logrus.WithField("status", resp.StatusCode).Warn("geocode: reverse lookup rejected")
		return ""
	}

	var parsed reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		logrus.WithError(err).Warn("geocode: decoding reverse response failed")
		return ""
	}
	if len(parsed.Features) == 0 {
		return ""
	}
	return parsed.Features[0].Properties.Label
}

type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Directions asks ORS for a driving-car path between two points and
// returns its coordinates as [lon, lat] pairs. Unlike ReverseGeocode this
// surfaces failures: callers build data from the path, not labels.
func (c *Client) Directions(ctx context.Context, startLon, startLat, endLon, endLat float64) ([][]float64, error) {
	if c == nil || c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("start", fmt.Sprintf("%f,%f", startLon, startLat))
	params.Set("end", fmt.Sprintf("%f,%f", endLon, endLat))

	endpoint := c.baseURL + "/v2/directions/driving-car?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directions lookup rejected: status %d", resp.StatusCode)
	}

	var parsed directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if len(parsed.Features) == 0 {
		return nil, errors.New("directions response has no features")
	}
	return parsed.Features[0].Geometry.Coordinates, nil
}
