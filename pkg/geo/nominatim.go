package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const nominatimSearchURL = "https://nominatim.openstreetmap.org/search"

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		State       string `json:"state"`
		City        string `json:"city"`
		Suburb      string `json:"suburb"`
		County      string `json:"county"`
		Road        string `json:"road"`
		HouseNumber string `json:"house_number"`
	} `json:"address"`
}

// NominatimProvider OpenStreetMap Nominatim 검색 (User-Agent 필수)
type NominatimProvider struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func NewNominatimProvider(baseURL, userAgent string, client *http.Client) *NominatimProvider {
	if baseURL == "" {
		baseURL = nominatimSearchURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &NominatimProvider{baseURL: baseURL, userAgent: userAgent, client: client}
}

func (p *NominatimProvider) Name() string { return "nominatim" }

func (p *NominatimProvider) Lookup(ctx context.Context, query string) (*Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")
	params.Set("accept-language", "ko")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Nominatim: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(places) == 0 {
		return nil, nil
	}

	place := places[0]
	lat, errLat := strconv.ParseFloat(place.Lat, 64)
	lon, errLon := strconv.ParseFloat(place.Lon, 64)
	if errLat != nil || errLon != nil {
		return nil, fmt.Errorf("invalid coordinates in response")
	}

	return &Result{
		CleanedAddress: composeAddress(place),
		Latitude:       lat,
		Longitude:      lon,
	}, nil
}

// composeAddress 시/도, 시/군/구, 도로명, 건물번호 순으로 재구성 (중복 제거)
func composeAddress(place nominatimPlace) string {
	a := place.Address
	var parts []string

	switch {
	case a.State != "":
		parts = append(parts, a.State)
	case a.City != "":
		parts = append(parts, a.City)
	}

	switch {
	case a.City != "" && len(parts) > 0 && !strings.Contains(parts[0], a.City):
		parts = append(parts, a.City)
	case a.Suburb != "":
		parts = append(parts, a.Suburb)
	case a.County != "":
		parts = append(parts, a.County)
	}

	if a.Road != "" {
		parts = append(parts, a.Road)
	}
	if a.HouseNumber != "" {
		parts = append(parts, a.HouseNumber)
	}

	seen := make(map[string]bool, len(parts))
	unique := parts[:0]
	for _, p := range parts {
		if !seen[p] {
			seen[p] = true
			unique = append(unique, p)
		}
	}
	return strings.Join(unique, " ")
}
