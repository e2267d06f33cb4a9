package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

const kakaoAddressURL = "https://dapi.kakao.com/v2/local/search/address.json"

// kakaoAddressResponse Kakao 주소 검색 API 응답
type kakaoAddressResponse struct {
	Documents []struct {
		AddressName string `json:"address_name"`
		X           string `json:"x"` // longitude
		Y           string `json:"y"` // latitude
		RoadAddress *struct {
			AddressName string `json:"address_name"`
		} `json:"road_address"`
	} `json:"documents"`
	Meta struct {
		TotalCount int `json:"total_count"`
	} `json:"meta"`
}

// KakaoProvider Kakao Local API 주소 검색
// https://developers.kakao.com/docs/latest/ko/local/dev-guide#address-coord
type KakaoProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewKakaoProvider(apiKey, baseURL string, client *http.Client) *KakaoProvider {
	if baseURL == "" {
		baseURL = kakaoAddressURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &KakaoProvider{apiKey: apiKey, baseURL: baseURL, client: client}
}

func (p *KakaoProvider) Name() string { return "kakao" }

func (p *KakaoProvider) Lookup(ctx context.Context, query string) (*Result, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("KAKAO_CLIENT_ID not set in environment")
	}

	params := url.Values{}
	params.Add("query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Authorization", fmt.Sprintf("KakaoAK %s", p.apiKey))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Kakao API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kakao API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result kakaoAddressResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if result.Meta.TotalCount == 0 || len(result.Documents) == 0 {
		return nil, nil
	}

	doc := result.Documents[0]
	lat, errLat := strconv.ParseFloat(doc.Y, 64)
	lon, errLon := strconv.ParseFloat(doc.X, 64)
	if errLat != nil || errLon != nil {
		return nil, fmt.Errorf("no coordinates in response")
	}

	// 도로명 주소 우선
	cleaned := doc.AddressName
	if doc.RoadAddress != nil && doc.RoadAddress.AddressName != "" {
		cleaned = doc.RoadAddress.AddressName
	}

	return &Result{CleanedAddress: cleaned, Latitude: lat, Longitude: lon}, nil
}
