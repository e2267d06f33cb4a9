package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultForecastURL = "https://api.open-meteo.com/v1/forecast"

// Current 현재 날씨
type Current struct {
	Code        int     `json:"code"`
	Label       string  `json:"label"`
	Temperature float64 `json:"temperature"`
}

type forecastResponse struct {
	CurrentWeather *struct {
		Temperature float64 `json:"temperature"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
}

// Client Open-Meteo 예보 API 클라이언트 (API 키 불필요)
type Client struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = defaultForecastURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, timeout: timeout, client: httpClient}
}

// Current fetches the current weather at the given coordinate
func (c *Client) Current(ctx context.Context, lat, lon float64) (*Current, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	params.Set("current_weather", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Open-Meteo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open-meteo returned status %d", resp.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if body.CurrentWeather == nil {
		return nil, fmt.Errorf("current_weather missing in response")
	}

	return &Current{
		Code:        body.CurrentWeather.WeatherCode,
		Label:       Describe(body.CurrentWeather.WeatherCode),
		Temperature: body.CurrentWeather.Temperature,
	}, nil
}

// Describe WMO 날씨 코드를 한국어 설명으로 변환
func Describe(code int) string {
	switch {
	case code == 0:
		return "맑음 ☀️"
	case code >= 1 && code <= 3:
		return "구름 ⛅"
	case code >= 45 && code <= 48:
		return "안개 🌫️"
	case code >= 51 && code <= 67:
		return "비 🌧️"
	case code >= 71 && code <= 77:
		return "눈 ☃️"
	case code >= 80 && code <= 82:
		return "소나기 ☔"
	case code >= 95 && code <= 99:
		return "천둥번개 ⛈️"
	default:
		return "흐림 ☁️"
	}
}
