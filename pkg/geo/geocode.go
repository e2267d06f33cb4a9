package geo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fisa/matjip-backend/pkg/logger"
)

// ErrNotFound 모든 후보 주소로 좌표를 찾지 못함
var ErrNotFound = errors.New("address not found")

// Result 지오코딩 결과
type Result struct {
	CleanedAddress string  `json:"cleaned_address"`
	Latitude       float64 `json:"lat"`
	Longitude      float64 `json:"lon"`
}

// Provider 단일 질의 지오코딩 API (결과 없음은 nil, nil)
type Provider interface {
	Name() string
	Lookup(ctx context.Context, query string) (*Result, error)
}

// Geocoder 주소 정제 후 후보 주소를 차례로 질의
type Geocoder struct {
	provider Provider
	timeout  time.Duration
}

func NewGeocoder(provider Provider, timeout time.Duration) *Geocoder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Geocoder{provider: provider, timeout: timeout}
}

// Geocode returns the first candidate the provider resolves, or ErrNotFound
func (g *Geocoder) Geocode(ctx context.Context, address string) (*Result, error) {
	cleaned := CleanAddress(address)
	candidates := QueryCandidates(cleaned)
	if len(candidates) == 0 {
		return nil, ErrNotFound
	}

	var lastErr error
	for _, query := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
		result, err := g.provider.Lookup(attemptCtx, query)
		cancel()

		if err != nil {
			// API 오류는 다음 후보로 넘어감
			logger.Warn("Geocode lookup failed", map[string]interface{}{
				"provider": g.provider.Name(),
				"query":    query,
				"error":    err.Error(),
			})
			lastErr = err
			continue
		}
		if result == nil {
			continue
		}
		if result.CleanedAddress == "" {
			result.CleanedAddress = query
		}

		logger.Debug("Geocode lookup succeeded", map[string]interface{}{
			"provider": g.provider.Name(),
			"query":    query,
			"lat":      result.Latitude,
			"lon":      result.Longitude,
		})
		return result, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, lastErr)
	}
	return nil, ErrNotFound
}
