package util

import (
	"math"
	"strings"
)

// StarRating 평균 평점을 별 문자열로 변환 (반올림, 0~5개)
func StarRating(avg float64) string {
	n := int(math.Round(avg))
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("⭐", n)
}

// RoundRating 소수점 첫째 자리까지 반올림
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
