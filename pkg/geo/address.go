package geo

import (
	"regexp"
	"strings"
)

var (
	parenPattern = regexp.MustCompile(`\([^)]*\)`)

	// "3 층", "3 F" -> "3층", "3F"
	floorSpacePattern = regexp.MustCompile(`(\d)\s+(층|[Ff])(\s|$)`)
	// "B 1", "지하 1", "산 21" -> "B1", "지하1", "산21"
	prefixSpacePattern = regexp.MustCompile(`(^|\s)(B|b|지하|산)\s+(\d)`)

	noiseTokenPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d+(층|[Ff])$`),                         // 3층, 3F
		regexp.MustCompile(`^[Bb]\d+층?$`),                           // B1, B1층
		regexp.MustCompile(`^지하\d*층?$`),                             // 지하, 지하1층
		regexp.MustCompile(`^[A-Za-z0-9가-힣-]*\d[A-Za-z0-9가-힣-]*동$`), // 101동, 가-1동
		regexp.MustCompile(`^[A-Za-z0-9-]*\d[A-Za-z0-9-]*호$`),       // 1203호
		regexp.MustCompile(`^(본|별|신|[A-Za-z0-9]+)관$`),               // 본관, A관
		regexp.MustCompile(`^산\d+(-\d+)?$`),                         // 산21-3
	}
)

// CleanAddress 층/호수/괄호 등 지오코딩에 방해되는 부분 제거
func CleanAddress(address string) string {
	s := parenPattern.ReplaceAllString(address, " ")
	s = floorSpacePattern.ReplaceAllString(s, "${1}${2}${3}")
	s = prefixSpacePattern.ReplaceAllString(s, "${1}${2}${3}")

	tokens := strings.Fields(s)
	kept := tokens[:0]
	for _, token := range tokens {
		if isNoiseToken(token) {
			continue
		}
		kept = append(kept, token)
	}
	return strings.Join(kept, " ")
}

func isNoiseToken(token string) bool {
	for _, p := range noiseTokenPatterns {
		if p.MatchString(token) {
			return true
		}
	}
	return false
}

// QueryCandidates 검색 순서: 전체 주소부터 끝 단어를 하나씩 제거 (최소 3단어까지)
// 2단어 이하 주소는 그대로 한 번만 시도
func QueryCandidates(cleaned string) []string {
	parts := strings.Fields(cleaned)
	if len(parts) == 0 {
		return nil
	}
	if len(parts) <= 2 {
		return []string{strings.Join(parts, " ")}
	}

	candidates := make([]string, 0, len(parts)-2)
	for n := len(parts); n > 2; n-- {
		candidates = append(candidates, strings.Join(parts[:n], " "))
	}
	return candidates
}
