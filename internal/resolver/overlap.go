package resolver

import (
	"strings"

	"github.com/ugd-resolver/internal/normalizer"
)

// overlaps so khớp hai chiều: chuỗi con theo cả hai hướng, hoặc cùng gốc từ
// ("есильский" ~ "есильское").
func overlaps(token, term string) bool {
	if token == "" || term == "" {
		return false
	}
	return strings.Contains(token, term) ||
		strings.Contains(term, token) ||
		normalizer.SameStem(token, term)
}

// anyOverlap true nếu một token bất kỳ khớp term
func anyOverlap(tokens []string, term string) bool {
	for _, token := range tokens {
		if overlaps(token, term) {
			return true
		}
	}
	return false
}
