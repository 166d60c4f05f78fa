package normalizer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Khoảng trắng theo nghĩa rộng: ASCII, Unicode Z* (NBSP...) và BOM
var reSpaces = regexp.MustCompile(`[\s\p{Z}\x{FEFF}]+`)

// Dấu phẩy/chấm được thay bằng khoảng trắng, không xóa, để không dính hai từ
var punctReplacer = strings.NewReplacer(",", " ", ".", " ")

// Normalize chuẩn hóa text: lowercase, phẩy/chấm → khoảng trắng, gộp khoảng trắng, trim.
// Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	s := strings.ToLower(text)
	s = punctReplacer.Replace(s)
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Terms tách chuỗi đã normalize thành các term (theo một khoảng trắng)
func Terms(normalized string) []string {
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, " ")
}

// RuneLen độ dài theo ký tự (không phải byte)
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// HasDigit kiểm tra chuỗi có chứa chữ số
func HasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// Unique loại trùng, giữ thứ tự xuất hiện đầu tiên
func Unique(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Stem cắt đuôi tính từ / cách tiếng Nga ("есильский", "есильскому" → "есильск").
// Trả về chuỗi gốc nếu không có đuôi nào khớp.
func Stem(word string) string {
	for _, ending := range stemEndings {
		if strings.HasSuffix(word, ending) {
			return strings.TrimSuffix(word, ending)
		}
	}
	return word
}

// SameStem true khi hai từ có cùng gốc đủ dài (MinStemLength)
func SameStem(a, b string) bool {
	sa, sb := Stem(a), Stem(b)
	if RuneLen(sa) < Rules.MinStemLength || RuneLen(sb) < Rules.MinStemLength {
		return false
	}
	return sa == sb
}

// stemEndings đuôi dài trước
var stemEndings = sortedByLength(Rules.AdjectiveEndings)

func sortedByLength(words []string) []string {
	out := make([]string, len(words))
	copy(out, words)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && RuneLen(out[j]) > RuneLen(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
