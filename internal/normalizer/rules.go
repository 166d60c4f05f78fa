package normalizer

import "regexp"

// Rule một bước biến đổi chuỗi: pattern + action.
// Action chỉ được gọi khi pattern match.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Action  func(s string, match []string) string
}

// Step ghi lại một rule đã thay đổi chuỗi (dùng cho debug/explain)
type Step struct {
	Rule   string `json:"rule"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// Pipeline danh sách rule áp dụng tuần tự; mỗi rule chạy trên output của rule trước
type Pipeline []Rule

// Run áp dụng toàn bộ pipeline
func (p Pipeline) Run(s string) (string, []Step) {
	var steps []Step
	for _, rule := range p {
		out, ok := rule.Apply(s)
		if !ok {
			continue
		}
		if out != s {
			steps = append(steps, Step{Rule: rule.Name, Before: s, After: out})
		}
		s = out
	}
	return s, steps
}

// Apply áp dụng một rule, trả về false nếu pattern không match
func (r Rule) Apply(s string) (string, bool) {
	match := r.Pattern.FindStringSubmatch(s)
	if match == nil {
		return s, false
	}
	return r.Action(s, match), true
}

// StripRule xóa phần match (dùng cho pattern có anchor)
func StripRule(name string, re *regexp.Regexp) Rule {
	return Rule{
		Name:    name,
		Pattern: re,
		Action: func(s string, _ []string) string {
			return re.ReplaceAllLiteralString(s, "")
		},
	}
}

// ReplaceRule thay mọi match bằng repl cho tới khi chuỗi ổn định
// (các match chồng lấn nhau như "район району" cần nhiều lượt)
func ReplaceRule(name string, re *regexp.Regexp, repl string) Rule {
	return Rule{
		Name:    name,
		Pattern: re,
		Action: func(s string, _ []string) string {
			for {
				out := re.ReplaceAllLiteralString(s, repl)
				if out == s {
					return out
				}
				s = out
			}
		},
	}
}

// CaptureRule thay toàn bộ chuỗi bằng group 1, qua post nếu có
func CaptureRule(name string, re *regexp.Regexp, post func(string) string) Rule {
	return Rule{
		Name:    name,
		Pattern: re,
		Action: func(_ string, match []string) string {
			if post != nil {
				return post(match[1])
			}
			return match[1]
		},
	}
}
