package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRulesConfig(t *testing.T) {
	config, err := LoadRulesConfig()
	require.NoError(t, err)

	assert.Contains(t, config.MajorCityPrefixes, "г.алматы")
	assert.Contains(t, config.Connectors, "или")
	assert.Equal(t, ",;/", config.Separators)
	assert.Equal(t, 4, config.MinStemLength)
}

func TestAlternation_LongestFirst(t *testing.T) {
	assert.Equal(t, `(?:обл\.|обл)`, Alternation([]string{"обл", "обл."}))
	assert.Equal(t, `(?:или|и)`, Alternation([]string{"и", "или"}))
}

func TestAffixPatterns(t *testing.T) {
	prefix, suffix := AffixPatterns([]string{"город", "г.", "район"})

	assert.Equal(t, "алматы", prefix.ReplaceAllString("г.алматы", ""))
	assert.Equal(t, "алматы", prefix.ReplaceAllString("город алматы", ""))
	assert.Equal(t, "городской", prefix.ReplaceAllString("городской", ""))
	assert.Equal(t, "есиль", suffix.ReplaceAllString("есиль район", ""))
	assert.Equal(t, "алматы", suffix.ReplaceAllString("алматы г.", ""))
}

// Mỗi rule của pipeline tên được test độc lập
func TestNamePipeline_Rules(t *testing.T) {
	rules := map[string]Rule{}
	for _, r := range NamePipeline() {
		rules[r.Name] = r
	}
	require.Len(t, rules, 7)

	testCases := []struct {
		rule     string
		input    string
		expected string
		matched  bool
	}{
		{"admin_body_prefix", "угд по г.алматы", "г.алматы", true},
		{"admin_body_prefix", "дгд г.астана", "г.астана", true},
		{"admin_body_prefix", "департамент государственных доходов по области", "области", true},
		{"admin_body_prefix", "нуринскому району", "нуринскому району", false},
		{"locality_prefix", "г.алматы", "алматы", true},
		{"locality_prefix", "пос. балкашино", "балкашино", true},
		{"locality_prefix", "городу астана", "астана", true},
		{"district_case_form", "есильскому району", "есильск", true},
		{"district_case_form", "абайскому району области", "абайск", true},
		{"district_case_form", "сырымому району", "сыр", true},
		{"district_case_form", "акколомому району", "аккол", true},
		{"district_case_form", "казыбекбиим. району", "казыбекби", true},
		{"district_case_form", "сырымим. району", "сыр", true},
		{"district_case_form", "району абай", "району абай", false},
		{"district_named_after", "району имени казыбек би", "казыбек би", true},
		{"district_named_after", "району байконыр, город", "байконыр", true},
		{"quoted_name", `"астана-жаңа қала" и другое`, "астана-жаңа қала", true},
		{"quoted_name", "«байқоңыр»", "байқоңыр", true},
		{"district_word", "абай району", "абай ", true},
		{"district_word", "район район абай", " абай", true},
		{"district_word", "районное", "районное", false},
		{"region_word", "ақмола облысы", "ақмола ", true},
		{"region_word", "область абай", " абай", true},
	}

	for _, tc := range testCases {
		t.Run(tc.rule+"/"+tc.input, func(t *testing.T) {
			out, ok := rules[tc.rule].Apply(tc.input)
			assert.Equal(t, tc.matched, ok)
			assert.Equal(t, tc.expected, out)
		})
	}
}

func TestPipeline_Run_SkipsUnmatched(t *testing.T) {
	out, steps := NamePipeline().Run("абай")
	assert.Equal(t, "абай", out)
	assert.Empty(t, steps)
}
