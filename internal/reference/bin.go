package reference

import "strings"

var (
	binWeights    = [11]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	binWeightsAlt = [11]int{3, 4, 5, 6, 7, 8, 9, 10, 11, 1, 2}
)

// CleanBIN bỏ khoảng trắng và gạch nối trong BIN
func CleanBIN(bin string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(bin))
}

// ValidateBIN kiểm tra BIN Kazakhstan: 12 chữ số, chữ số cuối là checksum mod 11
func ValidateBIN(bin string) bool {
	cleaned := CleanBIN(bin)
	if len(cleaned) != 12 {
		return false
	}
	for i := 0; i < len(cleaned); i++ {
		if cleaned[i] < '0' || cleaned[i] > '9' {
			return false
		}
	}

	check := binChecksum(cleaned, binWeights)
	if check == 10 {
		check = binChecksum(cleaned, binWeightsAlt)
		if check == 10 {
			check = 0
		}
	}
	return check == int(cleaned[11]-'0')
}

func binChecksum(bin string, weights [11]int) int {
	sum := 0
	for i, w := range weights {
		sum += int(bin[i]-'0') * w
	}
	return sum % 11
}
