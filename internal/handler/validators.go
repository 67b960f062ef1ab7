package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the custom binding rules on gin's
// validator engine. Call once before building the router.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("cpf", validateCPF)
	}
}

func validateCPF(fl validator.FieldLevel) bool {
	return ValidCPF(fl.Field().String())
}

// ValidCPF checks a Brazilian CPF: eleven digits (punctuation allowed),
// not all identical, with both check digits correct.
func ValidCPF(s string) bool {
	var digits []int
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, int(r-'0'))
		case r == '.' || r == '-' || r == ' ':
			// punctuation is tolerated
		default:
			return false
		}
	}
	if len(digits) != 11 {
		return false
	}
	same := true
	for _, d := range digits[1:] {
		if d != digits[0] {
			same = false
			break
		}
	}
	if same {
		return false
	}
	if digits[9] != cpfCheckDigit(digits[:9]) {
		return false
	}
	return digits[10] == cpfCheckDigit(digits[:10])
}

func cpfCheckDigit(ds []int) int {
	weight := len(ds) + 1
	sum := 0
	for _, d := range ds {
		sum += d * weight
		weight--
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}
