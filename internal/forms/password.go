package forms

import (
	"unicode"
	"unicode/utf8"
)

// Strength is an advisory rating of a password. It never blocks a submission.
type Strength struct {
	Score int
	Label string
}

// PasswordStrength awards one point each for a length of at least 8 characters, a
// lowercase letter, an uppercase letter, a digit and a symbol.
func PasswordStrength(pw string) Strength {
	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	score := 0
	for _, ok := range []bool{utf8.RuneCountInString(pw) >= 8, lower, upper, digit, symbol} {
		if ok {
			score++
		}
	}
	return Strength{Score: score, Label: strengthLabel(score)}
}

func strengthLabel(score int) string {
	switch {
	case score <= 2:
		return "Weak"
	case score == 3:
		return "Fair"
	case score == 4:
		return "Good"
	}
	return "Strong"
}
