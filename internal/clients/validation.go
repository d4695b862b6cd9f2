package clients

import (
	"fmt"
	"strconv"
)

// Identification type codes seeded in the identification_types catalog.
const (
	IdentificationCodeCedula   = "cedula"
	IdentificationCodeRUC      = "ruc"
	IdentificationCodePassport = "passport"
)

// ValidateIdentification checks the number against the format of the given
// identification type code. Unknown codes only require a non-empty number.
func ValidateIdentification(code, number string) error {
	switch code {
	case IdentificationCodeCedula:
		return validateCedula(number)
	case IdentificationCodeRUC:
		return validateRUC(number)
	case IdentificationCodePassport:
		if len(number) < 6 {
			return fmt.Errorf("passport number must have at least 6 characters")
		}
		return nil
	default:
		if number == "" {
			return fmt.Errorf("identification number is required")
		}
		return nil
	}
}

// validateCedula applies the Ecuadorian national id rules: 10 digits, a
// province prefix between 01 and 24, a third digit below 6, and a modulo 10
// check digit over the first nine digits.
func validateCedula(number string) error {
	digits, err := toDigits(number, 10)
	if err != nil {
		return fmt.Errorf("cedula must have 10 digits")
	}

	province := digits[0]*10 + digits[1]
	if province < 1 || province > 24 {
		return fmt.Errorf("cedula has an invalid province code %02d", province)
	}
	if digits[2] >= 6 {
		return fmt.Errorf("cedula has an invalid third digit")
	}
	if cedulaCheckDigit(digits) != digits[9] {
		return fmt.Errorf("cedula check digit does not match")
	}
	return nil
}

// validateRUC accepts the three Ecuadorian RUC shapes: natural persons
// (cedula plus establishment code), private companies (third digit 9), and
// public institutions (third digit 6).
func validateRUC(number string) error {
	digits, err := toDigits(number, 13)
	if err != nil {
		return fmt.Errorf("ruc must have 13 digits")
	}

	province := digits[0]*10 + digits[1]
	if province < 1 || province > 24 {
		return fmt.Errorf("ruc has an invalid province code %02d", province)
	}

	switch third := digits[2]; {
	case third < 6:
		if err := validateCedula(number[:10]); err != nil {
			return fmt.Errorf("ruc does not embed a valid cedula")
		}
		if number[10:] == "000" {
			return fmt.Errorf("ruc establishment code cannot be 000")
		}
	case third == 9:
		coefficients := []int{4, 3, 2, 7, 6, 5, 4, 3, 2}
		if module11CheckDigit(digits, coefficients) != digits[9] {
			return fmt.Errorf("ruc check digit does not match")
		}
		if number[10:] == "000" {
			return fmt.Errorf("ruc establishment code cannot be 000")
		}
	case third == 6:
		coefficients := []int{3, 2, 7, 6, 5, 4, 3, 2}
		if module11CheckDigit(digits, coefficients) != digits[8] {
			return fmt.Errorf("ruc check digit does not match")
		}
	default:
		return fmt.Errorf("ruc has an invalid third digit")
	}
	return nil
}

func cedulaCheckDigit(digits []int) int {
	sum := 0
	for i := 0; i < 9; i++ {
		product := digits[i]
		if i%2 == 0 {
			product *= 2
			if product > 9 {
				product -= 9
			}
		}
		sum += product
	}
	check := 10 - sum%10
	if check == 10 {
		return 0
	}
	return check
}

func module11CheckDigit(digits, coefficients []int) int {
	sum := 0
	for i, coefficient := range coefficients {
		sum += digits[i] * coefficient
	}
	remainder := sum % 11
	if remainder == 0 {
		return 0
	}
	return 11 - remainder
}

func toDigits(number string, length int) ([]int, error) {
	if len(number) != length {
		return nil, fmt.Errorf("expected %d digits", length)
	}
	digits := make([]int, length)
	for i, r := range number {
		d, err := strconv.Atoi(string(r))
		if err != nil {
			return nil, fmt.Errorf("non-numeric character at position %d", i)
		}
		digits[i] = d
	}
	return digits, nil
}
