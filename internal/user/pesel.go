package user

import "errors"

var ErrInvalidPesel = errors.New("pesel must be 11 digits with a valid checksum")

var peselWeights = [10]int{1, 3, 7, 9, 1, 3, 7, 9, 1, 3}

// ValidatePesel checks the 11-digit Polish national ID number,
// including its control digit.
func ValidatePesel(value string) error {
	if len(value) != 11 {
		return ErrInvalidPesel
	}

	digits := make([]int, 11)
	for i, r := range value {
		if r < '0' || r > '9' {
			return ErrInvalidPesel
		}
		digits[i] = int(r - '0')
	}

	checksum := 0
	for i, w := range peselWeights {
		checksum += digits[i] * w
	}

	control := (10 - checksum%10) % 10
	if control != digits[10] {
		return ErrInvalidPesel
	}

	return nil
}
