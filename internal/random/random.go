package random

import (
	"crypto/rand"
	"math/big"
)

var allowedLetters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// Letters returns a random string of n letters.
func Letters(n uint) (string, error) {
	letters := make([]rune, n)
	for i := range letters {
		letterIndex, err := rand.Int(rand.Reader, big.NewInt(int64(len(allowedLetters))))
		if err != nil {
			return "", err
		}
		letters[i] = allowedLetters[letterIndex.Int64()]
	}
	return string(letters), nil
}

var allowedDigits = []rune("0123456789")

// Digits returns a random string of n decimal digits.
func Digits(n uint) (string, error) {
	digits := make([]rune, n)
	for i := range digits {
		digitIndex, err := rand.Int(rand.Reader, big.NewInt(int64(len(allowedDigits))))
		if err != nil {
			return "", err
		}
		digits[i] = allowedDigits[digitIndex.Int64()]
	}
	return string(digits), nil
}
