package handlers

import (
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func bcryptHash(raw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.MinCost)
	return string(h), err
}
