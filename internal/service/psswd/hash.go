package psswd

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost стоимость bcrypt для хранимых паролей.
const DefaultCost = 12

// PasswordHash реализует service.PasswordHasher поверх bcrypt. Значение - стоимость хеширования.
type PasswordHash int

func (p PasswordHash) HashPassword(password string) (string, error) {
	cost := int(p)
	if cost < bcrypt.MinCost {
		cost = DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %s", err.Error())
	}
	return string(bytes), nil
}

func (p PasswordHash) ComparePassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
