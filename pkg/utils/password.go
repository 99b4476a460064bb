package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost 测试里可调低以加速
var PasswordCost = bcrypt.DefaultCost

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}

// NormalizeEmail 去空白并转小写，作为唯一键
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
