package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	password := "password123"
	hashedPassword, err := HashPassword(password)

	assert.NoError(t, err)
	assert.NotEmpty(t, hashedPassword)
	assert.NotEqual(t, password, hashedPassword)
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := HashPassword("p")
	require.NoError(t, err)
	second, err := HashPassword("p")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, CheckPasswordHash("p", first))
	assert.True(t, CheckPasswordHash("p", second))
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 73))
	assert.Error(t, err)
}

func TestCheckPasswordHash(t *testing.T) {
	password := "password123"
	hashedPassword, _ := HashPassword(password)

	assert.True(t, CheckPasswordHash(password, hashedPassword))
	assert.False(t, CheckPasswordHash("wrongpassword", hashedPassword))
	assert.False(t, CheckPasswordHash("", hashedPassword))
}

func TestCheckPasswordHash_InvalidHash(t *testing.T) {
	for _, hash := range []string{"invalidhash", "", "$2a$10$short", "$2a$99$" + strings.Repeat("x", 53)} {
		assert.NotPanics(t, func() {
			assert.False(t, CheckPasswordHash("password123", hash))
		})
	}
}
