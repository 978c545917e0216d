package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/api/models"
)

func TestJWT_RoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	user := &models.User{ID: 42, Email: "editor@newsdesk.test"}

	token, err := GenerateJWT(user, secret)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "editor@newsdesk.test", claims.Email)
	assert.Equal(t, "42", claims.Subject)
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	token, err := GenerateJWT(&models.User{ID: 1, Email: "a@b.test"}, []byte("one"))
	require.NoError(t, err)

	_, err = ValidateJWT(token, []byte("two"))
	assert.Error(t, err)
}

func TestValidateJWT_Garbage(t *testing.T) {
	_, err := ValidateJWT("not-a-token", []byte("secret"))
	assert.Error(t, err)
}
