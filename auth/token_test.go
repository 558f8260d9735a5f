package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintVerifyRoundtrip(t *testing.T) {
	tokens := NewTokens("secret")

	tok, err := tokens.Mint("66f0c0c0c0c0c0c0c0c0c0c0", RolePatient)
	require.NoError(t, err)

	claims, err := tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "66f0c0c0c0c0c0c0c0c0c0c0", claims.Subject)
	assert.Equal(t, RolePatient, claims.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := NewTokens("secret").Mint("id", RoleDoctor)
	require.NoError(t, err)

	_, err = NewTokens("other").Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewTokens("secret").Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAdminTokenCarriesEmail(t *testing.T) {
	tokens := NewTokens("secret")
	tok, err := tokens.Mint("admin@clinic.test", RoleAdmin)
	require.NoError(t, err)

	claims, err := tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "admin@clinic.test", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.True(t, CheckPassword(hash, "correct horse battery"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
