package server

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sv1nxmmvt/fincontrol/internal/entity/user"
)

func Test_SessionToken_RoundTrip(t *testing.T) {
	ident := user.Identity{UserID: uuid.New(), Login: "alice"}

	token, err := issueToken(ident, "test-secret", time.Hour)
	require.NoError(t, err)

	parsed, err := parseToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, ident, parsed)
}

func Test_SessionToken_WrongSecretRejected(t *testing.T) {
	ident := user.Identity{UserID: uuid.New(), Login: "alice"}

	token, err := issueToken(ident, "test-secret", time.Hour)
	require.NoError(t, err)

	_, err = parseToken("other-secret", token)
	assert.Error(t, err)
}

func Test_SessionToken_ExpiredRejected(t *testing.T) {
	ident := user.Identity{UserID: uuid.New(), Login: "alice"}

	token, err := issueToken(ident, "test-secret", -time.Minute)
	require.NoError(t, err)

	_, err = parseToken("test-secret", token)
	assert.Error(t, err)
}
