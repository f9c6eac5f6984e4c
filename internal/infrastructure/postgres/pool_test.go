package postgres

import (
	"context"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPv4Of_Literales(t *testing.T) {
	ip, err := ipv4Of(context.Background(), net.DefaultResolver, "10.0.0.7")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7", ip)

	_, err = ipv4Of(context.Background(), net.DefaultResolver, "::1")
	assert.ErrorIs(t, err, errNoIPv4)
}

func TestApplyPoolSettings(t *testing.T) {
	c, err := pgxpool.ParseConfig("postgres://u:p@localhost:5432/db")
	require.NoError(t, err)

	applyPoolSettings(c, 0)
	assert.EqualValues(t, defaultMaxConns, c.MaxConns)

	applyPoolSettings(c, 1)
	assert.EqualValues(t, 1, c.MaxConns)
	assert.EqualValues(t, 1, c.MinConns)
}
