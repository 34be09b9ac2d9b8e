package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFromSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	columns := []string{"geoid", "name"}
	rows := [][]any{
		{"40001", "Adair"},
		{"40003", "Alfalfa"},
	}

	mock.ExpectCopyFrom(pgx.Identifier{"geo", "counties"}, columns).WillReturnResult(2)

	n, err := CopyFromSchema(context.Background(), mock, "geo", "counties", columns, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFromSchema_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// No rows means no round trip at all.
	n, err := CopyFromSchema(context.Background(), mock, "geo", "counties", []string{"geoid"}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFromSchema_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"geo", "counties"}, []string{"geoid"}).
		WillReturnError(assert.AnError)

	_, err = CopyFromSchema(context.Background(), mock, "geo", "counties", []string{"geoid"}, [][]any{{"40001"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO geo.counties")
}
