package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAwards(t *testing.T) {
	csv := "record_id,recipient_name,amount,program_id,fiscal_year,state\n" +
		"A1,Cherokee Nation,\"1,234.50\",15.021,2024,ok\n" +
		"A2,Navajo Nation,2000,15.130,2023,AZ\n"

	records, skipped, err := ReadAwards(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, records, 2)

	r := records[0]
	assert.Equal(t, "A1", r.RecordID)
	assert.Equal(t, "Cherokee Nation", r.RecipientName)
	assert.InDelta(t, 1234.50, r.Amount, 0.0001)
	assert.Equal(t, "15.021", r.ProgramID)
	assert.Equal(t, "2024", r.FiscalYear)
	assert.Equal(t, "OK", r.State)
}

func TestReadAwards_SkipsMalformed(t *testing.T) {
	csv := "record_id,recipient_name,amount,program_id,fiscal_year,state\n" +
		"A1,Cherokee Nation,1000,15.021,2024,OK\n" +
		"A2,Bad Amount,not-a-number,15.021,2024,OK\n" +
		"A3,Too Short\n" +
		",Missing ID,500,15.021,2024,OK\n" +
		"A5,,500,15.021,2024,OK\n"

	records, skipped, err := ReadAwards(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 4, skipped)
	require.Len(t, records, 1)
	assert.Equal(t, "A1", records[0].RecordID)
}

func TestReadAwards_StateOptional(t *testing.T) {
	csv := "record_id,recipient_name,amount,program_id,fiscal_year\n" +
		"A1,Cherokee Nation,1000,15.021,2024\n"

	records, skipped, err := ReadAwards(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].State)
}

func TestReadAwards_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := ReadAwards(ctx, strings.NewReader("record_id,recipient_name\nA1,X\n"))
	assert.Error(t, err)
}
