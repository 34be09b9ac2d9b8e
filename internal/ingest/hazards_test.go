package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCountyRows(t *testing.T) {
	csv := "unit_id,metric,value\n" +
		"40001,WFIR_RISKS,50.5\n" +
		"40001,WFIR_EALT,120000\n" +
		"40003,WFIR_RISKS,80\n"

	records, skipped, err := ReadCountyRows(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, records, 2)

	rec := records["40001"]
	assert.Equal(t, "40001", rec.UnitID)
	require.Len(t, rec.Metrics, 2)
	assert.InDelta(t, 50.5, rec.Metrics["WFIR_RISKS"].Value, 0.0001)
	assert.False(t, rec.Metrics["WFIR_RISKS"].NoData)
	assert.InDelta(t, 120000.0, rec.Metrics["WFIR_EALT"].Value, 0.0001)
}

func TestReadCountyRows_Sentinels(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"negative placeholder", "-999"},
		{"small negative", "-0.01"},
		{"blank", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			csv := "unit_id,metric,value\n40001,WFIR_RISKS," + tt.value + "\n"

			records, skipped, err := ReadCountyRows(context.Background(), strings.NewReader(csv))
			require.NoError(t, err)
			assert.Zero(t, skipped)

			mv, ok := records["40001"].Metrics["WFIR_RISKS"]
			require.True(t, ok)
			assert.True(t, mv.NoData)
			assert.Zero(t, mv.Value)
		})
	}
}

func TestReadCountyRows_SkipsMalformed(t *testing.T) {
	csv := "unit_id,metric,value\n" +
		"40001,WFIR_RISKS,50\n" +
		"40001,WFIR_EALT,not-a-number\n" +
		",WFIR_RISKS,10\n" +
		"40003,,10\n" +
		"40005\n"

	records, skipped, err := ReadCountyRows(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 4, skipped)
	require.Len(t, records, 1)
	assert.Len(t, records["40001"].Metrics, 1)
}

func TestReadCountyRows_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := ReadCountyRows(ctx, strings.NewReader("unit_id,metric,value\n40001,X,1\n"))
	assert.Error(t, err)
}
