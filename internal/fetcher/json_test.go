package fetcher

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// socrataRow mirrors the shape of open-data API licensee records.
type socrataRow struct {
	LicenseNumber string `json:"contractorlicensenumber"`
	BusinessName  string `json:"businessname"`
}

func TestDecodeJSONArray(t *testing.T) {
	input := `[
		{"contractorlicensenumber":"CCB01-100200","businessname":"RAINIER POWER SYSTEMS"},
		{"contractorlicensenumber":"CCB01-100201","businessname":"CASCADE STANDBY LLC"}
	]`

	ch, errCh := DecodeJSONArray[socrataRow](context.Background(), strings.NewReader(input))

	var rows []socrataRow
	for row := range ch {
		rows = append(rows, row)
	}
	for err := range errCh {
		require.NoError(t, err)
	}

	require.Len(t, rows, 2)
	assert.Equal(t, "CCB01-100200", rows[0].LicenseNumber)
	assert.Equal(t, "RAINIER POWER SYSTEMS", rows[0].BusinessName)
	assert.Equal(t, "CASCADE STANDBY LLC", rows[1].BusinessName)
}

func TestDecodeJSONArray_Empty(t *testing.T) {
	ch, errCh := DecodeJSONArray[socrataRow](context.Background(), strings.NewReader(`[]`))

	var rows []socrataRow
	for row := range ch {
		rows = append(rows, row)
	}
	for err := range errCh {
		require.NoError(t, err)
	}
	assert.Empty(t, rows)
}

func TestDecodeJSONArray_EmptyInput(t *testing.T) {
	ch, errCh := DecodeJSONArray[socrataRow](context.Background(), strings.NewReader(""))

	var rows []socrataRow
	for row := range ch {
		rows = append(rows, row)
	}
	for err := range errCh {
		require.NoError(t, err)
	}
	assert.Empty(t, rows)
}

func TestDecodeJSONArray_NotAnArray(t *testing.T) {
	// Paged APIs sometimes return an error object instead of the page.
	input := `{"error":"rate limit exceeded"}`
	ch, errCh := DecodeJSONArray[socrataRow](context.Background(), strings.NewReader(input))

	for range ch { //nolint:revive // drain
	}

	var gotErr error
	for err := range errCh {
		if err != nil {
			gotErr = err
		}
	}
	require.Error(t, gotErr)
	assert.Contains(t, gotErr.Error(), "expected '['")
}

func TestDecodeJSONArray_NonObjectToken(t *testing.T) {
	input := `"not an array"`
	ch, errCh := DecodeJSONArray[socrataRow](context.Background(), strings.NewReader(input))

	for range ch { //nolint:revive // drain
	}

	var gotErr error
	for err := range errCh {
		if err != nil {
			gotErr = err
		}
	}
	require.Error(t, gotErr)
	assert.Contains(t, gotErr.Error(), "expected '['")
}

func TestDecodeJSONArray_MalformedElement(t *testing.T) {
	input := `[{"contractorlicensenumber":"CCB01-100200"},{"contractorlicensenumber":}]`
	ch, errCh := DecodeJSONArray[socrataRow](context.Background(), strings.NewReader(input))

	var rows []socrataRow
	for row := range ch {
		rows = append(rows, row)
	}

	var gotErr error
	for err := range errCh {
		if err != nil {
			gotErr = err
		}
	}
	// The first element decodes, the second fails.
	require.Len(t, rows, 1)
	require.Error(t, gotErr)
	assert.Contains(t, gotErr.Error(), "decode element")
}

func TestDecodeJSONArray_ContextCancelled(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[")
	for i := range 10000 {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`{"contractorlicensenumber":"X","businessname":"Y"}`)
	}
	sb.WriteString("]")

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Millisecond)
	defer cancel()
	time.Sleep(5 * time.Millisecond)

	ch, errCh := DecodeJSONArray[socrataRow](ctx, strings.NewReader(sb.String()))

	for range ch { //nolint:revive // drain
	}

	var gotErr error
	for err := range errCh {
		if err != nil {
			gotErr = err
		}
	}
	if gotErr != nil {
		assert.Contains(t, gotErr.Error(), "context")
	}
}

func TestDecodeJSONObject(t *testing.T) {
	input := `{"contractorlicensenumber":"CCB01-100200","businessname":"RAINIER POWER SYSTEMS"}`
	row, err := DecodeJSONObject[socrataRow](strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "CCB01-100200", row.LicenseNumber)
	assert.Equal(t, "RAINIER POWER SYSTEMS", row.BusinessName)
}

func TestDecodeJSONObject_Invalid(t *testing.T) {
	_, err := DecodeJSONObject[socrataRow](strings.NewReader("not json"))
	require.Error(t, err)
}
