package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLpstat(t *testing.T) {
	out := `printer EPSON-TM20 is idle.  enabled since Mon 01 Jul 2024
printer Kitchen disabled since Tue 02 Jul 2024 -
	reason unknown
system default destination: EPSON-TM20
`
	printers := parseLpstat(out)
	require.Len(t, printers, 2)
	assert.Equal(t, "EPSON-TM20", printers[0].Name)
	assert.True(t, printers[0].Default)
	assert.Equal(t, "Kitchen", printers[1].Name)
	assert.False(t, printers[1].Default)
}

func TestParseLpstatNoDefault(t *testing.T) {
	printers := parseLpstat("printer Solo is idle.\nno system default destination\n")
	require.Len(t, printers, 1)
	assert.False(t, printers[0].Default)
}

func TestParseLpstatEmpty(t *testing.T) {
	assert.Empty(t, parseLpstat(""))
	assert.Empty(t, parseLpstat("lpstat: No destinations added.\n"))
}

func TestParsePrinterJSONArray(t *testing.T) {
	raw := []byte(`[{"Name":"EPSON TM-T20II","Default":true},{"Name":"PDF","Default":false}]`)
	printers, err := parsePrinterJSON(raw)
	require.NoError(t, err)
	require.Len(t, printers, 2)
	assert.Equal(t, "EPSON TM-T20II", printers[0].Name)
	assert.True(t, printers[0].Default)
}

func TestParsePrinterJSONSingleObject(t *testing.T) {
	// ConvertTo-Json drops the array wrapper for a single printer
	raw := []byte(`{"Name":"Solo","Default":true}`)
	printers, err := parsePrinterJSON(raw)
	require.NoError(t, err)
	require.Len(t, printers, 1)
	assert.Equal(t, "Solo", printers[0].Name)
}

func TestParsePrinterJSONEmpty(t *testing.T) {
	printers, err := parsePrinterJSON([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, printers)
}
