package rates

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	got, err := Parse([]byte("50\n110\n300"))
	require.NoError(t, err)
	assert.Equal(t, Defaults, got)

	got, err = Parse([]byte(" 42.5 \r\n100\r\n250\r\nextra\n"))
	require.NoError(t, err)
	assert.Equal(t, Tariffs{RateTo: 42.5, RateFrom: 100, KgPerCubicMeter: 250}, got)
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"short":      "50\n110",
		"not number": "50\nabc\n300",
		"zero kg":    "50\n110\n0",
		"negative":   "50\n110\n-3",
		"nan":        "50\nNaN\n300",
		"empty":      "",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestFileSeedAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stavki-china.txt")
	f := NewFile(path)

	require.NoError(t, os.WriteFile(path, []byte("1\n2\n3"), 0o644))
	require.NoError(t, f.Seed(false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "50\n110\n300", string(data))

	got, err := f.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Defaults, got)
}

func TestFileSeedKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.txt")
	require.NoError(t, os.WriteFile(path, []byte("60\n120\n250"), 0o644))

	f := NewFile(path)
	require.NoError(t, f.Seed(true))

	got, err := f.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Tariffs{RateTo: 60, RateFrom: 120, KgPerCubicMeter: 250}, got)
}

func TestFileSeedKeepWritesMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.txt")
	require.NoError(t, NewFile(path).Seed(true))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestFileLoadMissing(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "absent.txt")).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFormatRoundTrip(t *testing.T) {
	in := Tariffs{RateTo: 55.25, RateFrom: 100, KgPerCubicMeter: 333.5}
	assert.Equal(t, "55.25\n100\n333.5", Format(in))
}
