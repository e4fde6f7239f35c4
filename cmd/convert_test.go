package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowValue(rows [][2]string, key string) string {
	for _, r := range rows {
		if r[0] == key {
			return r[1]
		}
	}
	return ""
}

func TestConvertWholeToBase(t *testing.T) {
	title, rows, err := convertAmount("1.5", "")
	require.NoError(t, err)
	assert.Equal(t, "Unit Conversion", title)
	assert.Equal(t, "1500000000000000000", rowValue(rows, "Base units"))
	assert.Equal(t, "0x14d1120d7b160000", rowValue(rows, "Hex"))
}

func TestConvertBaseToWhole(t *testing.T) {
	_, rows, err := convertAmount("1", "base")
	require.NoError(t, err)
	assert.Equal(t, "0.000000000000000001", rowValue(rows, "Whole"))

	_, rows, err = convertAmount("1000000000000000000000", "wei")
	require.NoError(t, err)
	assert.Equal(t, "1000", rowValue(rows, "Whole"))
}

func TestConvertHex(t *testing.T) {
	title, rows, err := convertAmount("0xde0b6b3a7640000", "")
	require.NoError(t, err)
	assert.Equal(t, "Hex → Decimal", title)
	assert.Equal(t, "1000000000000000000", rowValue(rows, "Decimal"))
	assert.Equal(t, "1", rowValue(rows, "Whole"))

	_, rows, err = convertAmount("255", "hex")
	require.NoError(t, err)
	assert.Equal(t, "0xff", rowValue(rows, "Hex"))

	_, rows, err = convertAmount("0", "dec")
	require.NoError(t, err)
	assert.Equal(t, "0x0", rowValue(rows, "Hex"))
}

func TestConvertErrors(t *testing.T) {
	for _, c := range [][2]string{
		{"abc", ""},
		{"1.0000000000000000001", "whole"},
		{"-1", "base"},
		{"0xzz", ""},
		{"12", "furlongs"},
	} {
		_, _, err := convertAmount(c[0], c[1])
		assert.Error(t, err, c)
	}
}
