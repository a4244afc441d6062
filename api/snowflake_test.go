package api

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeRoundTrip(t *testing.T) {
	for _, s := range []Snowflake{0, 1, 42, MaxSnowflake} {
		text := s.String()
		assert.Len(t, text, 13)

		parsed, err := ParseSnowflake(text)
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
}

func TestSnowflakeStringZeroPads(t *testing.T) {
	assert.Equal(t, "0000000000001", Snowflake(1).String())
}

func TestParseSnowflakeWrongLength(t *testing.T) {
	_, err := ParseSnowflake("abc")

	var pErr *ParseSnowflakeError
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, 3, pErr.Len)
	assert.Nil(t, pErr.Cause)
}

func TestParseSnowflakeInvalidDigits(t *testing.T) {
	_, err := ParseSnowflake("!!!!!!!!!!!!!")

	var pErr *ParseSnowflakeError
	require.True(t, errors.As(err, &pErr))
	assert.NotNil(t, pErr.Cause)
}

func TestSnowflakeTextMarshalRoundTrip(t *testing.T) {
	var s Snowflake = 123456789
	text, err := s.MarshalText()
	require.NoError(t, err)

	var parsed Snowflake
	require.NoError(t, parsed.UnmarshalText(text))
	assert.Equal(t, s, parsed)
}
