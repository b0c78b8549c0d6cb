package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEvent_Normalize verifies zero sizes fall back to the served bytes.
func TestEvent_Normalize(t *testing.T) {
	e := Event{Size: 0, BytesOut: 321}
	e.Normalize()
	require.Equal(t, uint64(321), e.Size)

	e = Event{Size: 10, BytesOut: 321}
	e.Normalize()
	require.Equal(t, uint64(10), e.Size)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("TCP_MISS/200")
	require.NoError(t, err)
	require.Equal(t, HTTPStatus{Text: "TCP_MISS", Code: 200}, st)
	require.Equal(t, "TCP_MISS/200", st.String())

	st, err = ParseStatus("TCP_HIT")
	require.NoError(t, err)
	require.Equal(t, "TCP_HIT", st.String())

	_, err = ParseStatus("TCP_HIT/abc")
	require.Error(t, err)
}
