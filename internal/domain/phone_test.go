package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	got, err := NormalizePhone(" 0901234567 ")
	require.NoError(t, err)
	require.Equal(t, "0901234567", got)

	for _, raw := range []string{"", "090123456", "09012345678", "090-123-456"} {
		_, err := NormalizePhone(raw)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr, raw)
		require.Equal(t, "phone", vErr.Field)
	}
}

func TestNormalizeOrderCode(t *testing.T) {
	require.Equal(t, "TSXHL777", NormalizeOrderCode(" tsxhl777 "))
	require.Equal(t, "TSXHL777", NormalizeOrderCode("TSXHL777"))
}
