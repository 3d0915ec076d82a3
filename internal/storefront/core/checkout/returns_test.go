package checkout

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestDetectReturnWithToken(t *testing.T) {
	r := DetectReturn(mustParse(t, "https://shop.example/?token_ws=ABC123"))
	assert.Equal(t, ReturnWithToken, r.Kind)
	assert.Equal(t, "ABC123", r.Token)
}

func TestDetectReturnLegacyTokenParam(t *testing.T) {
	r := DetectReturn(mustParse(t, "https://shop.example/?token=XYZ"))
	assert.Equal(t, ReturnWithToken, r.Kind)
	assert.Equal(t, "XYZ", r.Token)
}

func TestDetectReturnPathMarkers(t *testing.T) {
	for _, path := range []string{"/pago-resultado", "/webpay-return"} {
		r := DetectReturn(mustParse(t, "https://shop.example"+path))
		assert.Equal(t, ReturnWithToken, r.Kind, "path %s", path)
		assert.Empty(t, r.Token)
	}
}

func TestDetectReturnStatusFlag(t *testing.T) {
	r := DetectReturn(mustParse(t, "https://shop.example/?pago=exitoso"))
	assert.Equal(t, ReturnWithStatusFlag, r.Kind)

	r = DetectReturn(mustParse(t, "https://shop.example/?payment_return=true"))
	assert.Equal(t, ReturnWithStatusFlag, r.Kind)

	r = DetectReturn(mustParse(t, "https://shop.example/pago-exitoso"))
	assert.Equal(t, ReturnWithStatusFlag, r.Kind)
}

// When the same URL carries both a token and a status flag, the token wins.
func TestDetectReturnTokenPrecedence(t *testing.T) {
	r := DetectReturn(mustParse(t, "https://shop.example/?pago=exitoso&token_ws=ABC123"))
	assert.Equal(t, ReturnWithToken, r.Kind)
	assert.Equal(t, "ABC123", r.Token)
}

func TestDetectReturnFreshVisit(t *testing.T) {
	r := DetectReturn(mustParse(t, "https://shop.example/productos?categoria=pinturas"))
	assert.Equal(t, ReturnNone, r.Kind)
}
