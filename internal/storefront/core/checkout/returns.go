package checkout

import (
	"net/url"
	"strings"
)

// ReturnKind classifies the current navigation on every page load.
type ReturnKind int

const (
	// ReturnNone: a fresh visit, nothing payment-related in the URL.
	ReturnNone ReturnKind = iota

	// ReturnWithToken: the gateway sent the browser back carrying a
	// transaction token (or landed on a dedicated return path). The caller
	// must route to the processing view, which runs the confirmation flow.
	ReturnWithToken

	// ReturnWithStatusFlag: the simpler boolean-style success flag used by
	// the secondary flow that does not carry a token. The caller clears the
	// cart and shows a one-time success notice.
	ReturnWithStatusFlag
)

// Return is the result of classifying a navigation URL.
type Return struct {
	Kind  ReturnKind
	Token string
}

// Token query parameters, newest first. Both historical names are accepted
// for backward compatibility with older return URLs.
var tokenParams = []string{"token_ws", "token"}

// Path segments that mark a gateway return even without a token parameter.
var tokenPathMarkers = []string{"pago-resultado", "webpay-return"}

// DetectReturn inspects a navigation URL and classifies it. Token-based
// detection takes priority over the status flag: when both could match the
// same URL, the token wins.
func DetectReturn(u *url.URL) Return {
	q := u.Query()

	for _, p := range tokenParams {
		if tok := q.Get(p); tok != "" {
			return Return{Kind: ReturnWithToken, Token: tok}
		}
	}
	for _, marker := range tokenPathMarkers {
		if strings.Contains(u.Path, marker) {
			// Dedicated return path without a token parameter: still a
			// token return; the confirmation flow reports the missing
			// token as a failure.
			return Return{Kind: ReturnWithToken}
		}
	}

	if q.Get("pago") == "exitoso" || q.Get("payment_return") == "true" || strings.Contains(u.Path, "pago-exitoso") {
		return Return{Kind: ReturnWithStatusFlag}
	}

	return Return{Kind: ReturnNone}
}
