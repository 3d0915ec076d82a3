package checkout

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/ferremas-cl/storefront/internal/storefront/core/domain/entity"
	"github.com/ferremas-cl/storefront/internal/storefront/core/ports"
)

// AutoRedirectDelay is how long the handoff page shows the transaction
// details before the form submits itself. The page also offers a manual
// submit control; invoking it early is harmless because the first
// submission navigates away.
const AutoRedirectDelay = 3 * time.Second

// RedirectForm is the one-way bridge to the gateway's hosted payment page:
// a POST form whose action is the hosted-page URL and whose sole field is
// token_ws. Once submitted no further application code runs until the
// browser comes back on the return URL.
type RedirectForm struct {
	Action string
	Token  string
}

// NewRedirectForm validates the handle and builds the form. A handle
// lacking a URL or token is a gateway failure, not a crash.
func NewRedirectForm(h entity.TransactionHandle) (*RedirectForm, error) {
	if h.URL == "" {
		return nil, &ports.GatewayError{Op: "redirect", Message: "transaction handle has no hosted-page url"}
	}
	if h.Token == "" {
		return nil, &ports.GatewayError{Op: "redirect", Message: "transaction handle has no token"}
	}
	return &RedirectForm{Action: h.URL, Token: h.Token}, nil
}

var formTmpl = template.Must(template.New("redirect-form").Parse(
	`<form id="webpay-redirect" method="POST" action="{{.Action}}" style="display:none">` +
		`<input type="hidden" name="token_ws" value="{{.Token}}">` +
		`</form>` +
		`<script>setTimeout(function(){document.getElementById("webpay-redirect").submit();},{{.DelayMS}});</script>`))

// HTML renders the hidden auto-submitting form. Values are escaped by
// html/template, so a hostile gateway response cannot inject markup.
func (f *RedirectForm) HTML() (template.HTML, error) {
	var b strings.Builder
	data := struct {
		Action, Token string
		DelayMS       int64
	}{f.Action, f.Token, AutoRedirectDelay.Milliseconds()}

	if err := formTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render redirect form: %w", err)
	}
	return template.HTML(b.String()), nil
}
