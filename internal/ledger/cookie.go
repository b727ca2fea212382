package ledger

import (
	"net/http"
	"time"
)

// CookieDescriptor describe la cookie de refresh como dato puro.
// Escribirla en la respuesta HTTP es responsabilidad de la capa de
// rutas; el core solo entrega el descriptor.
//
// Los flags SameSite=Strict, Secure y HttpOnly son política fija, no
// configurables por llamada. La expiración deriva del claim exp del
// propio refresh token.
type CookieDescriptor struct {
	Name    string
	Value   string
	Expires time.Time
}

// Cookie materializa el descriptor como *http.Cookie listo para
// http.SetCookie.
func (d CookieDescriptor) Cookie() *http.Cookie {
	return &http.Cookie{
		Name:     d.Name,
		Value:    d.Value,
		Path:     "/",
		Expires:  d.Expires.UTC(),
		MaxAge:   int(time.Until(d.Expires).Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

// DeletionCookie retorna la cookie que borra el refresh token en el
// cliente (logout).
func DeletionCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}
