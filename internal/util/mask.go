// Package util agrupa helpers chicos sin dueño claro.
package util

import "strings"

// MaskAccount enmascara un identificador de cuenta para logs: los
// identificadores entran a los logs de auditoría pero nunca completos.
// Emails conservan primera letra de usuario y dominio; el resto de los
// identificadores, primera y última.
func MaskAccount(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	i := strings.IndexByte(s, '@')
	if i <= 0 {
		if s == "" {
			return ""
		}
		if len(s) <= 3 {
			return "***"
		}
		return s[:1] + "…" + s[len(s)-1:]
	}
	user, dom := s[:i], s[i+1:]
	if len(user) > 1 {
		user = user[:1] + "…"
	}
	dparts := strings.Split(dom, ".")
	if len(dparts) > 0 && len(dparts[0]) > 1 {
		dparts[0] = dparts[0][:1] + "…"
	}
	return user + "@" + strings.Join(dparts, ".")
}
