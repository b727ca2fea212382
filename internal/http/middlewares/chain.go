// Package middlewares contiene los decoradores HTTP transversales:
// request id, logging, CORS, rate limit y autenticación.
package middlewares

import "net/http"

// Middleware decora un http.Handler. El router los compone con Use en
// orden de declaración: el primero envuelve a todos los demás.
type Middleware func(http.Handler) http.Handler
