package authn

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
)

// Request es la vista transport-neutral de un request entrante: lo
// único que las estrategias necesitan saber de HTTP ya viene extraído.
type Request struct {
	Origin   string
	RemoteIP string

	Bearer       string // Authorization: Bearer <token>
	RefreshToken string // cookie de refresh (o header X-Refresh-Token)

	// Credenciales del body (login).
	Account  string
	Password string
	Code     string
	UserID   string
	Profile  repository.ProfileQuery
}

// credentialBody es el subset del body JSON que las estrategias leen.
type credentialBody struct {
	Account     string `json:"account"`
	Password    string `json:"password"`
	Code        string `json:"code"`
	UserID      string `json:"user_id"`
	FirstName   string `json:"first_name"`
	MiddleName  string `json:"middle_name"`
	LastName    string `json:"last_name"`
	Suffix      string `json:"suffix"`
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD
}

// maxCredentialBody limita cuánto body se lee al extraer credenciales.
const maxCredentialBody = 64 << 10

// FromHTTP extrae la vista neutral desde un *http.Request.
// Lee headers, la cookie de refresh y (para POST/PUT JSON) un peek del
// body que luego repone, igual que hace el rate middleware.
func FromHTTP(r *http.Request, refreshCookie string) *Request {
	req := &Request{
		Origin:   strings.TrimRight(strings.TrimSpace(r.Header.Get("Origin")), "/"),
		RemoteIP: ClientIP(r),
	}

	if ah := strings.TrimSpace(r.Header.Get("Authorization")); ah != "" {
		if strings.HasPrefix(strings.ToLower(ah), "bearer ") {
			req.Bearer = strings.TrimSpace(ah[len("Bearer "):])
		}
	}

	if ck, err := r.Cookie(refreshCookie); err == nil && ck.Value != "" {
		req.RefreshToken = ck.Value
	} else if h := strings.TrimSpace(r.Header.Get("X-Refresh-Token")); h != "" {
		req.RefreshToken = h
	}

	if body := peekJSONBody(r); body != nil {
		req.Account = strings.TrimSpace(body.Account)
		req.Password = body.Password
		req.Code = strings.TrimSpace(body.Code)
		req.UserID = strings.TrimSpace(body.UserID)
		req.Profile = repository.ProfileQuery{
			FirstName:  strings.TrimSpace(body.FirstName),
			MiddleName: strings.TrimSpace(body.MiddleName),
			LastName:   strings.TrimSpace(body.LastName),
			Suffix:     strings.TrimSpace(body.Suffix),
		}
		if body.DateOfBirth != "" {
			if dob, err := time.Parse("2006-01-02", body.DateOfBirth); err == nil {
				req.Profile.DateOfBirth = &dob
			}
		}
	}

	return req
}

// peekJSONBody lee hasta maxCredentialBody bytes del body (si es JSON)
// y lo repone para que el handler pueda volver a leerlo.
func peekJSONBody(r *http.Request) *credentialBody {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		return nil
	}
	if !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return nil
	}
	var buf bytes.Buffer
	_, _ = io.CopyN(&buf, r.Body, maxCredentialBody)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(buf.Bytes()))

	var body credentialBody
	if err := json.Unmarshal(buf.Bytes(), &body); err != nil {
		return nil
	}
	return &body
}

// ClientIP extrae la IP del cliente, considerando proxies.
func ClientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
