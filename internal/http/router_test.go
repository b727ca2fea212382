package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/gatekeep/internal/account"
	"github.com/dropDatabas3/gatekeep/internal/authn"
	"github.com/dropDatabas3/gatekeep/internal/authz"
	"github.com/dropDatabas3/gatekeep/internal/cache"
	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
	gkhttp "github.com/dropDatabas3/gatekeep/internal/http"
	"github.com/dropDatabas3/gatekeep/internal/ledger"
	"github.com/dropDatabas3/gatekeep/internal/otp"
	"github.com/dropDatabas3/gatekeep/internal/rate"
	"github.com/dropDatabas3/gatekeep/internal/security/password"
	"github.com/dropDatabas3/gatekeep/internal/store/memory"
	"github.com/dropDatabas3/gatekeep/internal/token"
)

type apiEnv struct {
	handler http.Handler
	mem     *memory.Store
	codes   *otp.Store
	user    repository.User
}

func newAPI(t *testing.T, accessLimiter rate.Limiter, origins ...string) *apiEnv {
	t.Helper()

	access, err := token.New("gatekeep", nil, 15*time.Minute)
	require.NoError(t, err)
	refresh, err := token.New("gatekeep", nil, 24*time.Hour)
	require.NoError(t, err)

	mem := memory.New()
	led := ledger.New(ledger.Deps{Tokens: mem, Access: access, Refresh: refresh})
	codes := otp.New(cache.NewMemory("test"), 5*time.Minute)

	disp, err := authn.NewDispatcher(origins,
		authn.PublicStrategy{},
		&authn.PasswordStrategy{Users: mem},
		&authn.ProfileStrategy{Users: mem},
		&authn.UuidStrategy{Users: mem},
		&authn.CodeStrategy{
			Users:     mem,
			Codes:     codes,
			LoginIP:   rate.NewMemory(100, time.Minute),
			LoginUser: rate.NewMemory(100, time.Minute),
		},
		&authn.RefreshStrategy{Users: mem, Ledger: led, Refresh: refresh},
		&authn.BearerStrategy{Users: mem, Ledger: led, Access: access},
	)
	require.NoError(t, err)

	svc := account.New(account.Deps{
		Users:      mem,
		Ledger:     led,
		Dispatcher: disp,
		Resolver:   authz.New(mem),
		LoginIP:    rate.NewMemory(100, time.Minute),
		LoginUser:  rate.NewMemory(100, time.Minute),
	})

	phc, err := password.Hash(password.Params{Memory: 16 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}, "s3creta")
	require.NoError(t, err)
	email := "ana@example.com"
	u := mem.PutUser(repository.User{Email: &email, PasswordHash: &phc})

	return &apiEnv{
		handler: gkhttp.NewRouter(gkhttp.RouterDeps{
			Svc:           svc,
			Codes:         codes,
			CookieName:    ledger.DefaultCookieName,
			AccessLimiter: accessLimiter,
			Origins:       disp,
		}),
		mem:   mem,
		codes: codes,
		user:  u,
	}
}

func (e *apiEnv) do(t *testing.T, method, path, bearer string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	r := httptest.NewRequest(method, path, rd)
	r.RemoteAddr = "192.0.2.1:50000"
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		r.Header.Set("Authorization", "Bearer "+bearer)
	}
	for _, ck := range cookies {
		r.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func refreshCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == ledger.DefaultCookieName {
			return ck
		}
	}
	t.Fatalf("respuesta sin cookie %s", ledger.DefaultCookieName)
	return nil
}

type tokenBody struct {
	AccessToken      string    `json:"access_token"`
	TokenType        string    `json:"token_type"`
	ExpiresIn        int64     `json:"expires_in"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type errBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func TestAPI_LoginMeLogout(t *testing.T) {
	e := newAPI(t, nil)

	w := e.do(t, "POST", "/v1/auth/login", "", map[string]string{
		"account":  "ana@example.com",
		"password": "s3creta",
	})
	require.Equal(t, http.StatusOK, w.Code)
	tk := decode[tokenBody](t, w)
	require.NotEmpty(t, tk.AccessToken)
	require.Equal(t, "Bearer", tk.TokenType)
	require.Greater(t, tk.ExpiresIn, int64(0))

	ck := refreshCookie(t, w)
	require.NotEmpty(t, ck.Value)
	require.True(t, ck.HttpOnly)

	// /me con el access emitido.
	w = e.do(t, "GET", "/v1/auth/me", tk.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]any](t, w)
	require.Equal(t, e.user.ID, me["id"])
	require.Equal(t, "ana@example.com", me["email"])

	// Logout: 204, borra cookie, y el token deja de servir.
	w = e.do(t, "POST", "/v1/auth/logout", tk.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, -1, refreshCookie(t, w).MaxAge)

	w = e.do(t, "GET", "/v1/auth/me", tk.AccessToken, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Repetir el logout con el mismo token también es 401: el propio
	// bearer quedó deslistado. La idempotencia vive a nivel servicio.
	w = e.do(t, "POST", "/v1/auth/logout", tk.AccessToken, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_LoginRechazos(t *testing.T) {
	e := newAPI(t, nil)

	w := e.do(t, "POST", "/v1/auth/login", "", map[string]string{"account": "ana@example.com", "password": "otra"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "INVALID_CREDENTIALS", decode[errBody](t, w).Code)

	w = e.do(t, "POST", "/v1/auth/login", "", map[string]string{"account": "nadie@example.com", "password": "x"})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "USER_NOT_FOUND", decode[errBody](t, w).Code)

	w = e.do(t, "POST", "/v1/auth/login", "", map[string]string{"account": "ana@example.com"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Body que no es JSON.
	r := httptest.NewRequest("POST", "/v1/auth/login", bytes.NewReader([]byte("no-json")))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, r)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_RefreshYReplay(t *testing.T) {
	e := newAPI(t, nil)

	w := e.do(t, "POST", "/v1/auth/login", "", map[string]string{"account": "ana@example.com", "password": "s3creta"})
	require.Equal(t, http.StatusOK, w.Code)
	firstAccess := decode[tokenBody](t, w).AccessToken
	firstCookie := refreshCookie(t, w)

	// Rotación: par nuevo, cookie nueva, el access viejo muere.
	w = e.do(t, "POST", "/v1/auth/refresh", "", nil, firstCookie)
	require.Equal(t, http.StatusOK, w.Code)
	secondAccess := decode[tokenBody](t, w).AccessToken
	secondCookie := refreshCookie(t, w)
	require.NotEqual(t, firstCookie.Value, secondCookie.Value)

	w = e.do(t, "GET", "/v1/auth/me", firstAccess, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	w = e.do(t, "GET", "/v1/auth/me", secondAccess, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Replay del refresh rotado: 401, borra cookie y mata la sesión
	// nueva también.
	w = e.do(t, "POST", "/v1/auth/refresh", "", nil, firstCookie)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, -1, refreshCookie(t, w).MaxAge)

	w = e.do(t, "GET", "/v1/auth/me", secondAccess, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Sin refresh token por ningún canal: 401 token faltante.
	w = e.do(t, "POST", "/v1/auth/refresh", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_LoginPorCodigo(t *testing.T) {
	e := newAPI(t, nil)

	// Pedir un código siempre es 204, exista o no la cuenta.
	w := e.do(t, "POST", "/v1/auth/code", "", map[string]string{"account": "ana@example.com"})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = e.do(t, "POST", "/v1/auth/code", "", map[string]string{"account": "nadie@example.com"})
	require.Equal(t, http.StatusNoContent, w.Code)

	// El código del handler no es legible desde afuera (se entrega por
	// canal externo); emitir otro pisa el anterior y deja uno conocido.
	code, err := e.codes.Issue(context.Background(), "ana@example.com", 0)
	require.NoError(t, err)

	w = e.do(t, "POST", "/v1/auth/login/code", "", map[string]string{"account": "ana@example.com", "code": code})
	require.Equal(t, http.StatusOK, w.Code)
	tk := decode[tokenBody](t, w)

	w = e.do(t, "GET", "/v1/auth/me", tk.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Replay del código consumido.
	w = e.do(t, "POST", "/v1/auth/login/code", "", map[string]string{"account": "ana@example.com", "code": code})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_LoginPorPerfil(t *testing.T) {
	e := newAPI(t, nil)
	dob := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
	u := e.user
	u.FirstName = "Ana"
	u.LastName = "García"
	u.DateOfBirth = &dob
	e.mem.PutUser(u)

	body := map[string]string{"first_name": "Ana", "last_name": "García", "date_of_birth": "1990-04-12"}
	w := e.do(t, "POST", "/v1/auth/login/profile", "", body)
	require.Equal(t, http.StatusOK, w.Code)

	// Un homónimo con la misma fecha vuelve ambiguo el match y el
	// login deja de funcionar para ambos.
	e.mem.PutUser(repository.User{FirstName: "Ana", LastName: "García", DateOfBirth: &dob})
	w = e.do(t, "POST", "/v1/auth/login/profile", "", body)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_LoginPorUuid(t *testing.T) {
	e := newAPI(t, nil)

	w := e.do(t, "POST", "/v1/auth/login/uuid", "", map[string]string{"user_id": e.user.ID})
	require.Equal(t, http.StatusOK, w.Code)
	tk := decode[tokenBody](t, w)

	w = e.do(t, "GET", "/v1/auth/me", tk.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Un id que no es uuid ni pasa la validación de body.
	w = e.do(t, "POST", "/v1/auth/login/uuid", "", map[string]string{"user_id": "no-es-uuid"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Uuid bien formado pero sin usuario.
	w = e.do(t, "POST", "/v1/auth/login/uuid", "", map[string]string{"user_id": "00000000-0000-4000-8000-000000000001"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_OrigenNoPermitido(t *testing.T) {
	e := newAPI(t, nil, "https://app.example.com")

	post := func(path, orig string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r := httptest.NewRequest("POST", path, bytes.NewReader(raw))
		r.RemoteAddr = "192.0.2.1:50000"
		r.Header.Set("Content-Type", "application/json")
		if orig != "" {
			r.Header.Set("Origin", orig)
		}
		for _, ck := range cookies {
			r.AddCookie(ck)
		}
		w := httptest.NewRecorder()
		e.handler.ServeHTTP(w, r)
		return w
	}

	creds := map[string]string{"account": "ana@example.com", "password": "s3creta"}

	// Origen fuera del allow-list: 403 antes de mirar credenciales.
	w := post("/v1/auth/login", "https://evil.example.net", creds)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "ORIGIN_NOT_ALLOWED", decode[errBody](t, w).Code)

	// El origen permitido sigue pasando.
	w = post("/v1/auth/login", "https://app.example.com", creds)
	require.Equal(t, http.StatusOK, w.Code)
	ck := refreshCookie(t, w)

	// Mismo allow-list sobre refresh: el origen malo no rota nada.
	w = post("/v1/auth/refresh", "https://evil.example.net", nil, ck)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "ORIGIN_NOT_ALLOWED", decode[errBody](t, w).Code)

	w = post("/v1/auth/refresh", "https://app.example.com", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_AuthzCheck(t *testing.T) {
	e := newAPI(t, nil)
	e.mem.Grant(repository.Permission{
		Resource:  "invoices",
		Action:    repository.ActionManage,
		Trustee:   repository.TrusteeUser,
		TrusteeID: e.user.ID,
	})

	w := e.do(t, "POST", "/v1/auth/login", "", map[string]string{"account": "ana@example.com", "password": "s3creta"})
	require.Equal(t, http.StatusOK, w.Code)
	tk := decode[tokenBody](t, w).AccessToken

	w = e.do(t, "POST", "/v1/authz/check", tk, map[string]string{"resource": "invoices", "action": "DELETE"})
	require.Equal(t, http.StatusOK, w.Code)
	out := decode[map[string]any](t, w)
	require.Equal(t, true, out["allowed"])

	w = e.do(t, "POST", "/v1/authz/check", tk, map[string]string{"resource": "reports", "action": "GET"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, false, decode[map[string]any](t, w)["allowed"])

	// Action fuera del union cerrado.
	w = e.do(t, "POST", "/v1/authz/check", tk, map[string]string{"resource": "reports", "action": "EXPLODE"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Sin bearer no hay chequeo.
	w = e.do(t, "POST", "/v1/authz/check", "", map[string]string{"resource": "invoices", "action": "GET"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_RateLimitGeneral(t *testing.T) {
	e := newAPI(t, rate.NewMemory(2, time.Minute))

	for i := 0; i < 2; i++ {
		w := e.do(t, "GET", "/healthz", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := e.do(t, "GET", "/healthz", "", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestAPI_NotFound(t *testing.T) {
	e := newAPI(t, nil)
	w := e.do(t, "GET", "/no-existe", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "NOT_FOUND", decode[errBody](t, w).Code)
}
