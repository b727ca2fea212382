// Package token implementa el códec de bearer tokens firmados (EdDSA).
//
// Existen dos instancias con claves independientes: una para access
// tokens (TTL corto) y otra para refresh tokens (TTL largo). Comprometer
// un secreto no compromete la otra clase de tokens.
package token

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrExpired indica firma válida pero token vencido.
	ErrExpired = errors.New("token expired")

	// ErrInvalid indica firma inválida o token malformado.
	ErrInvalid = errors.New("token invalid")
)

// Claims es el payload que viaja dentro de cada token.
type Claims struct {
	UserID    string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec firma y verifica tokens compactos autocontenidos.
type Codec struct {
	iss  string
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
	ttl  time.Duration
}

// New crea un códec con la seed ed25519 dada (32 bytes) y TTL por defecto.
// Con seed vacía genera una clave efímera (solo dev/tests: los tokens
// no sobreviven un restart del proceso).
func New(iss string, seed []byte, ttl time.Duration) (*Codec, error) {
	var priv ed25519.PrivateKey
	switch len(seed) {
	case 0:
		_, k, err := ed25519.GenerateKey(nil)
		if err != nil {
			return nil, err
		}
		priv = k
	case ed25519.SeedSize:
		priv = ed25519.NewKeyFromSeed(seed)
	default:
		return nil, fmt.Errorf("token: seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &Codec{
		iss:  iss,
		priv: priv,
		pub:  priv.Public().(ed25519.PublicKey),
		ttl:  ttl,
	}, nil
}

// TTL retorna el TTL por defecto del códec.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Sign emite un token firmado con payload {userID, subject}.
// Si ttl <= 0 usa el TTL por defecto del códec. Retorna el string
// firmado y su instante de expiración.
func (c *Codec) Sign(userID, subject string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)

	// jti único por emisión: EdDSA es determinístico y iat/exp tienen
	// granularidad de segundo, sin jti dos Sign en el mismo segundo
	// producirían el mismo string y la rotación no rotaría nada.
	claims := jwtv5.MapClaims{
		"iss": c.iss,
		"sub": userID,
		"sjt": subject,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, claims)
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(c.priv)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify valida firma, issuer y expiración, y retorna el payload.
// Retorna ErrExpired si la firma es válida pero el token venció,
// ErrInvalid en cualquier otro fallo.
func (c *Codec) Verify(tokenStr string) (*Claims, error) {
	tk, err := jwtv5.Parse(tokenStr,
		func(t *jwtv5.Token) (any, error) { return c.pub, nil },
		jwtv5.WithValidMethods([]string{"EdDSA"}),
		jwtv5.WithIssuer(c.iss),
	)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	mc, ok := tk.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalid
	}
	return claimsFromMap(mc), nil
}

// Decode extrae el payload SIN validar firma ni expiración.
// Solo para leer claims de un string ya confiable o deliberadamente no
// confiable (ej: sacar el user id de un refresh token vencido durante
// la invalidación de sesión).
func (c *Codec) Decode(tokenStr string) (*Claims, error) {
	tk, _, err := jwtv5.NewParser().ParseUnverified(tokenStr, jwtv5.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	mc, ok := tk.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalid
	}
	return claimsFromMap(mc), nil
}

func claimsFromMap(mc jwtv5.MapClaims) *Claims {
	out := &Claims{}
	if v, ok := mc["sub"].(string); ok {
		out.UserID = v
	}
	if v, ok := mc["sjt"].(string); ok {
		out.Subject = v
	}
	if v, ok := mc["iat"].(float64); ok {
		out.IssuedAt = time.Unix(int64(v), 0).UTC()
	}
	if v, ok := mc["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(v), 0).UTC()
	}
	return out
}
