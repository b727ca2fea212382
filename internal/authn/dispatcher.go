package authn

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/gatekeep/internal/domain/repository"
)

// tagPrecedence define el orden determinístico cuando una ruta trae
// más de un tag (no debería, pero ambigüedad indefinida es peor):
// gana el primero presente.
var tagPrecedence = []Tag{TagPublic, TagPassword, TagProfile, TagUuid, TagCode, TagRefresh, TagDefault}

// Dispatcher elige exactamente una estrategia por request según los
// tags de la ruta, tras aplicar el allow-list de orígenes.
type Dispatcher struct {
	strategies     map[Tag]Strategy
	allowedOrigins []string
}

// NewDispatcher arma el dispatcher. Debe registrarse una estrategia con
// TagDefault; las rutas sin tag caen ahí.
func NewDispatcher(allowedOrigins []string, strategies ...Strategy) (*Dispatcher, error) {
	d := &Dispatcher{
		strategies:     make(map[Tag]Strategy, len(strategies)),
		allowedOrigins: normalizeOrigins(allowedOrigins),
	}
	for _, s := range strategies {
		d.strategies[s.Tag()] = s
	}
	if _, ok := d.strategies[TagDefault]; !ok {
		return nil, fmt.Errorf("authn: missing default strategy")
	}
	return d, nil
}

// Select resuelve los tags de una ruta a una estrategia, respetando la
// precedencia. Sin tags (o con tags desconocidos) cae al default.
func (d *Dispatcher) Select(tags ...Tag) Strategy {
	for _, want := range tagPrecedence {
		for _, t := range tags {
			if t == want {
				if s, ok := d.strategies[t]; ok {
					return s
				}
			}
		}
	}
	return d.strategies[TagDefault]
}

// OriginAllowed aplica el allow-list. Un request sin header Origin
// (cliente no-browser) siempre pasa; "*" permite cualquiera.
func (d *Dispatcher) OriginAllowed(origin string) bool {
	if origin == "" || len(d.allowedOrigins) == 0 {
		return true
	}
	for _, a := range d.allowedOrigins {
		if a == "*" || strings.EqualFold(origin, a) {
			return true
		}
	}
	return false
}

// Authenticate es la operación que consume la capa de rutas: chequeo de
// origen primero, después exactamente una estrategia.
func (d *Dispatcher) Authenticate(ctx context.Context, req *Request, tags ...Tag) (*Identity, error) {
	if !d.OriginAllowed(req.Origin) {
		return nil, fmt.Errorf("%w: origin not allowed", repository.ErrForbidden)
	}
	return d.Select(tags...).Authenticate(ctx, req)
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimRight(strings.TrimSpace(v), "/")
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
