package dto

// AuthzCheckRequest pregunta por un grant puntual.
type AuthzCheckRequest struct {
	Resource string `json:"resource" validate:"required"`
	Action   string `json:"action" validate:"required,oneof=GET LIST CREATE UPDATE DELETE MANAGE"`
}

func (r *AuthzCheckRequest) Validate() error { return check(r) }

// AuthzCheckResponse es el veredicto del chequeo.
type AuthzCheckResponse struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
	Allowed  bool   `json:"allowed"`
}
