package auth

import (
	"net/http"

	"github.com/debemdeboas/the-journal/internal/routes"
)

func (p *Ed25519AuthProvider) RegisterRoutes(mux *http.ServeMux) {
	challenge := Ed25519ChallengeHandler(p)
	mux.HandleFunc(routes.Method(http.MethodGet, routes.AuthChallenge), challenge)
	mux.HandleFunc(routes.Method(http.MethodPost, routes.AuthChallenge), challenge)
	mux.HandleFunc(routes.Method(http.MethodPost, routes.AuthVerify), Ed25519VerifyHandler(p))
	mux.HandleFunc(routes.Method(http.MethodPost, routes.AuthLogout), Ed25519LogoutHandler(p))
	mux.HandleFunc(routes.Method(http.MethodGet, routes.AuthLogin), Ed25519LoginHandler(p))
}
