package main

import (
	"net/http"

	"github.com/detachd/portal/internal/models"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	session := alice.New(app.loadSession)
	authenticated := session.Append(app.authenticate, app.requireAuthentication)
	insurer := authenticated.Append(app.requireRole(models.RoleInsurer))

	mux.Handle("GET /api/healthy", http.HandlerFunc(app.healthy))

	mux.Handle("POST /api/auth/register", session.ThenFunc(app.register))
	mux.Handle("POST /api/auth/login", session.ThenFunc(app.login))
	mux.Handle("POST /api/auth/logout", authenticated.ThenFunc(app.logout))
	mux.Handle("GET /api/auth/verify", authenticated.ThenFunc(app.verify))

	mux.Handle("POST /api/claims", authenticated.ThenFunc(app.submitClaim))
	mux.Handle("GET /api/claims", authenticated.ThenFunc(app.listClaims))
	mux.Handle("GET /api/claims/{claimID}", authenticated.ThenFunc(app.claimDetail))
	mux.Handle("PATCH /api/claims/{claimID}", insurer.ThenFunc(app.updateClaim))
	mux.Handle("POST /api/claims/{claimID}/notes", authenticated.ThenFunc(app.addClaimNote))
	mux.Handle("POST /api/claims/{claimID}/analyze", insurer.ThenFunc(app.analyzeClaim))
	mux.Handle("GET /api/claims/{claimID}/analysis/stream", authenticated.ThenFunc(app.streamAnalysis))

	mux.Handle("GET /api/suggestions", authenticated.ThenFunc(app.suggestions))
	mux.Handle("POST /api/suggestions/execute", authenticated.ThenFunc(app.executeSuggestion))

	return app.recoverPanic(app.logRequest(secureHeaders(mux)))
}
