package main

import (
	"log/slog"
	"net/http"

	"github.com/detachd/portal/internal/errors"
	"github.com/detachd/portal/internal/suggestions"
)

func (app *application) suggestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	user, err := app.currentUser(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if user == nil {
		app.clientError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	suggestionContext := suggestions.Context{
		Role: user.Role,
		Page: query.Get("page"),
	}

	// Claims the caller cannot access contribute no claim context.
	if claimID := query.Get("claimId"); claimID != "" {
		claim, err := app.claims.Get(ctx, claimID)
		if err != nil {
			app.serverError(w, r, errors.Wrap(err, "get claim", slog.String("claim_id", claimID)))
			return
		}
		if claim != nil && canAccessClaim(user, claim) {
			suggestionContext.Claim = claim
		}
	}

	app.writeJSON(w, r, http.StatusOK, map[string][]suggestions.Suggestion{
		"suggestions": suggestions.For(suggestionContext),
	})
}

func (app *application) executeSuggestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ActionID string `json:"actionId"`
	}
	if err := app.readJSON(w, r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := suggestions.Execute(req.ActionID)
	if err != nil {
		if errors.Is(err, suggestions.ErrUnknownAction) {
			app.clientError(w, r, http.StatusBadRequest, "unknown action")
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, result)
}
