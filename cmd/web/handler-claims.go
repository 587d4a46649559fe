package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/detachd/portal/internal/contexthelpers"
	"github.com/detachd/portal/internal/errors"
	"github.com/detachd/portal/internal/models"
	"github.com/detachd/portal/internal/repositories"
	"github.com/detachd/portal/internal/views"
)

// currentUser resolves the authenticated user from the request context. The
// middleware guarantees an ID is present, but the account can disappear
// between requests, so a nil user is still possible.
func (app *application) currentUser(r *http.Request) (*models.User, error) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	user, err := app.users.Get(r.Context(), userID)
	if err != nil {
		return nil, errors.Wrap(err, "get current user", slog.String("user_id", userID))
	}
	return user, nil
}

// canAccessClaim reports whether the user may read or annotate the claim.
// Insurers see everything, policyholders only their own submissions.
func canAccessClaim(user *models.User, claim *models.ClaimRecord) bool {
	if user.Role == models.RoleInsurer {
		return true
	}
	return claim.UserID == user.ID
}

func (app *application) submitClaim(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PolicyholderName string  `json:"policyholderName"`
		ClaimType        string  `json:"claimType"`
		AmountClaimed    float64 `json:"amountClaimed"`
		Description      string  `json:"description"`
		RiskScore        int     `json:"riskScore"`
	}
	if err := app.readJSON(w, r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := app.currentUser(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if user == nil {
		app.clientError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	req.ClaimType = strings.TrimSpace(req.ClaimType)
	if req.ClaimType == "" {
		app.clientError(w, r, http.StatusBadRequest, "claim type is required")
		return
	}
	if req.AmountClaimed < 0 {
		app.clientError(w, r, http.StatusBadRequest, "amount claimed cannot be negative")
		return
	}
	if req.PolicyholderName == "" {
		req.PolicyholderName = user.DisplayName
	}

	claim, err := app.claims.Create(r.Context(), repositories.NewClaim{
		UserID:           user.ID,
		PolicyholderName: req.PolicyholderName,
		ClaimType:        req.ClaimType,
		Status:           models.SubmissionStatus(req.RiskScore),
		AmountClaimed:    req.AmountClaimed,
		Description:      req.Description,
		RiskScore:        req.RiskScore,
	})
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusCreated, map[string]*models.ClaimRecord{"claim": claim})
}

func (app *application) listClaims(w http.ResponseWriter, r *http.Request) {
	user, err := app.currentUser(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if user == nil {
		app.clientError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	query := r.URL.Query()
	filter := views.Filter{
		Search:   query.Get("search"),
		Status:   models.ClaimStatus(query.Get("status")),
		Priority: models.Priority(query.Get("priority")),
	}

	claims, err := app.composer.ClaimsFor(r.Context(), user, filter)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, map[string][]models.ClaimRecord{"claims": claims})
}

func (app *application) claimDetail(w http.ResponseWriter, r *http.Request) {
	user, err := app.currentUser(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if user == nil {
		app.clientError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	claimID := r.PathValue("claimID")
	claim, err := app.claims.Get(r.Context(), claimID)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "get claim", slog.String("claim_id", claimID)))
		return
	}
	// Absent and inaccessible claims are indistinguishable to the caller.
	if claim == nil || !canAccessClaim(user, claim) {
		app.notFound(w, r)
		return
	}

	app.writeJSON(w, r, http.StatusOK, map[string]*models.ClaimRecord{"claim": claim})
}

func (app *application) updateClaim(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PolicyholderName *string             `json:"policyholderName"`
		ClaimType        *string             `json:"claimType"`
		Status           *models.ClaimStatus `json:"status"`
		AmountClaimed    *float64            `json:"amountClaimed"`
		Description      *string             `json:"description"`
		RiskScore        *int                `json:"riskScore"`
	}
	if err := app.readJSON(w, r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		app.clientError(w, r, http.StatusBadRequest, "unknown status")
		return
	}
	if req.RiskScore != nil && (*req.RiskScore < 0 || *req.RiskScore > 100) {
		app.clientError(w, r, http.StatusBadRequest, "risk score must be between 0 and 100")
		return
	}

	user, err := app.currentUser(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if user == nil {
		app.clientError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	claimID := r.PathValue("claimID")
	claim, err := app.claims.Update(r.Context(), claimID, repositories.ClaimUpdate{
		PolicyholderName: req.PolicyholderName,
		ClaimType:        req.ClaimType,
		Status:           req.Status,
		AmountClaimed:    req.AmountClaimed,
		Description:      req.Description,
		RiskScore:        req.RiskScore,
	})
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "update claim", slog.String("claim_id", claimID)))
		return
	}
	if claim == nil {
		app.notFound(w, r)
		return
	}

	if req.Status != nil {
		event := fmt.Sprintf("Status changed to %s", *req.Status)
		if err = app.claims.AppendAudit(r.Context(), claimID, event, user.DisplayName); err != nil {
			app.serverError(w, r, errors.Wrap(err, "append audit", slog.String("claim_id", claimID)))
			return
		}
		if claim, err = app.claims.Get(r.Context(), claimID); err != nil || claim == nil {
			app.serverError(w, r, errors.Wrap(err, "reload claim", slog.String("claim_id", claimID)))
			return
		}
	}

	app.writeJSON(w, r, http.StatusOK, map[string]*models.ClaimRecord{"claim": claim})
}

func (app *application) addClaimNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Note string `json:"note"`
	}
	if err := app.readJSON(w, r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Note = strings.TrimSpace(req.Note)
	if req.Note == "" {
		app.clientError(w, r, http.StatusBadRequest, "note is required")
		return
	}

	user, err := app.currentUser(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if user == nil {
		app.clientError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	claimID := r.PathValue("claimID")
	claim, err := app.claims.Get(r.Context(), claimID)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "get claim", slog.String("claim_id", claimID)))
		return
	}
	if claim == nil || !canAccessClaim(user, claim) {
		app.notFound(w, r)
		return
	}

	if err = app.claims.AppendAudit(r.Context(), claimID, fmt.Sprintf("Note: %s", req.Note), user.DisplayName); err != nil {
		app.serverError(w, r, errors.Wrap(err, "append audit", slog.String("claim_id", claimID)))
		return
	}

	if claim, err = app.claims.Get(r.Context(), claimID); err != nil || claim == nil {
		app.serverError(w, r, errors.Wrap(err, "reload claim", slog.String("claim_id", claimID)))
		return
	}

	app.writeJSON(w, r, http.StatusOK, map[string]*models.ClaimRecord{"claim": claim})
}
