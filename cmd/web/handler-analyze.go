package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/detachd/portal/internal/ai"
	"github.com/detachd/portal/internal/errors"
	"github.com/detachd/portal/internal/models"
	"github.com/detachd/portal/internal/repositories"
)

func (app *application) analyzeClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
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
	claim, err := app.claims.Get(ctx, claimID)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "get claim", slog.String("claim_id", claimID)))
		return
	}
	if claim == nil {
		app.notFound(w, r)
		return
	}

	// Buffered to the analyzer's output bound so the analysis completes even
	// when nobody consumes the stream.
	chunks := make(chan string, ai.MaxStreamChunks)
	app.analysisBroker.Publish(claim.ID, chunks)
	defer app.analysisBroker.Unpublish(claim.ID)

	assessment, err := app.analyzer.AnalyzeClaim(ctx, *claim, chunks)
	close(chunks)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "analyze claim", slog.String("claim_id", claimID)))
		return
	}

	// Persisting the score re-derives the priority in the same update.
	if _, err = app.claims.Update(ctx, claimID, repositories.ClaimUpdate{
		RiskScore: &assessment.RiskScore,
	}); err != nil {
		app.serverError(w, r, errors.Wrap(err, "persist assessment", slog.String("claim_id", claimID)))
		return
	}
	event := fmt.Sprintf("AI analysis completed with risk score %d", assessment.RiskScore)
	if err = app.claims.AppendAudit(ctx, claimID, event, user.DisplayName); err != nil {
		app.serverError(w, r, errors.Wrap(err, "append audit", slog.String("claim_id", claimID)))
		return
	}

	if claim, err = app.claims.Get(ctx, claimID); err != nil || claim == nil {
		app.serverError(w, r, errors.Wrap(err, "reload claim", slog.String("claim_id", claimID)))
		return
	}

	app.writeJSON(w, r, http.StatusOK, struct {
		Assessment *ai.Assessment      `json:"assessment"`
		Claim      *models.ClaimRecord `json:"claim"`
	}{Assessment: assessment, Claim: claim})
}

// streamAnalysis delivers in-flight analysis output over Server-Sent Events.
// The stream ends immediately when no analysis is running for the claim.
// Claim access rules match claimDetail, so a policyholder cannot listen in on
// the analysis of someone else's claim.
func (app *application) streamAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
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
	claim, err := app.claims.Get(ctx, claimID)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "get claim", slog.String("claim_id", claimID)))
		return
	}
	if claim == nil || !canAccessClaim(user, claim) {
		app.notFound(w, r)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		app.serverError(w, r, errors.New("response writer does not support streaming"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	subscription := app.analysisBroker.Subscribe(claimID)
	select {
	case <-ctx.Done():
		return
	case chunkChannel, published := <-subscription:
		if !published {
			writeSSE(w, "end", "")
			flusher.Flush()
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case chunk, open := <-chunkChannel:
				if !open {
					writeSSE(w, "end", "")
					flusher.Flush()
					return
				}
				writeSSE(w, "chunk", chunk)
				flusher.Flush()
			}
		}
	}
}

// writeSSE writes one Server-Sent Event. Multi-line payloads become multiple
// data fields per the SSE framing rules.
func writeSSE(w http.ResponseWriter, event, data string) {
	_, _ = fmt.Fprintf(w, "event: %s\n", event)
	for _, line := range strings.Split(data, "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = fmt.Fprint(w, "\n")
}
