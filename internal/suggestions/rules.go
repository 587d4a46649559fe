// Package suggestions maps the caller's role and current page to a static
// list of suggestion payloads for the portal's assistant panel. Each rule is
// an independent predicate-and-template pair; there is no learning and no
// state carried between invocations.
package suggestions

import (
	"fmt"

	"github.com/detachd/portal/internal/errors"
	"github.com/detachd/portal/internal/models"
)

// Context is everything a rule may inspect.
type Context struct {
	Role  models.Role
	Page  string
	Claim *models.ClaimRecord
}

// Action is a canned action identifier attached to a suggestion.
type Action struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Suggestion is one message with its available actions.
type Suggestion struct {
	Message string   `json:"message"`
	Actions []Action `json:"actions,omitempty"`
}

type rule struct {
	matches func(Context) bool
	build   func(Context) Suggestion
}

var rules = []rule{
	{
		matches: func(c Context) bool {
			return c.Role == models.RolePolicyholder && c.Page == "dashboard"
		},
		build: func(Context) Suggestion {
			return Suggestion{
				Message: "Welcome back. You can track the status of your open claims or start a new one.",
				Actions: []Action{
					{ID: "view_claims", Label: "View my claims"},
					{ID: "start_claim", Label: "Start a new claim"},
				},
			}
		},
	},
	{
		matches: func(c Context) bool {
			return c.Role == models.RolePolicyholder && c.Page == "new-claim"
		},
		build: func(Context) Suggestion {
			return Suggestion{
				Message: "Have your policy number, photos of the damage, and any police report ready before submitting.",
				Actions: []Action{
					{ID: "document_checklist", Label: "Show document checklist"},
				},
			}
		},
	},
	{
		matches: func(c Context) bool {
			return c.Role == models.RolePolicyholder && c.Claim != nil &&
				c.Claim.Status == models.ClaimStatusPendingInformation
		},
		build: func(c Context) Suggestion {
			return Suggestion{
				Message: fmt.Sprintf("Claim %s is waiting for more information from you.", c.Claim.ClaimNumber),
				Actions: []Action{
					{ID: "upload_documents", Label: "Upload documents"},
					{ID: "contact_support", Label: "Contact support"},
				},
			}
		},
	},
	{
		matches: func(c Context) bool {
			return c.Role == models.RoleInsurer && c.Page == "dashboard"
		},
		build: func(Context) Suggestion {
			return Suggestion{
				Message: "Review the high priority queue first; claims with a risk score above 70 open in review automatically.",
				Actions: []Action{
					{ID: "filter_high_priority", Label: "Show high priority claims"},
				},
			}
		},
	},
	{
		matches: func(c Context) bool {
			return c.Role == models.RoleInsurer && c.Claim != nil && c.Claim.RiskScore > 70
		},
		build: func(c Context) Suggestion {
			return Suggestion{
				Message: fmt.Sprintf("Claim %s has a risk score of %d. Consider requesting supporting documents before approving.",
					c.Claim.ClaimNumber, c.Claim.RiskScore),
				Actions: []Action{
					{ID: "request_documents", Label: "Request documents"},
					{ID: "run_analysis", Label: "Run AI analysis"},
				},
			}
		},
	},
	{
		matches: func(c Context) bool {
			return c.Role == models.RoleInsurer && c.Claim != nil &&
				c.Claim.Status == models.ClaimStatusSubmitted
		},
		build: func(c Context) Suggestion {
			return Suggestion{
				Message: fmt.Sprintf("Claim %s has not been picked up yet. Move it to review to start processing.", c.Claim.ClaimNumber),
				Actions: []Action{
					{ID: "move_to_review", Label: "Move to review"},
				},
			}
		},
	},
}

// For returns the suggestions whose predicates match the context, in rule order.
func For(c Context) []Suggestion {
	var out []Suggestion
	for _, r := range rules {
		if r.matches(c) {
			out = append(out, r.build(c))
		}
	}
	return out
}

// ErrUnknownAction is returned by Execute for unrecognized action identifiers.
var ErrUnknownAction = errors.NewSentinel("unknown suggestion action")

// Result is the static payload behind an executed action. There is no real
// automation here; actions resolve to canned messages the UI displays.
type Result struct {
	ActionID string `json:"actionId"`
	Message  string `json:"message"`
}

// Execute resolves a canned action identifier to its static payload.
func Execute(actionID string) (*Result, error) {
	messages := map[string]string{
		"view_claims":          "Opening your claims overview.",
		"start_claim":          "Opening the claim submission form.",
		"document_checklist":   "You will need: policy number, photos of the damage, itemized list of losses, and a police report where applicable.",
		"upload_documents":     "Opening the document upload for this claim.",
		"contact_support":      "Support is available at support@detachd.example from 08:00 to 17:00 SAST.",
		"filter_high_priority": "Filtering the queue to high priority claims.",
		"request_documents":    "A document request has been noted on the claim's audit trail.",
		"run_analysis":         "Starting AI analysis for this claim.",
		"move_to_review":       "The claim status can be changed to In Review from the claim page.",
	}
	message, ok := messages[actionID]
	if !ok {
		return nil, errors.Wrap(ErrUnknownAction, "execute action")
	}
	return &Result{ActionID: actionID, Message: message}, nil
}
