// Package workflow holds the application status graph. Every status change an
// application goes through is one of the transitions declared here, and the
// repository turns a transition into a single guarded UPDATE.
package workflow

import (
	"fmt"

	"golang.org/x/exp/slices"
)

type Status string

const (
	Submitted          Status = "submitted"
	Approved           Status = "approved"
	Rejected           Status = "rejected"
	ReadyForDispatch   Status = "ready_for_dispatch"
	Dispatched         Status = "dispatched"
	ReadyForCollection Status = "ready_for_collection"
	Collected          Status = "collected"

	// blank is found on rows imported before statuses were enforced.
	blank Status = ""
)

// Statuses lists every status a report may filter on, in lifecycle order.
var Statuses = []Status{Submitted, Approved, Rejected, ReadyForDispatch, Dispatched, ReadyForCollection, Collected}

// Issued are the statuses in which the generated ID number is considered live.
var Issued = []Status{Approved, Dispatched, ReadyForCollection, Collected}

type Action string

const (
	ActionApprove       Action = "approve"
	ActionReject        Action = "reject"
	ActionPrint         Action = "print"
	ActionDispatch      Action = "dispatch"
	ActionCardArrived   Action = "card_arrived"
	ActionCardCollected Action = "card_collected"
	ActionResubmit      Action = "resubmit"
)

type Transition struct {
	Action Action
	From   []Status
	// FromWithIDNumber are predecessors accepted only when the application
	// already carries a generated ID number.
	FromWithIDNumber []Status
	To               Status
}

var transitions = map[Action]Transition{
	ActionApprove: {
		Action: ActionApprove,
		From:   []Status{Submitted},
		To:     Approved,
	},
	ActionReject: {
		Action: ActionReject,
		From:   []Status{Submitted, Approved},
		To:     Rejected,
	},
	ActionPrint: {
		Action: ActionPrint,
		From:   []Status{Approved},
		To:     ReadyForDispatch,
	},
	ActionDispatch: {
		Action: ActionDispatch,
		From:   []Status{ReadyForDispatch},
		To:     Dispatched,
	},
	ActionCardArrived: {
		Action: ActionCardArrived,
		From:   []Status{Dispatched},
		To:     ReadyForCollection,
	},
	// Collection also accepts dispatched (or blank) cards that already have an
	// ID number. Older records skipped the arrival step.
	ActionCardCollected: {
		Action:           ActionCardCollected,
		From:             []Status{ReadyForCollection},
		FromWithIDNumber: []Status{blank, Dispatched},
		To:               Collected,
	},
	// A confirmed payment or a cash submission puts the application back in the
	// review queue. It never pulls back an application that was already approved.
	ActionResubmit: {
		Action: ActionResubmit,
		From:   []Status{Submitted, Rejected},
		To:     Submitted,
	},
}

// Lookup returns the transition registered for an action.
func Lookup(action Action) (Transition, error) {
	t, ok := transitions[action]
	if !ok {
		return Transition{}, fmt.Errorf("workflow: unknown action %q", action)
	}
	return t, nil
}

// MustLookup is Lookup for actions known at compile time.
func MustLookup(action Action) Transition {
	t, err := Lookup(action)
	if err != nil {
		panic(err)
	}
	return t
}

// Allows reports whether an application in status current may take this transition.
func (t Transition) Allows(current Status, hasIDNumber bool) bool {
	if slices.Contains(t.From, current) {
		return true
	}
	return hasIDNumber && slices.Contains(t.FromWithIDNumber, current)
}

// Predicate renders the transition guard as SQL. The placeholders start at
// $first; args holds the values to bind to them, in order.
func (t Transition) Predicate(first int) (clause string, args []any) {
	clause = fmt.Sprintf("status = ANY($%d)", first)
	args = append(args, Strings(t.From))

	if len(t.FromWithIDNumber) > 0 {
		clause = fmt.Sprintf("(%s OR (status = ANY($%d) AND generated_id_number IS NOT NULL))", clause, first+1)
		args = append(args, Strings(t.FromWithIDNumber))
	}

	return clause, args
}

// Strings converts statuses for binding as a postgres text array.
func Strings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// Valid reports whether s is a known status.
func Valid(s string) bool {
	return slices.Contains(Statuses, Status(s))
}
