package arrears

import (
	"github.com/shopspring/decimal"
)

// ActionType identifies a collection step
type ActionType string

const (
	ActionLegalCollection     ActionType = "legal_collection"
	ActionVehicleRepossession ActionType = "vehicle_repossession"
	ActionFinalNotice         ActionType = "final_notice"
	ActionContactCustomer     ActionType = "contact_customer"
)

// Priority is the urgency attached to a collection step
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// Overdue-day thresholds of the escalation ladder
const (
	LegalCollectionDays     = 30
	VehicleRepossessionDays = 15
	FinalNoticeDays         = 7
)

// CollectionAction is one recommended step of a collection plan
type CollectionAction struct {
	Action      ActionType `json:"action"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
}

type rung struct {
	minDays  int
	action   ActionType
	priority Priority
}

// ladder is ordered by precedence; every rung is checked on its own so
// several steps can apply at once
var ladder = []rung{
	{LegalCollectionDays, ActionLegalCollection, PriorityUrgent},
	{VehicleRepossessionDays, ActionVehicleRepossession, PriorityHigh},
	{FinalNoticeDays, ActionFinalNotice, PriorityHigh},
}

// BuildCollectionPlan returns the recommended steps, most severe first,
// with English titles. Contacting the customer is always the last step.
func BuildCollectionPlan(outstandingBalance decimal.Decimal, overdueDays int) []CollectionAction {
	return BuildCollectionPlanWith(EnglishTitles{}, outstandingBalance, overdueDays)
}

// BuildCollectionPlanWith is BuildCollectionPlan with caller-supplied titles.
// outstandingBalance does not affect which steps are chosen.
func BuildCollectionPlanWith(titles Titles, _ decimal.Decimal, overdueDays int) []CollectionAction {
	if titles == nil {
		titles = EnglishTitles{}
	}

	plan := make([]CollectionAction, 0, len(ladder)+1)
	for _, r := range ladder {
		if overdueDays >= r.minDays {
			plan = append(plan, newAction(titles, r.action, r.priority))
		}
	}
	return append(plan, newAction(titles, ActionContactCustomer, PriorityMedium))
}

func newAction(titles Titles, action ActionType, priority Priority) CollectionAction {
	return CollectionAction{
		Action:      action,
		Title:       titles.Title(action),
		Description: titles.Description(action),
		Priority:    priority,
	}
}
