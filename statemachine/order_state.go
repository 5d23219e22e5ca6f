// Package statemachine is the single source of truth for which order status
// changes are allowed and who may make them.
package statemachine

import (
	"errors"
	"strings"

	"pizza-delivery-api/models"
)

type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorDriver   Actor = "driver"
	ActorSystem   Actor = "system"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor Actor              `json:"actor"`
}

var validTransitions = []Transition{
	// Payment settles the order
	{From: models.StatusPending, To: models.StatusConfirmed, Actor: ActorSystem},
	// Customer may back out until the kitchen starts; failed or expired payments cancel too
	{From: models.StatusPending, To: models.StatusCancelled, Actor: ActorCustomer},
	{From: models.StatusPending, To: models.StatusCancelled, Actor: ActorSystem},
	{From: models.StatusConfirmed, To: models.StatusCancelled, Actor: ActorCustomer},
	{From: models.StatusConfirmed, To: models.StatusCancelled, Actor: ActorSystem},
	// Store staff and riders share the driver role
	{From: models.StatusConfirmed, To: models.StatusPreparing, Actor: ActorDriver},
	{From: models.StatusPreparing, To: models.StatusOnDelivery, Actor: ActorDriver},
	{From: models.StatusOnDelivery, To: models.StatusDelivered, Actor: ActorDriver},
}

type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor Actor
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ErrInvalidTransition matches every *TransitionError under errors.Is.
var ErrInvalidTransition = errors.New("invalid transition")

type TransitionError struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor Actor
}

func (e *TransitionError) Error() string {
	return "invalid transition: " + string(e.From) + " → " + string(e.To) +
		" is not allowed for actor '" + string(e.Actor) + "'. " +
		"Valid transitions from " + string(e.From) + " are: " + describeValidFrom(e.From)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.OrderStatus, actor Actor) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return &TransitionError{From: from, To: to, Actor: actor}
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return append([]Transition{}, validTransitions...)
}
