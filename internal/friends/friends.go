// Package friends implements the four-state relationship machine between
// user pairs: none, pending in either direction, or friends.
package friends

import (
	"context"
	"errors"

	"temanin/server/internal/store"
)

var (
	// ErrSelfRequest is returned when a user targets themselves
	ErrSelfRequest = errors.New("cannot send friend request to yourself")

	// ErrAlreadyFriends is returned when the pair is already in the
	// friends state
	ErrAlreadyFriends = errors.New("already friends")

	// ErrRequestPending is returned when the acting user has already sent
	// a request to the target
	ErrRequestPending = errors.New("friend request already sent")

	// ErrCounterpartPending is returned when the target has a request
	// pending towards the acting user; sending a second request in the
	// opposite direction would put the pair in two states at once
	ErrCounterpartPending = errors.New("counterpart request already pending")
)

// Service drives relationship transitions. Every operation writes the two
// participant records independently, one write each; the writes are
// idempotent and order-independent so a retry after a crash between them
// converges the pair.
type Service struct {
	store store.RelationStore
}

func NewService(s store.RelationStore) *Service {
	return &Service{store: s}
}

// Status returns the relationship from actorID's perspective
func (s *Service) Status(ctx context.Context, actorID, targetID string) (store.Rel, error) {
	return s.store.Relation(ctx, actorID, targetID)
}

// SendRequest transitions (actor, target) to pending(actor→target).
// The writes run even when the actor's side already shows the pending
// state, so a retry repairs a half-applied earlier attempt before the
// already-pending result is reported.
func (s *Service) SendRequest(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return ErrSelfRequest
	}

	rel, err := s.store.Relation(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	switch rel {
	case store.RelFriend:
		return ErrAlreadyFriends
	case store.RelIncoming:
		return ErrCounterpartPending
	}

	if err := s.store.SetRelation(ctx, actorID, targetID, store.RelOutgoing); err != nil {
		return err
	}
	if err := s.store.SetRelation(ctx, targetID, actorID, store.RelIncoming); err != nil {
		return err
	}

	if rel == store.RelOutgoing {
		return ErrRequestPending
	}
	return nil
}

// CancelRequest withdraws a pending actor→target request. A no-op when no
// such request exists; friendship is never touched.
func (s *Service) CancelRequest(ctx context.Context, actorID, targetID string) error {
	if err := s.store.ClearRelation(ctx, actorID, targetID, store.RelOutgoing); err != nil {
		return err
	}
	return s.store.ClearRelation(ctx, targetID, actorID, store.RelIncoming)
}

// AcceptRequest moves the pair to friends. requesterID is the user who sent
// the original request, acceptorID the one accepting it. Each side is a
// single upsert that replaces the pending entry, so re-running after a
// partial failure converges both sides.
func (s *Service) AcceptRequest(ctx context.Context, requesterID, acceptorID string) error {
	if err := s.store.SetRelation(ctx, acceptorID, requesterID, store.RelFriend); err != nil {
		return err
	}
	return s.store.SetRelation(ctx, requesterID, acceptorID, store.RelFriend)
}

// DeclineRequest removes a pending requester→acceptor request without
// creating a friendship. Idempotent.
func (s *Service) DeclineRequest(ctx context.Context, requesterID, acceptorID string) error {
	if err := s.store.ClearRelation(ctx, acceptorID, requesterID, store.RelIncoming); err != nil {
		return err
	}
	return s.store.ClearRelation(ctx, requesterID, acceptorID, store.RelOutgoing)
}
