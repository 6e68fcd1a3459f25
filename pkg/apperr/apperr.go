// Package apperr defines the closed set of failure kinds the core can
// return. The HTTP boundary maps kinds to transport statuses; the core only
// classifies. Anything that is not one of these kinds is a defect and is
// propagated unwrapped.
package apperr

import (
	"errors"
	"fmt"
)

// Kind discriminates the failure variants.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindVersionConflict     Kind = "version_conflict"
	KindNotAuthorized       Kind = "not_authorized"
	KindPermissionDenied    Kind = "permission_denied"
	KindInsufficientBalance Kind = "insufficient_balance"
	KindFriendRequest       Kind = "friend_request_invalid"
	KindDatabase            Kind = "database"
)

// Error is a classified failure. Entity is set for kinds that refer to a
// specific entity (not found, version conflict) so callers can render the
// right message per entity without parsing strings.
type Error struct {
	Kind    Kind
	Entity  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Entity != "" && e.Message != "":
		return fmt.Sprintf("%s: %s %s", e.Kind, e.Entity, e.Message)
	case e.Entity != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Entity)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two classified errors by kind (and entity, when
// the target names one).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Entity != "" && t.Entity != e.Entity {
		return false
	}
	return t.Kind == e.Kind
}

// NotFound reports that the named entity (profile, project, task, store,
// store item) does not exist.
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, Message: "not found"}
}

// VersionConflict reports a stale expected version on an optimistic update.
func VersionConflict(entity string) *Error {
	return &Error{Kind: KindVersionConflict, Entity: entity, Message: "version mismatch, reload and try again"}
}

// NotAuthorized reports that the caller is not a member of the project.
func NotAuthorized(msg string) *Error {
	return &Error{Kind: KindNotAuthorized, Message: msg}
}

// PermissionDenied reports that the caller is a member but lacks the role
// required for the action.
func PermissionDenied(msg string) *Error {
	return &Error{Kind: KindPermissionDenied, Message: msg}
}

// InsufficientBalance reports a purchase exceeding the caller's balance.
func InsufficientBalance() *Error {
	return &Error{Kind: KindInsufficientBalance, Message: "insufficient balance"}
}

// FriendRequest reports an invalid friend-graph transition.
func FriendRequest(msg string) *Error {
	return &Error{Kind: KindFriendRequest, Message: msg}
}

// Database wraps a storage failure. Driver internals stay behind Unwrap and
// are never rendered to callers.
func Database(err error) *Error {
	return &Error{Kind: KindDatabase, Err: err}
}

// KindOf returns the kind of a classified error, or false when err is not
// one of the closed set.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsNotFound reports whether err is a not-found failure, optionally for a
// specific entity.
func IsNotFound(err error, entity string) bool {
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindNotFound {
		return false
	}
	return entity == "" || e.Entity == entity
}
