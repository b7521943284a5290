// Package services defines the business logic for accounts, profiles,
// matches, and chat. This file centralizes common service-level error values
// so that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer.
package services

import "errors"

// Account-related errors.
var (
	// ErrEmailTaken is returned when a signup uses an email that already
	// belongs to another account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on login when the email is unknown
	// or the password does not match.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidRole is returned when a signup declares a role outside the
	// allowed set (athlete, recruiter).
	ErrInvalidRole = errors.New("role must be athlete or recruiter")

	// ErrWeakPassword is returned when a signup password is below the
	// minimum length.
	ErrWeakPassword = errors.New("password too short")

	// ErrUserNotFound indicates that the referenced user account does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// Profile-related errors.
var (
	// ErrAthleteNotFound indicates that the requested athlete profile does
	// not exist.
	ErrAthleteNotFound = errors.New("athlete not found")

	// ErrRecruiterNotFound indicates that the requested recruiter profile
	// does not exist.
	ErrRecruiterNotFound = errors.New("recruiter not found")

	// ErrSportRequired is returned when an athlete profile is created or
	// updated without a sport.
	ErrSportRequired = errors.New("sport is required")

	// ErrCompanyRequired is returned when a recruiter profile is created or
	// updated without a company.
	ErrCompanyRequired = errors.New("company is required")

	// ErrProfileExists is returned when a user already has a profile of the
	// requested kind.
	ErrProfileExists = errors.New("profile already exists")
)

// Match-related errors.
var (
	// ErrMatchNotFound indicates that the requested match does not exist.
	ErrMatchNotFound = errors.New("match not found")

	// ErrDuplicateMatch is returned when a match between the same athlete
	// and recruiter already exists.
	ErrDuplicateMatch = errors.New("match already exists for this pair")

	// ErrInvalidStatus is returned when a transition targets a status other
	// than accepted or declined.
	ErrInvalidStatus = errors.New("status must be accepted or declined")

	// ErrMatchResolved is returned when a transition is attempted on a match
	// that has already left the pending state.
	ErrMatchResolved = errors.New("match already resolved")

	// ErrNotParticipant is returned when the caller is neither side of the
	// match they are trying to act on.
	ErrNotParticipant = errors.New("caller is not a participant of this match")
)

// Chat-related errors.
var (
	// ErrEmptyMessage is returned when a chat message contains no text after
	// trimming.
	ErrEmptyMessage = errors.New("message text is empty")

	// ErrMessageTooLong is returned when a chat message exceeds the maximum
	// configured length limit.
	ErrMessageTooLong = errors.New("message text too long")
)
