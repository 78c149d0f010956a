// Package repository turns users, roles and applications into query
// builder calls. Every failure it returns is an *apperr.Error, so the
// handlers only pick the status and wrap the message.
package repository

import (
	"errors"
	"time"

	"github.com/iliyamo/appregistry/internal/apperr"
	"github.com/iliyamo/appregistry/internal/query"
)

// Client-facing messages shared by the repositories and their handlers.
const (
	MsgUsernameExists    = "Username already exists"
	MsgEmailExists       = "Email already exists"
	MsgUserExists        = "Username or email already exists"
	MsgUserNotFound      = "User not found"
	MsgRoleExists        = "Role already exists"
	MsgRoleNotFound      = "Role not found"
	MsgApplicationExists = "Application already exists"
	MsgAppNotFound       = "Application not found"
)

// asDuplicate rewrites a unique violation from the store into a
// validation error carrying msg. Other errors pass through unchanged.
func asDuplicate(err error, msg string) error {
	if errors.Is(err, query.ErrUniqueViolation) {
		return apperr.New(apperr.KindValidation, msg, err)
	}
	return err
}

// asMissing rewrites the builder's zero-row update error into msg.
func asMissing(err error, msg string) error {
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.New(apperr.KindNotFound, msg, err)
	}
	return err
}

// clock stamps created_at and updated_at.
type clock func() time.Time

func (c clock) stamp() query.Value {
	now := time.Now
	if c != nil {
		now = c
	}
	return query.Text(now().UTC().Format(query.TimeLayout))
}
