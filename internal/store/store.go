// Package store is the durable key-value storage of the client: the bearer
// token pair and per-problem draft solutions live here. Values are stored as
// plain text; there is no encryption and no expiry.
package store

import (
	"errors"
	"strconv"
)

const (
	AccessTokenKey  = "access-token"
	RefreshTokenKey = "refresh-token"
)

var ErrClosed = errors.New("store is closed")

type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// SetMany writes every pair or none of them.
	SetMany(values map[string]string) error
	Remove(key ...string) error
	Close() error
}

// DraftKey is the key of the locally saved solution of a problem.
func DraftKey(problemID int) string {
	return "p" + strconv.Itoa(problemID)
}

// Credentials returns the stored token pair. ok is false unless both are present.
func Credentials(s Store) (access, refresh string, ok bool, err error) {
	var hasAccess, hasRefresh bool
	if access, hasAccess, err = s.Get(AccessTokenKey); err != nil {
		return
	}
	if refresh, hasRefresh, err = s.Get(RefreshTokenKey); err != nil {
		return
	}
	ok = hasAccess && hasRefresh
	return
}
