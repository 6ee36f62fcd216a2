// Package access evaluates Unix-style mode bits against a requester's
// relationship to a namespace or page. Modes pack three 3-bit groups
// (owner, namespace members, others), each read(4)/write(2)/manage(1).
package access

import (
	"strconv"

	"wikid/pkg/models"
	"wikid/pkg/wikierr"
)

// Requests.
const (
	Read   uint16 = 0o4
	Write  uint16 = 0o2
	Manage uint16 = 0o1

	mask uint16 = 0o7
)

// Kinds select the 3-bit subfield by shift distance.
const (
	Owner     uint16 = 6
	Namespace uint16 = 3
	Others    uint16 = 0
)

// Entity is anything with a mode, an owner and a group-membership
// predicate. Namespaces and pages both qualify, so the composite rule
// lives here once instead of per type.
type Entity interface {
	AccessMode() uint16
	AccessOwner() string
	Grouped(u *models.User) bool
}

// Has reports whether the 3-bit subfield selected by kind shares a set bit
// with the request. Pure, no errors.
func Has(mode, kind, request uint16) bool {
	return ((mode>>kind)&mask)&request != 0
}

// Evaluate applies the composite rule: the meta user and the entity's owner
// always pass; members pass when the namespace-kind bits allow the request;
// everyone else, including unauthenticated callers, falls through to the
// others-kind bits.
func Evaluate(e Entity, u *models.User, request uint16) bool {
	if u != nil {
		if u.Name == models.Meta {
			return true
		}
		if owner := e.AccessOwner(); owner != "" && owner == u.Name {
			return true
		}
		if e.Grouped(u) && Has(e.AccessMode(), Namespace, request) {
			return true
		}
	}
	return Has(e.AccessMode(), Others, request)
}

// ParseMode parses an octal mode string such as "755".
func ParseMode(s string) (uint16, error) {
	m, err := strconv.ParseUint(s, 8, 16)
	if err != nil {
		return 0, wikierr.InvalidArgument("access.parse_mode "+s, err)
	}
	return uint16(m), nil
}
