// Package identity derives stable internal identifiers from external
// authentication subjects.
package identity

import (
	"strings"

	"github.com/google/uuid"
)

// userNamespace is the fixed namespace for deriving user UUIDs. Changing it
// would orphan every existing session row, so it never changes.
var userNamespace = uuid.MustParse("8f1a26c2-0c3b-4d6e-9a75-2f35be1d4b11")

// UserUUID maps an external user identifier (e.g. an auth provider subject)
// to a deterministic UUID. The same external ID always yields the same UUID,
// which is what lets session rows key on a proper UUID column while the
// identity provider hands out opaque strings.
func UserUUID(externalID string) uuid.UUID {
	return uuid.NewSHA1(userNamespace, []byte(strings.TrimSpace(externalID)))
}
