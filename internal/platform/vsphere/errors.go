package vsphere

import (
	"errors"
	"strings"

	"github.com/vmware/govmomi/find"
)

// IsNotFound checks if an error means the inventory object does not exist.
func IsNotFound(err error) bool {
	var nf *find.NotFoundError
	return errors.As(err, &nf)
}

// isInvalidLogin checks if a login error is a credential rejection rather
// than an unreachable or misbehaving endpoint. The SOAP fault type is
// InvalidLogin; govmomi surfaces it in the error text.
func isInvalidLogin(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "InvalidLogin") ||
		strings.Contains(errStr, "incorrect user name or password")
}
