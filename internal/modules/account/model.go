// README: Rider account; credential handling lives outside this engine.
package account

import (
	"errors"

	"ridebooking/internal/types"
)

var ErrNotFound = errors.New("user not found")

type User struct {
	types.Audit
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number,omitempty"`
}
