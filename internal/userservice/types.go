package userservice

import (
	"log/slog"
	"time"

	"github.com/traveltales/journal/internal/common"
)

const (
	SessionTime time.Duration = 24 * time.Hour
)

var (
	AnonymousUser = User{}
)

type UserService struct {
	m        *UserModel
	sessions *SessionStore
	logger   *slog.Logger
}

type UserModel struct {
	api *common.APIClient
}

// User is a registered traveller. Password is the opaque credential the
// resource API stores; it never leaves the process as JSON.
type User struct {
	ID           common.ID `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Password     string    `json:"-"`
	CreatedAt    string    `json:"createdAt"`
	Favorites    []string  `json:"favorites"`
	Followers    []string  `json:"followers"`
	Following    []string  `json:"following"`
	Bio          string    `json:"bio,omitempty"`
	ProfileImage string    `json:"profileImage,omitempty"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest holds profile changes. Nil fields are left as they are.
type UpdateUserRequest struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Password     *string `json:"password"`
	Bio          *string `json:"bio"`
	ProfileImage *string `json:"profileImage"`
}

// Session binds a bearer token to the user who logged in with it.
type Session struct {
	Token  string    `json:"token"`
	Hash   []byte    `json:"-"`
	User   User      `json:"-"`
	Expiry time.Time `json:"expiry"`
}
