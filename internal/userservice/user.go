package userservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/traveltales/journal/internal/common"
)

func newUserModel(api *common.APIClient) *UserModel {
	return &UserModel{api: api}
}

// stringList accepts null or an array of strings and numbers.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		switch x := item.(type) {
		case string:
			out = append(out, x)
		case float64:
			out = append(out, fmt.Sprint(x))
		}
	}
	*l = out
	return nil
}

// userRecord is a user as the resource API stores it, credential included.
type userRecord struct {
	ID           common.ID  `json:"id,omitempty"`
	Name         string     `json:"name"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	Password     string     `json:"password"`
	CreatedAt    string     `json:"createdAt,omitempty"`
	Favorites    stringList `json:"favorites"`
	Followers    stringList `json:"followers"`
	Following    stringList `json:"following"`
	Bio          string     `json:"bio,omitempty"`
	ProfileImage string     `json:"profileImage,omitempty"`
}

func (r userRecord) toUser() User {
	return User{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username,
		Email:        r.Email,
		Password:     r.Password,
		CreatedAt:    r.CreatedAt,
		Favorites:    orEmpty(r.Favorites),
		Followers:    orEmpty(r.Followers),
		Following:    orEmpty(r.Following),
		Bio:          r.Bio,
		ProfileImage: r.ProfileImage,
	}
}

func fromUser(u User) userRecord {
	return userRecord{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		Email:        u.Email,
		Password:     u.Password,
		CreatedAt:    u.CreatedAt,
		Favorites:    orEmpty(u.Favorites),
		Followers:    orEmpty(u.Followers),
		Following:    orEmpty(u.Following),
		Bio:          u.Bio,
		ProfileImage: u.ProfileImage,
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// isNotFound reports whether the resource API answered 404.
func isNotFound(err error) bool {
	var apiErr *common.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// list fetches users, optionally narrowed by the API's email search.
func (m *UserModel) list(ctx context.Context, logger *slog.Logger, email string) ([]User, error) {
	call := common.Call{Method: http.MethodGet, Path: "/user"}
	if email != "" {
		call.QueryParams = map[string]string{"email": email}
	}

	raw, err := common.RequestWithRetry[json.RawMessage](ctx, m.api, "list users", call)
	if err != nil {
		return nil, err
	}

	records, ok := common.DecodeList[userRecord](logger, raw, "user")
	if !ok {
		logger.Error("invalid users response", slog.String("body", string(raw)))
		return []User{}, nil
	}

	users := make([]User, 0, len(records))
	for _, r := range records {
		users = append(users, r.toUser())
	}
	return users, nil
}

func (m *UserModel) get(ctx context.Context, id common.ID) (*User, error) {
	rec, err := common.RequestWithRetry[userRecord](ctx, m.api, "get user", common.Call{
		Method:     http.MethodGet,
		Path:       "/user/{id}",
		PathParams: map[string]string{"id": id.String()},
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	u := rec.toUser()
	return &u, nil
}

func (m *UserModel) insert(ctx context.Context, u User) (*User, error) {
	rec, err := common.RequestWithRetry[userRecord](ctx, m.api, "create user", common.Call{
		Method: http.MethodPost,
		Path:   "/user",
		Body:   fromUser(u),
	})
	if err != nil {
		return nil, err
	}
	if !rec.ID.Valid() {
		return nil, fmt.Errorf("create user: response carried no id")
	}

	created := rec.toUser()
	return &created, nil
}

// update writes the full record back.
func (m *UserModel) update(ctx context.Context, u User) (*User, error) {
	rec, err := common.RequestWithRetry[userRecord](ctx, m.api, "update user", common.Call{
		Method:     http.MethodPut,
		Path:       "/user/{id}",
		PathParams: map[string]string{"id": u.ID.String()},
		Body:       fromUser(u),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updated := rec.toUser()
	return &updated, nil
}

func (m *UserModel) delete(ctx context.Context, id common.ID) error {
	_, err := common.RequestWithRetry[json.RawMessage](ctx, m.api, "delete user", common.Call{
		Method:     http.MethodDelete,
		Path:       "/user/{id}",
		PathParams: map[string]string{"id": id.String()},
	})
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}
