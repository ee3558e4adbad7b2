package userservice

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/traveltales/journal/internal/common"
)

var (
	ErrInvalidCredentials = errors.New("invalid authentication credentials")
	ErrNotFound           = errors.New("user not found")
	ErrDuplicateUsername  = errors.New("duplicate username")
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrFollowSelf         = errors.New("users cannot follow themselves")
)

const createdAtLayout = "2006-01-02T15:04:05.000Z"

var now = time.Now

func NewUserService(api *common.APIClient, sessions *SessionStore, logger *slog.Logger) *UserService {
	return &UserService{
		m:        newUserModel(api),
		sessions: sessions,
		logger:   logger,
	}
}

// IsAnonymous reports whether u is the placeholder for unauthenticated requests.
func IsAnonymous(u *User) bool {
	return u == &AnonymousUser
}

// Login looks the user up by e-mail and opens a session when the password matches.
func (s *UserService) Login(ctx context.Context, email, password string) (*User, *Session, error) {
	v := common.NewValidator()
	v.Check(email != "", "email", "must be provided")
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return nil, nil, v.ValidationError()
	}

	users, err := s.m.list(ctx, s.logger, email)
	if err != nil {
		return nil, nil, err
	}

	idx := slices.IndexFunc(users, func(u User) bool { return strings.EqualFold(u.Email, email) })
	if idx < 0 || !passwordMatches(users[idx].Password, password) {
		return nil, nil, ErrInvalidCredentials
	}

	user := users[idx]
	session, err := s.sessions.Create(user)
	if err != nil {
		return nil, nil, err
	}

	return &user, session, nil
}

// Register creates the account and logs the new user in.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*User, *Session, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	v := common.NewValidator()
	validateName(v, req.Name)
	validateUsername(v, req.Username)
	validateEmail(v, req.Email)
	validatePassword(v, req.Password)
	if !v.Valid() {
		return nil, nil, v.ValidationError()
	}

	users, err := s.m.list(ctx, s.logger, "")
	if err != nil {
		return nil, nil, err
	}

	for _, u := range users {
		if strings.EqualFold(u.Username, req.Username) {
			return nil, nil, ErrDuplicateUsername
		}
		if strings.EqualFold(u.Email, req.Email) {
			return nil, nil, ErrDuplicateEmail
		}
	}

	user, err := s.m.insert(ctx, User{
		Name:      req.Name,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		CreatedAt: now().UTC().Format(createdAtLayout),
		Favorites: []string{},
		Followers: []string{},
		Following: []string{},
	})
	if err != nil {
		return nil, nil, err
	}

	session, err := s.sessions.Create(*user)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

func (s *UserService) Logout(token string) {
	s.sessions.Delete(token)
}

// GetUserBySessionToken returns the user held by the session. The user is
// the one stored at login or at the last refresh.
func (s *UserService) GetUserBySessionToken(token string) (*User, error) {
	session, err := s.sessions.Get(token)
	if err != nil {
		return nil, err
	}

	return &session.User, nil
}

func (s *UserService) GetUsers(ctx context.Context) ([]User, error) {
	return s.m.list(ctx, s.logger, "")
}

func (s *UserService) GetUser(ctx context.Context, id common.ID) (*User, error) {
	v := common.NewValidator()
	validateID(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.get(ctx, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	v := common.NewValidator()
	v.Check(username != "", "username", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	users, err := s.m.list(ctx, s.logger, "")
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		if strings.EqualFold(u.Username, username) {
			return &u, nil
		}
	}

	return nil, ErrNotFound
}

// UpdateUser merges the changes into the stored profile and writes it back.
func (s *UserService) UpdateUser(ctx context.Context, id common.ID, req UpdateUserRequest) (*User, error) {
	current, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	u := *current
	v := common.NewValidator()

	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
		validateName(v, u.Name)
	}
	if req.Email != nil {
		u.Email = strings.TrimSpace(*req.Email)
		validateEmail(v, u.Email)
	}
	if req.Password != nil {
		u.Password = *req.Password
		validatePassword(v, u.Password)
	}
	if req.Bio != nil {
		u.Bio = strings.TrimSpace(*req.Bio)
		v.Check(v.CheckStringLength(u.Bio, 0, 500), "bio", "must not be more than 500 characters long")
	}
	if req.ProfileImage != nil {
		u.ProfileImage = strings.TrimSpace(*req.ProfileImage)
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if !strings.EqualFold(u.Email, current.Email) {
		users, err := s.m.list(ctx, s.logger, "")
		if err != nil {
			return nil, err
		}
		for _, other := range users {
			if other.ID != u.ID && strings.EqualFold(other.Email, u.Email) {
				return nil, ErrDuplicateEmail
			}
		}
	}

	if u.Favorites == nil {
		u.Favorites = []string{}
	}

	updated, err := s.m.update(ctx, u)
	if err != nil {
		return nil, err
	}

	s.sessions.Refresh(*updated)
	return updated, nil
}

// DeleteUser removes the account and ends all of its sessions.
func (s *UserService) DeleteUser(ctx context.Context, id common.ID) error {
	v := common.NewValidator()
	validateID(v, id, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	if err := s.m.delete(ctx, id); err != nil {
		return err
	}

	s.sessions.DeleteUser(id)
	return nil
}

// ToggleFavorite adds postID to the user's favorites, or removes it when
// already present. The returned user is the stored record after the write.
func (s *UserService) ToggleFavorite(ctx context.Context, id common.ID, postID string) (*User, error) {
	v := common.NewValidator()
	v.Check(postID != "", "post_id", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Favorites = toggle(u.Favorites, postID)

	updated, err := s.m.update(ctx, *u)
	if err != nil {
		return nil, err
	}

	s.sessions.Refresh(*updated)
	return updated, nil
}

// ToggleFollow follows username on behalf of viewerID, or unfollows when
// already following. The direction comes from the viewer's list and is
// applied to both sides. Follow lists hold usernames. Both users are
// written; when the second write fails the first is reverted.
func (s *UserService) ToggleFollow(ctx context.Context, viewerID common.ID, username string) (*User, bool, error) {
	target, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, false, err
	}
	if target.ID == viewerID {
		return nil, false, ErrFollowSelf
	}

	viewer, err := s.GetUser(ctx, viewerID)
	if err != nil {
		return nil, false, err
	}

	previous := *viewer
	previous.Following = slices.Clone(viewer.Following)

	following := !slices.Contains(viewer.Following, target.Username)
	viewer.Following = setMember(viewer.Following, target.Username, following)
	target.Followers = setMember(target.Followers, viewer.Username, following)

	updatedViewer, err := s.m.update(ctx, *viewer)
	if err != nil {
		return nil, false, err
	}

	updatedTarget, err := s.m.update(ctx, *target)
	if err != nil {
		if _, rerr := s.m.update(context.WithoutCancel(ctx), previous); rerr != nil {
			s.logger.Error("could not revert follow", slog.String("user_id", viewerID.String()), slog.String("error", rerr.Error()))
		}
		return nil, false, err
	}

	s.sessions.Refresh(*updatedViewer)
	s.sessions.Refresh(*updatedTarget)

	return updatedViewer, following, nil
}

func toggle(list []string, id string) []string {
	if slices.Contains(list, id) {
		return slices.DeleteFunc(slices.Clone(list), func(s string) bool { return s == id })
	}
	return append(slices.Clone(list), id)
}

// setMember returns a copy of list that contains name exactly once when
// present is true, and not at all otherwise.
func setMember(list []string, name string, present bool) []string {
	out := slices.DeleteFunc(slices.Clone(list), func(s string) bool { return s == name })
	if present {
		out = append(out, name)
	}
	return out
}
