package blogservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/traveltales/journal/internal/common"
)

var (
	ErrInvalidResponse = errors.New("invalid response from server")
)

func newBlogModel(api *common.APIClient, logger *slog.Logger) *BlogModel {
	return &BlogModel{api: api, logger: logger}
}

// author is the slice of a user record the aggregation needs.
type author struct {
	ID       common.ID `json:"id"`
	Name     string    `json:"name"`
	Username string    `json:"username"`
}

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// flexRating accepts a JSON number or numeric string. Anything else
// decodes to NaN, which normalizes to the default rating.
type flexRating float64

func (r *flexRating) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch x := v.(type) {
	case float64:
		*r = flexRating(x)
	case string:
		n, err := strconv.ParseFloat(x, 64)
		if err != nil {
			n = math.NaN()
		}
		*r = flexRating(n)
	default:
		*r = flexRating(math.NaN())
	}
	return nil
}

// postRecord is a post as the resource API stores it.
type postRecord struct {
	ID        flexString      `json:"id"`
	Name      string          `json:"name"`
	Location  string          `json:"location"`
	Review    string          `json:"review"`
	Rating    *flexRating     `json:"rating"`
	ImageURL  string          `json:"imageUrl"`
	Creator   string          `json:"creator"`
	Username  string          `json:"username"`
	UserID    common.ID       `json:"userId"`
	Continent string          `json:"continent"`
	CreatedAt json.RawMessage `json:"createdAt"`
}

// postPayload is the body sent on create and update. Creator fields and
// createdAt are only sent on create.
type postPayload struct {
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Review    string    `json:"review"`
	Rating    int       `json:"rating"`
	ImageURL  string    `json:"imageUrl"`
	Continent Continent `json:"continent"`
	Creator   string    `json:"creator,omitempty"`
	Username  string    `json:"username,omitempty"`
	UserID    common.ID `json:"userId,omitempty"`
	CreatedAt string    `json:"createdAt,omitempty"`
}

func (r postRecord) valid() bool {
	return r.ID != "" && r.Location != "" && r.Review != ""
}

func (r postRecord) toPost() Post {
	rating := float64(RatingDefault)
	if r.Rating != nil {
		rating = float64(*r.Rating)
	}

	return Post{
		ID:        string(r.ID),
		Name:      r.Name,
		Location:  r.Location,
		Review:    r.Review,
		Rating:    NormalizeRating(rating),
		ImageURL:  r.ImageURL,
		Creator:   r.Creator,
		Username:  r.Username,
		UserID:    r.UserID,
		Continent: Continent(r.Continent),
		CreatedAt: NormalizeTimestamp(rawTimestamp(r.CreatedAt)),
	}
}

// rawTimestamp unquotes a JSON string and passes numbers through as text.
func rawTimestamp(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	return string(raw)
}

func (m *BlogModel) getAuthors(ctx context.Context) ([]author, error) {
	raw, err := common.RequestWithRetry[json.RawMessage](ctx, m.api, "list users", common.Call{
		Method: http.MethodGet,
		Path:   "/user",
	})
	if err != nil {
		return nil, err
	}

	authors, ok := common.DecodeList[author](m.logger, raw, "user")
	if !ok {
		m.logger.Error("invalid users response", slog.String("body", string(raw)))
		return nil, nil
	}

	return authors, nil
}

func (m *BlogModel) getPostsByUserID(ctx context.Context, userID common.ID) ([]postRecord, error) {
	raw, err := common.RequestWithRetry[json.RawMessage](ctx, m.api, "list posts", common.Call{
		Method:     http.MethodGet,
		Path:       "/user/{userId}/blogPost",
		PathParams: map[string]string{"userId": userID.String()},
	})
	if err != nil {
		return nil, err
	}

	posts, ok := common.DecodeList[postRecord](m.logger, raw, "blogPost")
	if !ok {
		m.logger.Warn("invalid posts response", slog.String("user_id", userID.String()))
		return nil, nil
	}

	return posts, nil
}

func (m *BlogModel) insert(ctx context.Context, userID common.ID, payload postPayload) (*postRecord, error) {
	rec, err := common.RequestWithRetry[postRecord](ctx, m.api, "create post", common.Call{
		Method:     http.MethodPost,
		Path:       "/user/{userId}/blogPost",
		PathParams: map[string]string{"userId": userID.String()},
		Body:       payload,
	})
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

func (m *BlogModel) update(ctx context.Context, userID common.ID, postID string, payload postPayload) (*postRecord, error) {
	rec, err := common.RequestWithRetry[postRecord](ctx, m.api, "update post", common.Call{
		Method:     http.MethodPut,
		Path:       "/user/{userId}/blogPost/{postId}",
		PathParams: map[string]string{"userId": userID.String(), "postId": postID},
		Body:       payload,
	})
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

func (m *BlogModel) delete(ctx context.Context, userID common.ID, postID string) error {
	_, err := common.RequestWithRetry[json.RawMessage](ctx, m.api, "delete post", common.Call{
		Method:     http.MethodDelete,
		Path:       "/user/{userId}/blogPost/{postId}",
		PathParams: map[string]string{"userId": userID.String(), "postId": postID},
	})
	return err
}
