package blogservice

import (
	"slices"
	"strings"

	"github.com/traveltales/journal/internal/common"
)

type SocialScope string

const (
	SocialAll       SocialScope = "all"
	SocialFollowing SocialScope = "following"
	SocialFollowers SocialScope = "followers"
)

// Criteria are the feed filters. Zero values disable a criterion.
type Criteria struct {
	Search        string
	MinRating     int
	Continent     Continent
	MineOnly      bool
	Username      string
	Social        SocialScope
	FavoritesOnly bool
}

// Viewer is the user a feed is filtered for. The zero Viewer is anonymous.
type Viewer struct {
	ID        common.ID
	Following []string
	Followers []string
	Favorites []string
}

func (v Viewer) Authenticated() bool {
	return v.ID.Valid()
}

type Predicate func(Post) bool

// Predicate combines every active criterion with AND. Posts missing an
// id, location or review never pass.
func (c Criteria) Predicate(v Viewer) Predicate {
	preds := []Predicate{validPost}

	if search := strings.ToLower(c.Search); search != "" {
		preds = append(preds, func(p Post) bool {
			return containsFold(p.Location, search) ||
				containsFold(p.Name, search) ||
				containsFold(p.Review, search) ||
				containsFold(p.Username, search)
		})
	}

	if c.MinRating > 0 {
		preds = append(preds, func(p Post) bool { return p.Rating >= c.MinRating })
	}

	if c.MineOnly {
		preds = append(preds, func(p Post) bool { return v.Authenticated() && p.UserID == v.ID })
	}

	if c.Continent != "" {
		preds = append(preds, func(p Post) bool { return p.Continent == c.Continent })
	}

	if username := strings.ToLower(c.Username); username != "" {
		preds = append(preds, func(p Post) bool { return containsFold(p.Username, username) })
	}

	if v.Authenticated() {
		switch c.Social {
		case SocialFollowing:
			preds = append(preds, func(p Post) bool { return slices.Contains(v.Following, p.Username) })
		case SocialFollowers:
			preds = append(preds, func(p Post) bool { return slices.Contains(v.Followers, p.Username) })
		}
	}

	if c.FavoritesOnly {
		preds = append(preds, func(p Post) bool { return v.Authenticated() && slices.Contains(v.Favorites, p.ID) })
	}

	return func(p Post) bool {
		for _, pred := range preds {
			if !pred(p) {
				return false
			}
		}
		return true
	}
}

// Filter returns the posts that satisfy pred, keeping their order.
func Filter(posts []Post, pred Predicate) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

func validPost(p Post) bool {
	return p.ID != "" && p.Location != "" && p.Review != ""
}

// containsFold expects needle to be lower case already.
func containsFold(s, needle string) bool {
	return strings.Contains(strings.ToLower(s), needle)
}
