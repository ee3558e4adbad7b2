package blogservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/traveltales/journal/internal/common"
)

func testPost(id, username string, userID common.ID) Post {
	return Post{
		ID:        id,
		Name:      "Trip " + id,
		Location:  "Kyoto",
		Review:    "Temples and tea",
		Rating:    7,
		Username:  username,
		UserID:    userID,
		Continent: Asia,
		CreatedAt: "2024-01-01T00:00:00.000Z",
	}
}

func ids(posts []Post) []string {
	out := []string{}
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestCriteria_Predicate(t *testing.T) {
	alice := testPost("1", "alice", 1)

	bob := testPost("2", "bob", 2)
	bob.Location = "Lisbon"
	bob.Name = "Pasteis"
	bob.Review = "Custard tarts by the river"
	bob.Rating = 3
	bob.Continent = Europe

	carol := testPost("3", "carol_travels", 3)
	carol.Location = "Nairobi"
	carol.Review = "Safari at dawn"
	carol.Rating = 9
	carol.Continent = Africa

	invalid := testPost("4", "alice", 1)
	invalid.Review = ""

	posts := []Post{alice, bob, carol, invalid}

	viewer := Viewer{
		ID:        1,
		Following: []string{"carol_travels"},
		Followers: []string{"bob"},
		Favorites: []string{"2"},
	}

	testCases := []struct {
		name     string
		criteria Criteria
		viewer   Viewer
		want     []string
	}{
		{name: "no criteria drops invalid posts", want: []string{"1", "2", "3"}},
		{name: "search location", criteria: Criteria{Search: "LISBON"}, want: []string{"2"}},
		{name: "search title", criteria: Criteria{Search: "pasteis"}, want: []string{"2"}},
		{name: "search review", criteria: Criteria{Search: "safari"}, want: []string{"3"}},
		{name: "search username", criteria: Criteria{Search: "carol"}, want: []string{"3"}},
		{name: "search without match", criteria: Criteria{Search: "tokyo"}, want: []string{}},
		{name: "search is not trimmed", criteria: Criteria{Search: "  "}, want: []string{}},
		{name: "min rating", criteria: Criteria{MinRating: 5}, want: []string{"1", "3"}},
		{name: "min rating is inclusive", criteria: Criteria{MinRating: 9}, want: []string{"3"}},
		{name: "continent", criteria: Criteria{Continent: Europe}, want: []string{"2"}},
		{name: "username substring", criteria: Criteria{Username: "TRAVEL"}, want: []string{"3"}},
		{name: "username is not trimmed", criteria: Criteria{Username: " "}, want: []string{}},
		{name: "mine only", criteria: Criteria{MineOnly: true}, viewer: viewer, want: []string{"1"}},
		{name: "mine only anonymous", criteria: Criteria{MineOnly: true}, want: []string{}},
		{name: "following", criteria: Criteria{Social: SocialFollowing}, viewer: viewer, want: []string{"3"}},
		{name: "followers", criteria: Criteria{Social: SocialFollowers}, viewer: viewer, want: []string{"2"}},
		{name: "everyone", criteria: Criteria{Social: SocialAll}, viewer: viewer, want: []string{"1", "2", "3"}},
		{name: "social ignored for anonymous", criteria: Criteria{Social: SocialFollowing}, want: []string{"1", "2", "3"}},
		{name: "favorites", criteria: Criteria{FavoritesOnly: true}, viewer: viewer, want: []string{"2"}},
		{name: "favorites anonymous", criteria: Criteria{FavoritesOnly: true}, want: []string{}},
		{
			name:     "criteria combine with and",
			criteria: Criteria{MinRating: 5, Continent: Asia, Search: "kyoto"},
			want:     []string{"1"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Filter(posts, tc.criteria.Predicate(tc.viewer))
			assert.Equal(t, tc.want, ids(got))
		})
	}
}

func TestCriteria_MinRating(t *testing.T) {
	low := testPost("1", "a", 1)
	low.Rating = 3
	low.Continent = Asia

	high := testPost("2", "b", 2)
	high.Rating = 8
	high.Continent = Europe

	got := Filter([]Post{low, high}, Criteria{MinRating: 5}.Predicate(Viewer{}))
	assert.Equal(t, []string{"2"}, ids(got))
}

func TestCriteria_Following(t *testing.T) {
	pred := Criteria{Social: SocialFollowing}.Predicate(Viewer{ID: 9, Following: []string{"alice"}})

	assert.True(t, pred(testPost("1", "alice", 1)))
	assert.False(t, pred(testPost("2", "bob", 2)))
}
