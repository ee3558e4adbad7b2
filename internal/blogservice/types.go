package blogservice

import (
	"log/slog"

	"github.com/traveltales/journal/internal/common"
)

type Continent string

const (
	Africa       Continent = "Africa"
	Antarctica   Continent = "Antarctica"
	Asia         Continent = "Asia"
	Europe       Continent = "Europe"
	NorthAmerica Continent = "North America"
	Oceania      Continent = "Oceania"
	SouthAmerica Continent = "South America"
)

var Continents = []Continent{Africa, Antarctica, Asia, Europe, NorthAmerica, Oceania, SouthAmerica}

const (
	RatingMin     = 1
	RatingMax     = 10
	RatingDefault = 5

	// UnknownUsername is attributed to posts whose owner has no username.
	UnknownUsername = "Unknown User"
)

// Post is a travel post. Creator, Username and UserID are copied from the
// owner when the post is created and are not re-synced afterwards.
type Post struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Location  string    `json:"location"`
	Review    string    `json:"review"`
	Rating    int       `json:"rating"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Creator   string    `json:"creator"`
	Username  string    `json:"username"`
	UserID    common.ID `json:"userId"`
	Continent Continent `json:"continent"`
	// CreatedAt is UTC in a fixed-width layout, so it sorts lexically.
	CreatedAt string `json:"createdAt"`
}

// Owner is the user a new post is attributed to.
type Owner struct {
	ID       common.ID
	Name     string
	Username string
}

// PostInput carries the editable fields of a post. A nil or zero rating
// is replaced by RatingDefault.
type PostInput struct {
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Review    string    `json:"review"`
	Rating    *float64  `json:"rating"`
	ImageURL  string    `json:"imageUrl"`
	Continent Continent `json:"continent"`
}

type BlogModel struct {
	api    *common.APIClient
	logger *slog.Logger
}

type BlogService struct {
	m       *BlogModel
	logger  *slog.Logger
	metrics *common.Metrics
	fanout  int
}
