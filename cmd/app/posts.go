package main

import (
	"net/http"
	"slices"

	"github.com/traveltales/journal/internal/blogservice"
)

type postRequest struct {
	Name      string   `json:"name"`
	Location  string   `json:"location"`
	Review    string   `json:"review"`
	Rating    *float64 `json:"rating"`
	ImageURL  string   `json:"imageUrl"`
	Continent string   `json:"continent"`
}

func (p postRequest) input() blogservice.PostInput {
	return blogservice.PostInput{
		Name:      p.Name,
		Location:  p.Location,
		Review:    p.Review,
		Rating:    p.Rating,
		ImageURL:  p.ImageURL,
		Continent: blogservice.Continent(p.Continent),
	}
}

// listPostsHandler serves the filtered feed. Personal filters only apply
// to authenticated viewers.
func (app *application) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	criteria, p, err := app.readFeedParams(r)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)
	viewer := blogservice.Viewer{
		ID:        user.ID,
		Following: user.Following,
		Followers: user.Followers,
		Favorites: user.Favorites,
	}

	posts, err := app.blogService.GetAllPosts(r.Context())
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	filtered := blogservice.Filter(posts, criteria.Predicate(viewer))

	err = app.writeJSON(w, http.StatusOK, envelope{
		"posts": paginate(filtered, p),
		"metadata": map[string]int{
			"total":  len(filtered),
			"limit":  p.Limit,
			"offset": p.Offset,
		},
	}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	var input postRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)
	owner := blogservice.Owner{ID: user.ID, Name: user.Name, Username: user.Username}

	post, err := app.blogService.CreatePost(r.Context(), owner, input.input())
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	id := app.readStringParam(r, "id")

	var input postRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	post, err := app.blogService.UpdatePost(r.Context(), user.ID, id, input.input())
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	id := app.readStringParam(r, "id")

	user := app.getUserContext(r)

	err := app.blogService.DeletePost(r.Context(), user.ID, id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "post deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) toggleFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	id := app.readStringParam(r, "id")

	user := app.getUserContext(r)

	updated, err := app.userService.ToggleFavorite(r.Context(), user.ID, id)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{
		"user":      updated,
		"favorited": slices.Contains(updated.Favorites, id),
	}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listCurrentUserPostsHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	posts, err := app.blogService.GetUserPosts(r.Context(), user.ID)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": posts}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listFavoritePostsHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	posts, err := app.blogService.GetFavoritePosts(r.Context(), user.Favorites)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": posts}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}
