package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	// auth
	router.HandlerFunc(http.MethodPost, "/v1/auth/register", app.registerUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/auth/login", app.loginUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/auth/logout", app.requireAuthUser(app.logoutUserHandler))

	// posts
	router.HandlerFunc(http.MethodGet, "/v1/posts", app.listPostsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/posts", app.requireAuthUser(app.createPostHandler))
	router.HandlerFunc(http.MethodPut, "/v1/posts/:id", app.requireAuthUser(app.updatePostHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/posts/:id", app.requireAuthUser(app.deletePostHandler))
	router.HandlerFunc(http.MethodPost, "/v1/posts/:id/favorite", app.requireAuthUser(app.toggleFavoriteHandler))

	// current user
	router.HandlerFunc(http.MethodGet, "/v1/me", app.requireAuthUser(app.showCurrentUserHandler))
	router.HandlerFunc(http.MethodPut, "/v1/me", app.requireAuthUser(app.updateCurrentUserHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/me", app.requireAuthUser(app.deleteCurrentUserHandler))
	router.HandlerFunc(http.MethodGet, "/v1/me/posts", app.requireAuthUser(app.listCurrentUserPostsHandler))
	router.HandlerFunc(http.MethodGet, "/v1/me/favorites", app.requireAuthUser(app.listFavoritePostsHandler))

	// profiles
	router.HandlerFunc(http.MethodGet, "/v1/users/:username", app.showProfileHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/:username/follow", app.requireAuthUser(app.toggleFollowHandler))

	return app.recoverPanic(app.instrument(app.logRequest(app.rateLimit(app.authenticate(router)))))
}
