package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)

	// Not require authentication for these routes
	router.HandlerFunc(http.MethodPost, "/api/auth/register", app.registerUserHandler)
	router.HandlerFunc(http.MethodPost, "/api/auth/login", app.loginHandler)
	router.HandlerFunc(http.MethodGet, "/api/auth/me", app.meHandler)
	router.HandlerFunc(http.MethodGet, "/api/auth/google", app.googleRedirectHandler)
	router.HandlerFunc(http.MethodGet, "/api/auth/google/callback", app.googleCallbackHandler)
	router.HandlerFunc(http.MethodGet, "/api/users", app.listUsersHandler)
	router.HandlerFunc(http.MethodGet, "/api/users/:id", app.getUserHandler)
	router.HandlerFunc(http.MethodGet, "/api/posts", app.getPostsHandler)
	router.HandlerFunc(http.MethodGet, "/api/posts/:id", app.getPostHandler)

	// Require authentication for these routes
	router.HandlerFunc(http.MethodPost, "/api/users/:id/follow", app.requireAuthenticatedUser(app.followHandler))
	router.HandlerFunc(http.MethodPost, "/api/users/:id/unfollow", app.requireAuthenticatedUser(app.unfollowHandler))
	router.HandlerFunc(http.MethodGet, "/api/users/:id/isSubscribed", app.requireAuthenticatedUser(app.isSubscribedHandler))
	router.HandlerFunc(http.MethodGet, "/api/users/:id/following", app.requireAuthenticatedUser(app.followingHandler))
	router.HandlerFunc(http.MethodGet, "/api/users/:id/posts", app.requireAuthenticatedUser(app.userPostsHandler))
	router.HandlerFunc(http.MethodPost, "/api/posts", app.requireAuthenticatedUser(app.createPostHandler))
	router.HandlerFunc(http.MethodPut, "/api/posts/:id", app.requireAuthenticatedUser(app.updatePostHandler))
	router.HandlerFunc(http.MethodDelete, "/api/posts/:id", app.requireAuthenticatedUser(app.deletePostHandler))
	router.HandlerFunc(http.MethodGet, "/api/notifications", app.requireAuthenticatedUser(app.listNotificationsHandler))
	router.HandlerFunc(http.MethodPatch, "/api/notifications/mark-seen", app.requireAuthenticatedUser(app.markSeenHandler))
	router.HandlerFunc(http.MethodGet, "/api/live", app.requireAuthenticatedUser(app.liveHandler))

	// Admin-only routes
	router.HandlerFunc(http.MethodGet, "/api/admin/users", app.requireAdminUser(app.adminListUsersHandler))
	router.HandlerFunc(http.MethodDelete, "/api/admin/users/:id", app.requireAdminUser(app.adminDeleteUserHandler))
	router.HandlerFunc(http.MethodGet, "/api/admin/posts", app.requireAdminUser(app.adminListPostsHandler))
	router.HandlerFunc(http.MethodDelete, "/api/admin/posts/:id", app.requireAdminUser(app.adminDeletePostHandler))

	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	return app.recoverPanic(app.authenticate(router))
}
