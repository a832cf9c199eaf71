package main

import (
	"errors"
	"net/http"

	"github.com/mejova/bloggy/internal/core"
	"github.com/mejova/bloggy/internal/filter"
	"github.com/mejova/bloggy/models"
)

func (app *application) adminListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := app.core.ListUsers(r.Context())
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if users == nil {
		users = []models.UserSummary{}
	}

	if err := app.writeJSON(w, http.StatusOK, users, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

// adminDeleteUserHandler removes a user record. Follower references to the
// deleted user are deliberately left in place; reads resolve through the
// users table and skip them.
func (app *application) adminDeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestResponse(w, r, &AppError{ErrorMessage: err.Error()})
		return
	}

	admin, _ := app.auth.GetAuthenticatedUser(r)
	if admin.ID == userID {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: "Cannot delete yourself",
		})
		return
	}

	if err := app.core.DeleteUser(r.Context(), userID); err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			app.notFoundResponse(w, r)
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	if err := app.writeJSON(w, http.StatusOK, envelope{"message": "User deleted"}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) adminListPostsHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := app.core.GetPosts(r.Context(), filter.NewFilter(100, 0), "", 0)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	response, err := app.preparePostListResponse(r.Context(), posts)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, response, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) adminDeletePostHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestResponse(w, r, &AppError{ErrorMessage: err.Error()})
		return
	}

	if err := app.core.DeletePost(r.Context(), postID); err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			app.notFoundResponse(w, r)
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	if err := app.writeJSON(w, http.StatusOK, envelope{"message": "Post deleted"}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}
