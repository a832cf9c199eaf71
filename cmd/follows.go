package main

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/mejova/bloggy/internal/core"
	"github.com/mejova/bloggy/models"
)

func (app *application) followHandler(w http.ResponseWriter, r *http.Request) {
	targetID, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestResponse(w, r, &AppError{ErrorMessage: err.Error()})
		return
	}

	user, _ := app.auth.GetAuthenticatedUser(r)

	if err := app.core.Follow(r.Context(), user.ID, targetID); err != nil {
		switch {
		case errors.Is(err, core.ErrSelfFollow):
			app.badRequestResponse(w, r, &AppError{
				ErrorMessage: "Can't follow yourself.",
			})
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	if err := app.writeJSON(w, http.StatusOK, envelope{"message": "Subscribed"}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) unfollowHandler(w http.ResponseWriter, r *http.Request) {
	targetID, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestResponse(w, r, &AppError{ErrorMessage: err.Error()})
		return
	}

	user, _ := app.auth.GetAuthenticatedUser(r)

	if err := app.core.Unfollow(r.Context(), user.ID, targetID); err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, envelope{"message": "Unsubscribed"}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) isSubscribedHandler(w http.ResponseWriter, r *http.Request) {
	targetID, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestResponse(w, r, &AppError{ErrorMessage: err.Error()})
		return
	}

	user, _ := app.auth.GetAuthenticatedUser(r)

	isSubscribed, err := app.core.IsFollowing(r.Context(), user.ID, targetID)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, envelope{"isSubscribed": isSubscribed}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

// followingHandler lists the users the principal follows. The id parameter
// accepts the literal "me" or the principal's own id; other users'
// subscription lists are not exposed.
func (app *application) followingHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := app.auth.GetAuthenticatedUser(r)

	params := httprouter.ParamsFromContext(r.Context())
	if idParam := params.ByName("id"); idParam != "me" {
		requestedID, err := app.readIDParam(r, "id")
		if err != nil {
			app.badRequestResponse(w, r, &AppError{ErrorMessage: err.Error()})
			return
		}
		if requestedID != user.ID {
			app.forbiddenResponse(w, r)
			return
		}
	}

	following, err := app.core.FollowingList(r.Context(), user.ID)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if following == nil {
		following = []models.UserSummary{}
	}

	if err := app.writeJSON(w, http.StatusOK, following, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}
