package main

import (
	"net/http"
	"time"

	"github.com/mejova/bloggy/internal/auth"
	"github.com/mejova/bloggy/internal/utils/collectionutils"
	"github.com/mejova/bloggy/internal/utils/functional"
	"github.com/mejova/bloggy/models"
)

type notificationResponse struct {
	PostID    int64     `json:"postId"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	Seen      bool      `json:"seen"`
}

func (app *application) listNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := app.auth.GetAuthenticatedUser(r)

	notifications, err := app.core.NotificationsByRecipient(r.Context(), user.ID)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	postIdList := functional.Map(notifications, func(notification *models.Notification) int64 {
		return notification.PostID
	})

	posts, err := app.core.GetPostsByIdList(r.Context(), postIdList)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	postByPostId := collectionutils.Associate(posts, func(post *models.Post) (int64, *models.Post) {
		return post.ID, post
	})

	authorIdList := functional.Map(posts, func(post *models.Post) int64 {
		return post.AuthorID
	})

	authorList, err := app.core.GetUsersByIdList(r.Context(), authorIdList)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	authorByUserId := collectionutils.Associate(authorList, func(author *auth.User) (int64, *auth.User) {
		return author.ID, author
	})

	response := make([]notificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		// A notification may outlive its post (admin deletion); skip it
		// rather than render an empty entry.
		post, ok := postByPostId[notification.PostID]
		if !ok {
			continue
		}

		authorName := ""
		if author, ok := authorByUserId[post.AuthorID]; ok {
			authorName = author.Username
		}

		response = append(response, notificationResponse{
			PostID:    post.ID,
			Title:     post.Title,
			Author:    authorName,
			CreatedAt: notification.CreatedAt,
			Seen:      notification.Seen,
		})
	}

	if err := app.writeJSON(w, http.StatusOK, response, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) markSeenHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := app.auth.GetAuthenticatedUser(r)

	if err := app.core.MarkAllSeen(r.Context(), user.ID); err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, envelope{"message": "Notifications marked seen"}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}
