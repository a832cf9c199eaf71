package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mejova/bloggy/internal/auth"
	"github.com/mejova/bloggy/internal/core"
	"github.com/mejova/bloggy/internal/filter"
	"github.com/mejova/bloggy/internal/utils/collectionutils"
	"github.com/mejova/bloggy/internal/utils/databaseutils"
	"github.com/mejova/bloggy/internal/utils/functional"
	"github.com/mejova/bloggy/internal/validator"
	"github.com/mejova/bloggy/models"
)

type postAuthorBody struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type postResponse struct {
	ID        int64          `json:"id"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Tags      []string       `json:"tags"`
	Author    postAuthorBody `json:"author"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	type createPostRequest struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}

	var request createPostRequest

	if err := app.readJSON(w, r, &request); err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: err.Error(),
			ErrorStack:   err,
		})
		return
	}

	v := validator.New()
	v.CheckNotBlank(request.Title, "title", "must be provided")
	v.CheckNotBlank(request.Content, "content", "must be provided")

	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	user, _ := app.auth.GetAuthenticatedUser(r)

	newPost, err := databaseutils.DoTransactionally(r.Context(), app.session, func(txCtx context.Context) (*models.Post, error) {
		return app.core.CreatePost(txCtx, &models.Post{
			Title:    request.Title,
			Content:  request.Content,
			Tags:     request.Tags,
			AuthorID: user.ID,
		})
	})
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	// The post is durable at this point; follower notification is
	// best-effort and never blocks or fails the creating request.
	app.doInBackground(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		app.notifier.FanOut(ctx, newPost, user)
	})

	response := singlePostResponse(newPost, user)
	if err := app.writeJSON(w, http.StatusCreated, response, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) getPostsHandler(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	query := r.URL.Query()
	search := app.readString(query, "search", "")
	authorID := app.readInt(query, "author", 0, v)

	limit := app.readInt(query, "limit", 20, v)
	offset := app.readInt(query, "offset", 0, v)

	filters := filter.NewFilter(limit, offset)
	filter.ValidateFilters(filters, v)
	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	posts, err := app.core.GetPosts(r.Context(), filters, search, authorID)
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

func (app *application) getPostHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestResponse(w, r, &AppError{ErrorMessage: err.Error()})
		return
	}

	post, err := app.core.GetPostByID(r.Context(), postID)
	if err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			app.notFoundResponse(w, r)
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	author, err := app.core.GetUserByID(r.Context(), post.AuthorID)
	if err != nil && !errors.Is(err, core.NoRecordFound) {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, singlePostResponse(post, author), nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	type updatePostRequest struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}

	postID, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestResponse(w, r, &AppError{ErrorMessage: err.Error()})
		return
	}

	var request updatePostRequest
	if err := app.readJSON(w, r, &request); err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: err.Error(),
			ErrorStack:   err,
		})
		return
	}

	v := validator.New()
	v.CheckNotBlank(request.Title, "title", "must be provided")
	v.CheckNotBlank(request.Content, "content", "must be provided")

	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	post, err := app.core.GetPostByID(r.Context(), postID)
	if err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			app.notFoundResponse(w, r)
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	user, _ := app.auth.GetAuthenticatedUser(r)
	if !post.EditableBy(user) {
		app.forbiddenResponse(w, r)
		return
	}

	post.Title = request.Title
	post.Content = request.Content
	post.Tags = request.Tags

	updatedPost, err := app.core.UpdatePost(r.Context(), post)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, singlePostResponse(updatedPost, user), nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestResponse(w, r, &AppError{ErrorMessage: err.Error()})
		return
	}

	post, err := app.core.GetPostByID(r.Context(), postID)
	if err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			app.notFoundResponse(w, r)
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	user, _ := app.auth.GetAuthenticatedUser(r)
	if !post.DeletableBy(user) {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.core.DeletePost(r.Context(), post.ID); err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, envelope{"message": "Post deleted"}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

// userPostsHandler lists the principal's own posts; requesting another
// user's id is rejected.
func (app *application) userPostsHandler(w http.ResponseWriter, r *http.Request) {
	requestedID, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestResponse(w, r, &AppError{ErrorMessage: err.Error()})
		return
	}

	user, _ := app.auth.GetAuthenticatedUser(r)
	if requestedID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	posts, err := app.core.GetPosts(r.Context(), filter.NewFilter(100, 0), "", user.ID)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	response := functional.Map(posts, func(post *models.Post) postResponse {
		return buildPostResponse(post, user.ID, user.Username)
	})

	if err := app.writeJSON(w, http.StatusOK, response, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) preparePostListResponse(ctx context.Context, posts []*models.Post) ([]postResponse, error) {
	authorIdList := functional.Map(posts, func(post *models.Post) int64 {
		return post.AuthorID
	})

	authorList, err := app.core.GetUsersByIdList(ctx, authorIdList)
	if err != nil {
		return nil, err
	}

	authorByUserId := collectionutils.Associate(authorList, func(user *auth.User) (int64, *auth.User) {
		return user.ID, user
	})

	response := make([]postResponse, 0, len(posts))
	for _, post := range posts {
		username := ""
		if author, ok := authorByUserId[post.AuthorID]; ok {
			username = author.Username
		}
		response = append(response, buildPostResponse(post, post.AuthorID, username))
	}

	return response, nil
}

func singlePostResponse(post *models.Post, author *auth.User) postResponse {
	username := ""
	authorID := post.AuthorID
	if author != nil {
		username = author.Username
		authorID = author.ID
	}
	return buildPostResponse(post, authorID, username)
}

func buildPostResponse(post *models.Post, authorID int64, username string) postResponse {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}

	return postResponse{
		ID:      post.ID,
		Title:   post.Title,
		Content: post.Content,
		Tags:    tags,
		Author: postAuthorBody{
			ID:       authorID,
			Username: username,
		},
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}
