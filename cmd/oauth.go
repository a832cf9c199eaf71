package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mdobak/go-xerrors"
	"github.com/mejova/bloggy/internal/utils/collectionutils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const oauthStateTTL = 10 * time.Minute

// oauthStates holds the states handed out to in-flight authorization
// redirects, keyed by state value with the issue time for expiry.
var oauthStates = collectionutils.NewSafeMap[string, time.Time]()

// storeOAuthState records a freshly issued state and prunes states whose
// redirect was abandoned, so the map never grows past one TTL window.
func storeOAuthState(state string, now time.Time) {
	oauthStates.DeleteFunc(func(_ string, issuedAt time.Time) bool {
		return now.Sub(issuedAt) > oauthStateTTL
	})
	oauthStates.Store(state, now)
}

func (app *application) googleOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     app.config.GoogleClientID,
		ClientSecret: app.config.GoogleClientSecret,
		RedirectURL:  app.config.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

func (app *application) googleRedirectHandler(w http.ResponseWriter, r *http.Request) {
	if app.config.GoogleClientID == "" {
		app.notFoundResponse(w, r)
		return
	}

	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		app.internalErrorResponse(w, r, xerrors.New(err))
		return
	}
	state := hex.EncodeToString(stateBytes)
	storeOAuthState(state, time.Now())

	url := app.googleOAuthConfig().AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (app *application) googleCallbackHandler(w http.ResponseWriter, r *http.Request) {
	if app.config.GoogleClientID == "" {
		app.notFoundResponse(w, r)
		return
	}

	state := r.URL.Query().Get("state")
	issuedAt, known := oauthStates.Get(state)
	if known {
		oauthStates.Delete(state)
	}
	if !known || time.Since(issuedAt) > oauthStateTTL {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: "Invalid or expired OAuth state.",
		})
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: "Missing authorization code.",
		})
		return
	}

	conf := app.googleOAuthConfig()
	oauthToken, err := conf.Exchange(r.Context(), code)
	if err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: "Authorization code exchange failed.",
			ErrorStack:   xerrors.New(err),
		})
		return
	}

	userInfo, err := fetchGoogleUserInfo(conf, r, oauthToken)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	var image *string
	if userInfo.Picture != "" {
		image = &userInfo.Picture
	}

	user, err := app.core.GetOrCreateGoogleUser(r.Context(), userInfo.ID, userInfo.Email, userInfo.Name, image)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	token, err := app.auth.GenerateToken(user)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, userResponse(user, token), nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func fetchGoogleUserInfo(conf *oauth2.Config, r *http.Request, token *oauth2.Token) (*googleUserInfo, error) {
	client := conf.Client(r.Context(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, xerrors.New(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, xerrors.Newf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	var userInfo googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, xerrors.New(err)
	}

	if userInfo.ID == "" || userInfo.Email == "" {
		return nil, xerrors.New("userinfo response is missing id or email")
	}

	return &userInfo, nil
}
