package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"golang.org/x/oauth2"

	"brawlpit/database"
)

// Races a fresh account can roll into. Deliberately small; race is
// cosmetic except for the HP modifier.
var starterRaces = []string{"Human", "Orc", "Pixie", "Golem"}

type AuthHandler struct {
	repo        *database.Repository
	authMW      *AuthMiddleware
	oauthConfig *oauth2.Config
}

type DiscordUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func NewAuthHandler(repo *database.Repository, authMW *AuthMiddleware) *AuthHandler {
	config := &oauth2.Config{
		ClientID:     os.Getenv("DISCORD_CLIENT_ID"),
		ClientSecret: os.Getenv("DISCORD_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("DISCORD_REDIRECT_URL"),
		Scopes:       []string{"identify"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://discord.com/api/oauth2/authorize",
			TokenURL: "https://discord.com/api/oauth2/token",
		},
	}

	return &AuthHandler{
		repo:        repo,
		authMW:      authMW,
		oauthConfig: config,
	}
}

// HandleLogin redirects to Discord OAuth.
func (ah *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := generateRandomState()

	session, _ := ah.authMW.store.Get(r, sessionName)
	session.Values["oauth_state"] = state
	session.Save(r, w)

	url := ah.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// HandleCallback processes the Discord OAuth callback, creating the
// account on first login.
func (ah *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	session, err := ah.authMW.store.Get(r, sessionName)
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}

	storedState, ok := session.Values["oauth_state"].(string)
	if !ok || storedState != r.URL.Query().Get("state") {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	delete(session.Values, "oauth_state")
	session.Save(r, w)

	code := r.URL.Query().Get("code")
	token, err := ah.oauthConfig.Exchange(context.Background(), code)
	if err != nil {
		log.Printf("OAuth token exchange failed: %v", err)
		http.Error(w, "Failed to exchange token", http.StatusInternalServerError)
		return
	}

	discordUser, err := ah.getDiscordUser(token.AccessToken)
	if err != nil {
		log.Printf("Failed to get Discord user: %v", err)
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}

	account, err := ah.repo.GetAccountByDiscordID(discordUser.ID)
	if err != nil {
		// First login: roll a race off the Discord snowflake so it's
		// stable if account creation ever retries.
		race := starterRaces[raceRoll(discordUser.ID)%len(starterRaces)]
		account, err = ah.repo.CreateAccount(discordUser.ID, discordUser.Username, race)
		if err != nil {
			log.Printf("Failed to create account: %v", err)
			http.Error(w, "Failed to create account", http.StatusInternalServerError)
			return
		}
		log.Printf("Created new account: %s the %s (ID: %d)", account.Username, account.Race, account.ID)
	}

	if err := ah.authMW.CreateSession(w, r, account.ID); err != nil {
		log.Printf("Failed to create session: %v", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	log.Printf("Account %s logged in", account.Username)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout destroys the session.
func (ah *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := ah.authMW.DestroySession(w, r); err != nil {
		log.Printf("Error destroying session: %v", err)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// getDiscordUser fetches user info from the Discord API.
func (ah *AuthHandler) getDiscordUser(accessToken string) (*DiscordUser, error) {
	req, err := http.NewRequest("GET", "https://discord.com/api/users/@me", nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Discord API returned status %d", resp.StatusCode)
	}

	var user DiscordUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func generateRandomState() string {
	token, _ := generateSessionToken()
	return token
}

func raceRoll(discordID string) int {
	sum := 0
	for _, c := range discordID {
		sum += int(c)
	}
	return sum
}
