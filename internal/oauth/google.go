// Package oauth talks to the Google OAuth2 endpoints: exchanging an
// authorization code for a provider access token and fetching the user's
// profile with it.  Both calls share one client with a hard 10s timeout;
// a timeout fails the whole login, never retried, because authorization
// codes are single-use and a blind retry would burn a code that may
// already have been redeemed.
package oauth

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "net/url"
    "strings"
    "time"

    "github.com/gnm-events/backend/internal/config"
)

const exchangeTimeout = 10 * time.Second

// ErrProvider wraps any provider-side failure (bad code, non-200 userinfo,
// malformed body).  Handlers redirect with a generic message; the detail
// stays in server logs.
var ErrProvider = errors.New("oauth provider error")

// UserInfo is the subset of the provider profile the auth layer needs.
type UserInfo struct {
    Email      string `json:"email"`
    GivenName  string `json:"given_name"`
    FamilyName string `json:"family_name"`
}

// Client performs the code exchange against a configured provider.
type Client struct {
    clientID     string
    clientSecret string
    redirectURI  string
    tokenURL     string
    userInfoURL  string
    http         *http.Client
}

func NewClient(cfg config.Config) *Client {
    return &Client{
        clientID:     cfg.GoogleClientID,
        clientSecret: cfg.GoogleClientSecret,
        redirectURI:  cfg.GoogleRedirectURI,
        tokenURL:     cfg.GoogleTokenURL,
        userInfoURL:  cfg.GoogleUserInfoURL,
        http:         &http.Client{Timeout: exchangeTimeout},
    }
}

// Exchange swaps an authorization code for a provider access token.
func (c *Client) Exchange(ctx context.Context, code string) (string, error) {
    form := url.Values{
        "code":          {code},
        "client_id":     {c.clientID},
        "client_secret": {c.clientSecret},
        "redirect_uri":  {c.redirectURI},
        "grant_type":    {"authorization_code"},
    }
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL,
        strings.NewReader(form.Encode()))
    if err != nil {
        return "", err
    }
    req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

    resp, err := c.http.Do(req)
    if err != nil {
        return "", err
    }
    defer resp.Body.Close()

    var body struct {
        AccessToken      string `json:"access_token"`
        Error            string `json:"error"`
        ErrorDescription string `json:"error_description"`
    }
    if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
        return "", fmt.Errorf("%w: decoding token response: %v", ErrProvider, err)
    }
    if body.AccessToken == "" {
        if body.ErrorDescription != "" {
            return "", fmt.Errorf("%w: %s", ErrProvider, body.ErrorDescription)
        }
        return "", fmt.Errorf("%w: no access token in response", ErrProvider)
    }
    return body.AccessToken, nil
}

// FetchUserInfo retrieves the profile for a provider access token.
func (c *Client) FetchUserInfo(ctx context.Context, accessToken string) (UserInfo, error) {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
    if err != nil {
        return UserInfo{}, err
    }
    req.Header.Set("Authorization", "Bearer "+accessToken)

    resp, err := c.http.Do(req)
    if err != nil {
        return UserInfo{}, err
    }
    defer resp.Body.Close()

    if resp.StatusCode != http.StatusOK {
        return UserInfo{}, fmt.Errorf("%w: userinfo status %d", ErrProvider, resp.StatusCode)
    }
    var info UserInfo
    if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
        return UserInfo{}, fmt.Errorf("%w: decoding userinfo: %v", ErrProvider, err)
    }
    if info.Email == "" {
        return UserInfo{}, fmt.Errorf("%w: userinfo missing email", ErrProvider)
    }
    return info, nil
}
