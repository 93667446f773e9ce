package handler

import (
    "context"
    "net/http"
    "net/url"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/gnm-events/backend/internal/cache"
    "github.com/gnm-events/backend/internal/config"
    "github.com/gnm-events/backend/internal/session"
    "github.com/gnm-events/backend/internal/token"
)

// codeReplayTTL is how long an authorization code stays marked as used.
// Provider codes expire well within this window, so entries can lapse.
const codeReplayTTL = 5 * time.Minute

// OAuthHandler drives the Google authorization-code callback: replay
// check, code exchange, profile fetch, principal resolution, cookie
// issuance.  This is a browser redirect leg, so every outcome — success or
// failure — is a 302; there is no JSON error path.
type OAuthHandler struct {
    Cfg      config.Config
    Users    UserStore
    Tokens   *token.Service
    Sessions *session.Manager
    Replay   cache.ReplayStore
    Provider Provider
}

func NewOAuthHandler(cfg config.Config, u UserStore, t *token.Service, s *session.Manager,
    replay cache.ReplayStore, p Provider) *OAuthHandler {
    return &OAuthHandler{Cfg: cfg, Users: u, Tokens: t, Sessions: s, Replay: replay, Provider: p}
}

// GoogleCallback handles GET ?code=&state= from the provider.
func (h *OAuthHandler) GoogleCallback(c echo.Context) error {
    code := c.QueryParam("code")
    state := c.QueryParam("state")

    if code == "" {
        c.Logger().Error("no code provided in Google callback")
        return h.errorRedirect(c, "No authorization code provided")
    }

    ctx := c.Request().Context()

    // Mark the code used before the network exchange so a concurrent
    // duplicate arriving mid-exchange is rejected too.  A first attempt
    // that fails downstream burns the code; acceptable, since the
    // provider would reject its reuse anyway.
    replayKey := "oauth_code:" + code + ":" + state
    first, err := h.Replay.MarkUsed(ctx, replayKey, codeReplayTTL)
    if err != nil {
        c.Logger().Errorf("replay cache unavailable: %v", err)
        return h.errorRedirect(c, "Internal server error")
    }
    if !first {
        c.Logger().Warnf("attempted reuse of authorization code: %.10s...", code)
        return h.errorRedirect(c, "Authorization code already used")
    }

    providerToken, err := h.Provider.Exchange(ctx, code)
    if err != nil {
        c.Logger().Errorf("token exchange failed: %v", err)
        return h.errorRedirect(c, "Failed to obtain access token")
    }

    info, err := h.Provider.FetchUserInfo(ctx, providerToken)
    if err != nil {
        c.Logger().Errorf("userinfo fetch failed: %v", err)
        return h.errorRedirect(c, "Failed to retrieve user information")
    }

    dbCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
    defer cancel()
    u, created, err := h.Users.GetOrCreateByEmail(dbCtx, info.Email, info.GivenName, info.FamilyName)
    if err != nil {
        c.Logger().Errorf("principal resolve failed: %v", err)
        return h.errorRedirect(c, "Internal server error")
    }
    c.Logger().Infof("Google OAuth user: %s | created: %v", u.Email, created)

    pair, err := h.Tokens.IssuePair(u.ID)
    if err != nil {
        c.Logger().Errorf("token issue failed: %v", err)
        return h.errorRedirect(c, "Internal server error")
    }
    h.Sessions.SetPair(c.Response(), pair.Access, pair.Refresh)

    return c.Redirect(http.StatusFound, h.Cfg.FrontendURL)
}

// errorRedirect sends the browser to the frontend error page with a
// URL-encoded message.
func (h *OAuthHandler) errorRedirect(c echo.Context, msg string) error {
    return c.Redirect(http.StatusFound,
        h.Cfg.FrontendURL+"/?auth=error&message="+url.QueryEscape(msg))
}
