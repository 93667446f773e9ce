package token

import (
    "crypto/hmac"
    "crypto/sha256"
    "encoding/base64"
    "encoding/hex"
    "fmt"
    "strconv"
    "strings"
    "time"
)

// Password-reset tokens are not stored anywhere.  A token is a coarse
// timestamp plus an HMAC over the user's id and current password hash:
//
//	<unix seconds, base36>-<hex HMAC-SHA256(secret, uid|passwordHash|ts)>
//
// Changing the password changes the hash and with it the MAC, so one
// successful reset invalidates every outstanding token for that user.
// The timestamp bounds the validity window without server-side state.

const (
    resetWindow   = 24 * time.Hour
    resetMACBytes = 20          // truncated MAC, 40 hex chars
    resetMaxSkew  = time.Minute // tolerated clock drift into the future
)

// ResetGenerator makes and checks password-reset tokens.
type ResetGenerator struct {
    secret []byte
    now    func() time.Time // injectable for tests
}

func NewResetGenerator(secret string) *ResetGenerator {
    return &ResetGenerator{secret: []byte(secret), now: time.Now}
}

// Make builds a reset token for the user's current state.
func (g *ResetGenerator) Make(userID uint64, passwordHash string) string {
    ts := g.now().UTC().Unix()
    return strconv.FormatInt(ts, 36) + "-" + g.mac(userID, passwordHash, ts)
}

// Check reports whether the token matches the user's current state and its
// validity window has not elapsed.  It covers expiry and prior use alike:
// a used token fails because the password hash it was bound to is gone.
func (g *ResetGenerator) Check(userID uint64, passwordHash, tok string) bool {
    tsPart, macPart, found := strings.Cut(tok, "-")
    if !found {
        return false
    }
    ts, err := strconv.ParseInt(tsPart, 36, 64)
    if err != nil {
        return false
    }
    if !hmac.Equal([]byte(macPart), []byte(g.mac(userID, passwordHash, ts))) {
        return false
    }
    age := g.now().UTC().Sub(time.Unix(ts, 0))
    return age >= -resetMaxSkew && age <= resetWindow
}

func (g *ResetGenerator) mac(userID uint64, passwordHash string, ts int64) string {
    h := hmac.New(sha256.New, g.secret)
    fmt.Fprintf(h, "%d|%s|%d", userID, passwordHash, ts)
    return hex.EncodeToString(h.Sum(nil)[:resetMACBytes])
}

// EncodeUID renders a user id in the url-safe opaque form reset links carry.
func EncodeUID(id uint64) string {
    return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(id, 10)))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(s string) (uint64, error) {
    b, err := base64.RawURLEncoding.DecodeString(s)
    if err != nil {
        return 0, err
    }
    return strconv.ParseUint(string(b), 10, 64)
}
