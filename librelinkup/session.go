package librelinkup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"
)

const (
	defaultHost = "https://api.libreview.io"
	loginPath   = "llu/auth/login"
)

// Session is the result of a successful login
type Session struct {
	Token   string
	UserID  string
	Region  string
	BaseURL string
	Expires time.Time
}

var regionPattern = regexp.MustCompile(`^[a-z0-9]{0,8}$`)

// ValidRegion reports whether region can be used as a host label. The empty
// region selects the global host.
func ValidRegion(region string) bool {
	return regionPattern.MatchString(region)
}

// BaseURL resolves the API host for a region. An empty region selects the
// global host.
func BaseURL(region string) string {
	if region == "" {
		return defaultHost
	}
	return fmt.Sprintf("https://api-%s.libreview.io", region)
}

// AccountID returns the value of the account-id header for a user id
func AccountID(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}
