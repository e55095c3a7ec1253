package librelinkup

import (
	"fmt"
	"net/http"
	"sort"
)

// Profile describes how the client identifies itself to LibreLinkUp.
// The service gates features on the product/version pair, so every request
// made by a client carries the headers of exactly one profile.
type Profile struct {
	Name      string
	Product   string
	Version   string
	UserAgent string
	// SendAccountID adds the hashed account-id header to data requests.
	SendAccountID bool
}

const (
	iosUserAgent     = "Mozilla/5.0 (iPhone; CPU OS 17_4.1 like Mac OS X) AppleWebKit/536.26 (KHTML, like Gecko) Version/17.4.1 Mobile/10A5355d Safari/8536.25"
	androidUserAgent = "Apidog/1.0.0 (https://apidog.com)"
)

// Known profiles
var (
	ProfileIOS = Profile{
		Name:          "ios",
		Product:       "llu.ios",
		Version:       "4.12.0",
		UserAgent:     iosUserAgent,
		SendAccountID: true,
	}
	ProfileAndroid = Profile{
		Name:      "android",
		Product:   "llu.android",
		Version:   "4.7.1",
		UserAgent: androidUserAgent,
	}
	ProfileAndroidLegacy = Profile{
		Name:      "android-legacy",
		Product:   "llu.android",
		Version:   "4.2.1",
		UserAgent: androidUserAgent,
	}
)

// DefaultProfile is used when no profile option is given
var DefaultProfile = ProfileIOS

var profiles = map[string]Profile{
	ProfileIOS.Name:           ProfileIOS,
	ProfileAndroid.Name:       ProfileAndroid,
	ProfileAndroidLegacy.Name: ProfileAndroidLegacy,
}

// ProfileByName looks up a registered profile
func ProfileByName(name string) (Profile, error) {
	if name == "" {
		return DefaultProfile, nil
	}
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrUnknownProfile, name)
	}
	return p, nil
}

// ProfileNames returns the registered profile names in sorted order
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// apply sets the identification headers on a request
func (p Profile) apply(h http.Header) {
	h.Set("User-Agent", p.UserAgent)
	h.Set("version", p.Version)
	h.Set("product", p.Product)
	h.Set("Content-Type", "application/json;charset=UTF-8")
	h.Set("Accept", "application/json")
}
