// Package librelinkup provides a client for the LibreLinkUp glucose sharing API.
//
// LibreLinkUp is the follower service of the FreeStyle Libre sensors. This
// package logs in with an account's credentials and reads the data shared
// with that account.
//
// # Usage
//
// Log in and list connections:
//
//	logger := zerolog.New(os.Stderr)
//	client, err := librelinkup.NewClient(ctx,
//		librelinkup.Credentials{Username: "me@example.com", Password: "secret"},
//		"eu",
//		logger,
//		librelinkup.WithTimeout(10*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	conns, err := client.GetConnections(ctx)
//
// A token from an earlier login can be reused without logging in again:
//
//	client, err := librelinkup.NewClientFromToken(token, userID, "eu", logger)
//
// # Regions
//
// Data requests go to https://api-{region}.libreview.io, or to
// https://api.libreview.io when the region is empty. Login always uses the
// global host; if the account lives elsewhere the login fails with a
// *RedirectError naming the region to use. Retry with
// NewRegionalAuthenticator for that region.
//
// # Profiles
//
// The service checks the product and version headers of every request. A
// Profile bundles those headers; select one with WithProfile. The default
// profile also sends the account-id header, the hex SHA-256 of the user id.
//
// # Error Handling
//
// Login failures map to:
//
//   - ErrEmptyResponse: the server sent nothing or "{}"
//   - ErrPrivacyPolicyAcceptanceRequired: status 4
//   - *RejectedError (wraps ErrAuthenticationRejected): status 2
//   - *StatusError (wraps ErrUnknown): any other status
//   - *RedirectError: the account belongs to another region
//
// Every call may also fail with *TransportError, *DecodeError or, for data
// endpoints, *APIError:
//
//	var apiErr *librelinkup.APIError
//	if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
//		// token expired, log in again
//	}
package librelinkup
