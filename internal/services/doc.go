// Package services holds the collaborators the wizard and migration engine call out to.
//
// # Profile
//
// [ProfileClient] reads the account profile from the new service over HTTP. Requests carry the legacy
// account's access token through an [oauth2.StaticTokenSource]. Failures map to shared errors:
//   - [shared.ErrNetwork] : the request never got a response
//   - [shared.ErrNotAuthenticated] : 401 or 403
//   - [shared.ErrServiceUnavailable] : any other non-2xx status
//
// # Display
//
// [SiteResolver] turns wizard site references into display summaries, and [ResizeAvatar] / [ResizeIcon]
// rewrite image URLs for the size the screen draws them at.
package services
