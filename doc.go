// Package connections manages the OAuth credential lifecycle for team-owned
// social platform connections: encrypted token storage, scheduled refresh,
// provider-initiated revocation webhooks, and user-initiated disconnects.
//
// Provider protocol details live in the adapters subpackages; persistence
// lives in repository. Components take their collaborators as explicit
// dependencies so callers can substitute fakes.
package connections
