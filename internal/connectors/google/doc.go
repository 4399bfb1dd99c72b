// Package google provides shared infrastructure for the Google Drive source.
//
// It contains:
//   - Service factory for an authenticated Drive v3 client
//   - Error handling for common Google API errors (401, 403, 404, 429)
//   - Rate limiting to respect Google API quotas
//
// # Authentication
//
// The access token is read from GOOGLE_ACCESS_TOKEN and wrapped in an oauth2
// static token source. The token needs the drive.readonly scope:
//
//	https://www.googleapis.com/auth/drive.readonly
//
// Token refresh is left to whatever issued the token.
package google
