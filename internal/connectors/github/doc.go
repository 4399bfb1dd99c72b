// Package github implements a DocumentSource over files in GitHub repositories.
//
// The source reads one branch of each configured repository with a single
// recursive Git tree request, keeps the supported document files below an
// optional path prefix, and fetches content as raw blobs.
//
// # Identity
//
// Document ids have the form "github:owner/repo/path". The change marker is
// the blob SHA, so an unchanged file is never re-fetched during refresh.
//
// # Authentication
//
// A Personal Access Token (classic or fine-grained) is read from GITHUB_TOKEN
// and sent through an oauth2 static token source. Private repositories need
// the 'repo' scope; public repositories work with any token.
//
// # Rate Limiting
//
// Authenticated requests are limited to 5,000 per hour. The client throttles
// proactively with a token bucket and reactively from the X-RateLimit-*
// response headers, pausing until reset when the remaining quota runs low.
package github
