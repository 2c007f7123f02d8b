// Package stubapi emulates the remote registration service so the workflow
// can be exercised locally and in tests. It issues a random access token on
// registration, checks that token on the webhook, and can be told to reject
// the first N deliveries.
package stubapi
