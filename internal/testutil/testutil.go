// Package testutil provides shared test helpers:
//   - an in-memory Redis (miniredis) for cache tests, no Docker needed
//   - movements-dataset and report-definition fixtures
package testutil
