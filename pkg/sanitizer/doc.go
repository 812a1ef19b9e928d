// Package sanitizer provides input normalization for marketplace data.
//
// All functions are idempotent - applying them twice produces the same
// result. Invalid input degrades to an empty string rather than an error.
//
// Normalization includes:
//   - Phone numbers: converted to E.164 format (+[country][number])
//   - Names and addresses: whitespace collapsed, trimmed
//   - Cities: lowercase with special characters removed - "Tel Aviv" becomes "telaviv"
//   - Slices: duplicates and empties removed after normalization
//   - Numbers: clamped to valid ranges
package sanitizer
