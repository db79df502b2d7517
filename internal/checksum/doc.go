// Package checksum provides schema source hashing with normalization support.
//
//   - Raw checksum: hash of the exact source (detects all changes)
//   - Normalized checksum: hash after removing XML comments and normalizing
//     whitespace (formatting-independent content identity)
//
// The schema store records both so that re-publishing a reformatted schema
// under the same identifier can be told apart from a real change.
//
// # Example Usage
//
//	calculator := checksum.New()
//	raw := calculator.CalculateRaw(source)
//	normalized := calculator.CalculateNormalized(source)
//
// SHA256 is safe for concurrent use by multiple goroutines.
package checksum
