// Package checksum provides the content-addressed digest types used by snapsum.
//
// This package contains value types only. All other internal packages import
// checksum; checksum imports nothing internal.
//
// Key design constraints:
//   - Every digest is SHA-256 with domain separation: SHA256(domain + 0x00 + data)
//   - Collections are order-sensitive; callers fix the order before building one
//   - Structured inputs are hashed through MarshalCanonical (RFC 8785 canonical JSON)
//   - No floats anywhere in hashed input
package checksum
