// Package jwt provides compact JSON Web Token (JWT) signing and verification
// with HMAC secrets.
//
// The package supports:
//   - signing arbitrary JSON payloads with HS256, HS384 and HS512
//   - parsing tokens without verification
//   - verifying signatures in constant time with the algorithm named in the token header
//   - an explicit accept-any mode where signatures are not checked
//
// Payloads are decoded as ordered records, see package record.
package jwt
