// Package jwe provides JSON Web Encryption (JWE) of JSON payloads
// for a single recipient, in compact or JSON serialization.
//
// Key management: RSA1_5, RSA-OAEP, RSA-OAEP-256, ECDH-ES, ECDH-ES+A128KW, ECDH-ES+A256KW.
// Content encryption: A128GCM, A192GCM, A256GCM, A128CBC-HS256, A256CBC-HS512.
//
// A token that cannot be decrypted never yields a payload.
package jwe
