// Package uniuri generates random strings good for use in URIs to identify
// unique objects. It is used for token identifiers and generated credentials.
//
// It uses crypto/rand to generate randomness and avoids modulo bias when
// mapping random bytes onto the allowed character set.
package uniuri
