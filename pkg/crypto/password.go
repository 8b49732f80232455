package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrCredential marks password hashes that are malformed or do not match.
var ErrCredential = errors.New("crypto: invalid credential")

// Argon2Params controls the cost factors for Argon2id key derivation.
type Argon2Params struct {
	Memory     uint32 // KiB
	Time       uint32
	Threads    uint8
	SaltLength uint32
	KeyLength  uint32
}

// DefaultArgon2Params mirrors the argon2id defaults used at registration.
var DefaultArgon2Params = Argon2Params{
	Memory:     19 * 1024,
	Time:       2,
	Threads:    1,
	SaltLength: 16,
	KeyLength:  32,
}

// HashPassword derives an Argon2id digest with a fresh random salt and
// returns it as a self-describing PHC string. Two calls with the same
// password produce different strings; both verify against that password.
func HashPassword(password string) (string, error) {
	return hashPassword(password, DefaultArgon2Params)
}

func hashPassword(password string, params Argon2Params) (string, error) {
	salt := make([]byte, params.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("crypto: generate salt: %w", err)
	}

	digest := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		params.Memory,
		params.Time,
		params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// VerifyPassword recomputes the digest using the parameters embedded in the
// PHC string and compares in constant time. A malformed hash and a mismatch
// both report ErrCredential.
func VerifyPassword(password, encoded string) error {
	salt, digest, params, err := parsePHC(encoded)
	if err != nil {
		return err
	}

	computed := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, uint32(len(digest)))
	if subtle.ConstantTimeCompare(computed, digest) != 1 {
		return fmt.Errorf("%w: password mismatch", ErrCredential)
	}
	return nil
}

func parsePHC(encoded string) (salt, digest []byte, params Argon2Params, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, nil, params, fmt.Errorf("%w: malformed hash", ErrCredential)
	}
	if parts[1] != "argon2id" {
		return nil, nil, params, fmt.Errorf("%w: unsupported algorithm %q", ErrCredential, parts[1])
	}

	version, convErr := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if !strings.HasPrefix(parts[2], "v=") || convErr != nil {
		return nil, nil, params, fmt.Errorf("%w: malformed version", ErrCredential)
	}
	if version != argon2.Version {
		return nil, nil, params, fmt.Errorf("%w: unsupported argon2 version %d", ErrCredential, version)
	}

	if params, err = parseCostParams(parts[3]); err != nil {
		return nil, nil, params, err
	}

	if salt, convErr = base64.RawStdEncoding.DecodeString(parts[4]); convErr != nil || len(salt) == 0 {
		return nil, nil, params, fmt.Errorf("%w: malformed salt", ErrCredential)
	}
	if digest, convErr = base64.RawStdEncoding.DecodeString(parts[5]); convErr != nil || len(digest) == 0 {
		return nil, nil, params, fmt.Errorf("%w: malformed digest", ErrCredential)
	}

	return salt, digest, params, nil
}

func parseCostParams(section string) (Argon2Params, error) {
	var params Argon2Params

	pairs := strings.Split(section, ",")
	if len(pairs) != 3 {
		return params, fmt.Errorf("%w: malformed cost parameters", ErrCredential)
	}

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return params, fmt.Errorf("%w: malformed cost parameters", ErrCredential)
		}

		switch key {
		case "m":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || v == 0 {
				return params, fmt.Errorf("%w: malformed memory parameter", ErrCredential)
			}
			params.Memory = uint32(v)
		case "t":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || v == 0 {
				return params, fmt.Errorf("%w: malformed time parameter", ErrCredential)
			}
			params.Time = uint32(v)
		case "p":
			v, err := strconv.ParseUint(value, 10, 8)
			if err != nil || v == 0 {
				return params, fmt.Errorf("%w: malformed parallelism parameter", ErrCredential)
			}
			params.Threads = uint8(v)
		default:
			return params, fmt.Errorf("%w: unknown cost parameter %q", ErrCredential, key)
		}
	}

	return params, nil
}
