package auth

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/podelme/podel/internal/models"
)

// Codec errors. The validator maps all of them except ErrTokenExpired to
// ErrSessionMalformed.
var (
	ErrTokenTruncated = errors.New("token: truncated")
	ErrTokenExpired   = errors.New("token: expired")
	ErrTokenCorrupt   = errors.New("token: corrupt")
)

const tokenFormatVersion = 1

// TokenPayload is the decoded client-side view of a session: the session
// record plus a denormalized snapshot of its user. The snapshot is a cache;
// it must be re-validated against the store and never trusted on its own.
type TokenPayload struct {
	Session models.Session
	User    models.User
}

// EncodeToken serializes the session and its user snapshot into the
// transport string handed to clients. Wire layout: an 8-byte big-endian
// expiration (epoch seconds) followed by the payload, the whole sequence
// base64 URL-safe encoded. The password hash is never written.
func EncodeToken(session *models.Session, user *models.User) (string, error) {
	var buf bytes.Buffer

	var prefix [8]byte
	binary.BigEndian.PutUint64(prefix[:], uint64(session.ExpiresAt.Unix()))
	buf.Write(prefix[:])

	buf.WriteByte(tokenFormatVersion)

	if err := writeString(&buf, session.ID); err != nil {
		return "", err
	}
	if err := writeString(&buf, session.UserID); err != nil {
		return "", err
	}
	if err := writeString(&buf, session.IP); err != nil {
		return "", err
	}
	writeBool(&buf, session.EnforceIP)
	writeTime(&buf, session.CreatedAt)

	if err := writeString(&buf, user.Name); err != nil {
		return "", err
	}
	if user.Email != nil {
		writeBool(&buf, true)
		if err := writeString(&buf, *user.Email); err != nil {
			return "", err
		}
	} else {
		writeBool(&buf, false)
	}
	if err := writeString(&buf, user.Language); err != nil {
		return "", err
	}
	writeBool(&buf, user.IsAdmin)
	writeTime(&buf, user.CreatedAt)

	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeToken reverses EncodeToken. The expiration prefix is checked before
// the payload is parsed, so stale or replayed tokens are rejected without
// paying full deserialization cost.
func DecodeToken(text string, now time.Time) (*TokenPayload, error) {
	raw, err := base64.RawURLEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenCorrupt, err)
	}

	if len(raw) < 8 {
		return nil, ErrTokenTruncated
	}

	expiresAt := time.Unix(int64(binary.BigEndian.Uint64(raw[:8])), 0).UTC()
	if !expiresAt.After(now) {
		return nil, ErrTokenExpired
	}

	reader := bytes.NewReader(raw[8:])

	version, err := reader.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: missing version", ErrTokenCorrupt)
	}
	if version != tokenFormatVersion {
		return nil, fmt.Errorf("%w: unknown format version %d", ErrTokenCorrupt, version)
	}

	payload := &TokenPayload{}
	payload.Session.ExpiresAt = expiresAt

	if payload.Session.ID, err = readString(reader); err != nil {
		return nil, err
	}
	if payload.Session.UserID, err = readString(reader); err != nil {
		return nil, err
	}
	if payload.Session.IP, err = readString(reader); err != nil {
		return nil, err
	}
	if payload.Session.EnforceIP, err = readBool(reader); err != nil {
		return nil, err
	}
	if payload.Session.CreatedAt, err = readTime(reader); err != nil {
		return nil, err
	}

	payload.User.ID = payload.Session.UserID
	if payload.User.Name, err = readString(reader); err != nil {
		return nil, err
	}
	hasEmail, err := readBool(reader)
	if err != nil {
		return nil, err
	}
	if hasEmail {
		email, err := readString(reader)
		if err != nil {
			return nil, err
		}
		payload.User.Email = &email
	}
	if payload.User.Language, err = readString(reader); err != nil {
		return nil, err
	}
	if payload.User.IsAdmin, err = readBool(reader); err != nil {
		return nil, err
	}
	if payload.User.CreatedAt, err = readTime(reader); err != nil {
		return nil, err
	}

	if reader.Len() != 0 {
		return nil, fmt.Errorf("%w: trailing bytes", ErrTokenCorrupt)
	}

	return payload, nil
}

func writeString(buf *bytes.Buffer, s string) error {
	if len(s) > 255 {
		return fmt.Errorf("token: field too long (%d bytes)", len(s))
	}
	buf.WriteByte(byte(len(s)))
	buf.WriteString(s)
	return nil
}

func readString(reader *bytes.Reader) (string, error) {
	length, err := reader.ReadByte()
	if err != nil {
		return "", fmt.Errorf("%w: missing field length", ErrTokenCorrupt)
	}
	field := make([]byte, length)
	if _, err := io.ReadFull(reader, field); err != nil {
		return "", fmt.Errorf("%w: short field", ErrTokenCorrupt)
	}
	return string(field), nil
}

func writeBool(buf *bytes.Buffer, v bool) {
	if v {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func readBool(reader *bytes.Reader) (bool, error) {
	b, err := reader.ReadByte()
	if err != nil {
		return false, fmt.Errorf("%w: missing flag", ErrTokenCorrupt)
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: invalid flag byte %d", ErrTokenCorrupt, b)
	}
}

func writeTime(buf *bytes.Buffer, t time.Time) {
	var field [8]byte
	binary.BigEndian.PutUint64(field[:], uint64(t.Unix()))
	buf.Write(field[:])
}

func readTime(reader *bytes.Reader) (time.Time, error) {
	var field [8]byte
	if _, err := io.ReadFull(reader, field[:]); err != nil {
		return time.Time{}, fmt.Errorf("%w: short timestamp", ErrTokenCorrupt)
	}
	return time.Unix(int64(binary.BigEndian.Uint64(field[:])), 0).UTC(), nil
}
