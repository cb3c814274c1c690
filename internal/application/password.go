package application

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidPasswordHash         = errors.New("invalid password hash format")
	ErrIncompatiblePasswordVersion = errors.New("incompatible password hash version")
)

// PasswordHasher derives argon2id hashes encoded as PHC strings:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>
type PasswordHasher struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	SaltLen int
	KeyLen  uint32
}

// DefaultPasswordHasher is used for organizer accounts.
var DefaultPasswordHasher = PasswordHasher{Time: 3, Memory: 64 * 1024, Threads: 2, SaltLen: 16, KeyLen: 32}

var phcEncoding = base64.RawStdEncoding

// Hash returns the PHC encoding of password under a fresh random salt.
func (h PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, h.Time, h.Memory, h.Threads, h.KeyLen)
	return strings.Join([]string{
		"",
		"argon2id",
		"v=" + strconv.Itoa(argon2.Version),
		"m=" + strconv.FormatUint(uint64(h.Memory), 10) +
			",t=" + strconv.FormatUint(uint64(h.Time), 10) +
			",p=" + strconv.FormatUint(uint64(h.Threads), 10),
		phcEncoding.EncodeToString(salt),
		phcEncoding.EncodeToString(key),
	}, "$"), nil
}

// VerifyPassword checks password against a PHC encoded hash. The cost
// parameters come from the hash, so older hashes keep verifying after
// DefaultPasswordHasher changes.
func VerifyPassword(encoded, password string) error {
	h, salt, key, err := parsePHC(encoded)
	if err != nil {
		return err
	}
	candidate := argon2.IDKey([]byte(password), salt, h.Time, h.Memory, h.Threads, h.KeyLen)
	if subtle.ConstantTimeCompare(key, candidate) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

func parsePHC(encoded string) (PasswordHasher, []byte, []byte, error) {
	var h PasswordHasher
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return h, nil, nil, ErrInvalidPasswordHash
	}

	raw, ok := strings.CutPrefix(fields[2], "v=")
	if !ok {
		return h, nil, nil, ErrInvalidPasswordHash
	}
	version, err := strconv.Atoi(raw)
	if err != nil {
		return h, nil, nil, ErrInvalidPasswordHash
	}
	if version != argon2.Version {
		return h, nil, nil, ErrIncompatiblePasswordVersion
	}

	seen := 0
	for _, pair := range strings.Split(fields[3], ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return h, nil, nil, ErrInvalidPasswordHash
		}
		bits := 32
		if name == "p" {
			bits = 8
		}
		n, err := strconv.ParseUint(value, 10, bits)
		if err != nil {
			return h, nil, nil, ErrInvalidPasswordHash
		}
		switch name {
		case "m":
			h.Memory = uint32(n)
		case "t":
			h.Time = uint32(n)
		case "p":
			h.Threads = uint8(n)
		default:
			return h, nil, nil, ErrInvalidPasswordHash
		}
		seen++
	}
	if seen != 3 {
		return h, nil, nil, ErrInvalidPasswordHash
	}

	salt, err := phcEncoding.DecodeString(fields[4])
	if err != nil {
		return h, nil, nil, ErrInvalidPasswordHash
	}
	key, err := phcEncoding.DecodeString(fields[5])
	if err != nil || len(key) == 0 {
		return h, nil, nil, ErrInvalidPasswordHash
	}
	h.SaltLen = len(salt)
	h.KeyLen = uint32(len(key))
	return h, salt, key, nil
}
