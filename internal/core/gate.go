package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (OWASP recommended)
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16

	argon2Prefix = "$argon2id$"
)

// Unlocked reports whether pin equals secret. The comparison is constant-time.
func Unlocked(pin, secret string) bool {
	return subtle.ConstantTimeCompare([]byte(pin), []byte(secret)) == 1
}

// AdminGate guards the admin forms with a single shared PIN.
// The secret is either the PIN itself or an Argon2id hash produced by HashPin.
type AdminGate struct {
	secret string
}

func NewAdminGate(secret string) AdminGate {
	return AdminGate{secret: secret}
}

// Configured reports whether a secret is set; without one nothing unlocks.
func (g AdminGate) Configured() bool {
	return g.secret != ""
}

// Check evaluates pin against the secret. It is called on every request.
func (g AdminGate) Check(pin string) bool {
	if !g.Configured() {
		return false
	}
	if strings.HasPrefix(g.secret, argon2Prefix) {
		ok, err := VerifyPin(pin, g.secret)
		if err != nil {
			slog.Error("failed to verify admin pin", "error", err)
			return false
		}
		return ok
	}
	return Unlocked(pin, g.secret)
}

// HashPin creates an Argon2id hash of the pin
func HashPin(pin string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(pin), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// Encode as: $argon2id$v=19$m=65536,t=1,p=4$salt$hash
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads, b64Salt, b64Hash), nil
}

// VerifyPin verifies a pin against an Argon2id hash
func VerifyPin(pin, hash string) (bool, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		return false, fmt.Errorf("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return false, fmt.Errorf("not an argon2id hash")
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, fmt.Errorf("failed to parse hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("failed to decode salt: %w", err)
	}
	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("failed to decode hash: %w", err)
	}

	computedHash := argon2.IDKey([]byte(pin), salt, time, memory, uint8(threads), uint32(len(decodedHash)))
	return subtle.ConstantTimeCompare(decodedHash, computedHash) == 1, nil
}
