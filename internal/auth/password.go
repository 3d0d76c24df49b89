package auth

import "golang.org/x/crypto/bcrypt"

// bcrypt embeds salt and cost in the digest, so verification needs no side
// channel. Cost 14 keeps brute-force expensive on current hardware.
const bcryptCost = 14

// maxPasswordBytes is bcrypt's input limit. Longer passwords are rejected up
// front rather than silently truncated.
const maxPasswordBytes = 72

// HashPassword derives a salted digest from the plaintext. The plaintext is
// never stored or logged.
func HashPassword(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword verifies a plaintext against a stored digest.
func CheckPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// dummyDigest is compared against when a login names an unknown account, so
// the unknown-user path costs the same as a wrong-password path.
var dummyDigest, _ = bcrypt.GenerateFromPassword([]byte("timing-equalizer"), bcryptCost)

// BurnPasswordCheck performs a bcrypt comparison that always fails, taking
// the same time as a real verification.
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyDigest, []byte(password))
}
