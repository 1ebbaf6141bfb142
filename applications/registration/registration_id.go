package registration

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateRegistrationID returns "C3-" followed by a number in [100000, 999999].
func GenerateRegistrationID() (string, error) {
	const min int64 = 100000
	const span int64 = 900000

	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return "", fmt.Errorf("crypto rand failed: %w", err)
	}
	return fmt.Sprintf("C3-%d", n.Int64()+min), nil
}
