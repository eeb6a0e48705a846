package bookings

import (
	"crypto/rand"
	"math/big"
)

// Reference alphabet excludes ambiguous characters (0/O, 1/I/L).
const referenceAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const (
	referencePrefix = "ST-"
	referenceLength = 6
)

func generateBookingRef() (string, error) {
	buf := make([]byte, referenceLength)
	max := big.NewInt(int64(len(referenceAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = referenceAlphabet[n.Int64()]
	}
	return referencePrefix + string(buf), nil
}
