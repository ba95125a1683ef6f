package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateReferenceNumber returns a human-facing quotation reference of the
// form QR-<year>-<6 random digits>. Not checked for prior existence;
// collisions are practically impossible at expected submission volume.
func GenerateReferenceNumber() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand only fails if the OS entropy source is broken
		n = big.NewInt(time.Now().UnixNano() % 1000000)
	}
	return fmt.Sprintf("QR-%d-%06d", time.Now().Year(), n.Int64())
}
