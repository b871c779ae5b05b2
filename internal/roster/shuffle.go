package roster

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/dmitrijs2005/votekeeper/internal/models"
)

// Shuffle reorders voters in place with a Fisher–Yates shuffle driven by a
// cryptographically secure source, so processing order cannot be correlated
// with roster order by an observer.
func Shuffle(voters []models.Voter) error {
	for i := len(voters) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("shuffle: %w", err)
		}
		j := n.Int64()
		voters[i], voters[j] = voters[j], voters[i]
	}
	return nil
}
