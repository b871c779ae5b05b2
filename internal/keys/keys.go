// Package keys derives voting credentials.
//
// Two modes exist. The random mode draws the public identifier and the
// private key from a cryptographically secure source and is used for
// interactive issuance. The deterministic mode derives both from a keyed
// hash of the voter's normalized email plus an election salt, so the bulk
// pre-generation tool and the mailer can be run independently and still
// agree on every credential.
package keys

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/dmitrijs2005/votekeeper/internal/common"
	"github.com/dmitrijs2005/votekeeper/internal/models"
)

const (
	// Public identifiers are 6-digit decimals in [100000, 999999].
	idMin  = 100000
	idSpan = 900000

	// Private keys are exactly 12 uppercase letters.
	privateKeyLen = 12
)

// Deriver mints credentials from the election's master key and salt.
type Deriver struct {
	masterKey []byte
	salt      []byte
}

// NewDeriver validates the secrets and returns a Deriver. The master key is
// required in both modes; the salt only matters for Deterministic and is
// checked there.
func NewDeriver(masterKey, electionSalt string) (*Deriver, error) {
	if masterKey == "" {
		return nil, common.ErrMissingMasterKey
	}
	return &Deriver{
		masterKey: []byte(masterKey),
		salt:      []byte(electionSalt),
	}, nil
}

// Wipe zeroes the secrets held by the Deriver. The Deriver must not be used
// afterwards.
func (d *Deriver) Wipe() {
	common.WipeByteArray(d.masterKey)
	common.WipeByteArray(d.salt)
}

// Random mints a fresh credential from a cryptographically secure source.
func (d *Deriver) Random() (models.Credential, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(idSpan))
	if err != nil {
		return models.Credential{}, fmt.Errorf("random public id: %w", err)
	}
	publicID := fmt.Sprintf("%06d", n.Int64()+idMin)

	letters := make([]byte, privateKeyLen)
	for i := range letters {
		c, err := rand.Int(rand.Reader, big.NewInt(26))
		if err != nil {
			return models.Credential{}, fmt.Errorf("random private key: %w", err)
		}
		letters[i] = byte('A' + c.Int64())
	}
	privateKey := string(letters)

	return models.Credential{
		PublicID:   publicID,
		PrivateKey: privateKey,
		PublicKey:  d.PublicKey(privateKey),
	}, nil
}

// Deterministic derives the credential for email. Same email, master key and
// salt always yield the same credential.
func (d *Deriver) Deterministic(email string) (models.Credential, error) {
	if len(d.salt) == 0 {
		return models.Credential{}, common.ErrMissingSalt
	}
	normalized := models.NormalizeEmail(email)

	mac := hmac.New(sha256.New, d.masterKey)
	mac.Write(d.salt)
	mac.Write([]byte(":"))
	mac.Write([]byte(normalized))
	digest := mac.Sum(nil)

	n := binary.BigEndian.Uint64(digest[:8])
	publicID := fmt.Sprintf("%06d", n%idSpan+idMin)

	privateKey := d.deriveLetters(digest, normalized)

	return models.Credential{
		PublicID:   publicID,
		PrivateKey: privateKey,
		PublicKey:  d.PublicKey(privateKey),
	}, nil
}

// deriveLetters turns digest into privateKeyLen uppercase letters: base32 the
// digest, keep only A–Z, and extend with counter-keyed digests if the first
// pass comes up short.
func (d *Deriver) deriveLetters(digest []byte, email string) string {
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)

	out := make([]byte, 0, privateKeyLen)
	keep := func(b []byte) {
		for _, c := range []byte(enc.EncodeToString(b)) {
			if len(out) == privateKeyLen {
				return
			}
			if c >= 'A' && c <= 'Z' {
				out = append(out, c)
			}
		}
	}

	keep(digest)
	for counter := 0; len(out) < privateKeyLen; counter++ {
		mac := hmac.New(sha256.New, d.masterKey)
		fmt.Fprintf(mac, "%s|%s|%d", email, d.salt, counter)
		keep(mac.Sum(nil))
	}
	return string(out)
}

// PublicKey computes the registry value for a private key: the lowercase hex
// HMAC-SHA256 of the private key under the master key. The same derivation
// is applied in both modes, by issuance, keygen and audit alike.
func (d *Deriver) PublicKey(privateKey string) string {
	mac := hmac.New(sha256.New, d.masterKey)
	mac.Write([]byte(privateKey))
	return hex.EncodeToString(mac.Sum(nil))
}

// HashPrivateKey is the only form a private key may appear in on local
// output: its uppercase hex SHA-256.
func HashPrivateKey(privateKey string) string {
	sum := sha256.Sum256([]byte(privateKey))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
