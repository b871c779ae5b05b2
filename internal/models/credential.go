package models

// Credential is one issued key set.
//
// PublicID is the 6-digit voter-facing identifier, PrivateKey the 12-letter
// secret delivered to the voter, PublicKey the disclosure-safe value written
// to the remote registry. PrivateKey is never persisted; at most its hashed
// form may appear in local output.
type Credential struct {
	PublicID   string
	PrivateKey string
	PublicKey  string
}
