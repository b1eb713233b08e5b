package interfaces

import "context"

// Credentials authenticate a feed request. Token wins over Username/Password.
type Credentials struct {
	Username string
	Password string
	Token    string
}

// CredentialProvider supplies credentials per feed URL.
// Returning nil credentials sends the request anonymously.
type CredentialProvider interface {
	Credentials(ctx context.Context, url string) (*Credentials, error)
}
