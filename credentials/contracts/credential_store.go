package contracts

// ICredentialStore is a small secure key-value store for API credentials.
// Implementations must never expose stored values in logs.
type ICredentialStore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key string, value string) error
	Delete(key string) error
}
