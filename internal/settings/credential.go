package settings

import "strings"

// Storage is implemented by Store and KeyedStore.
type Storage interface {
	Load() (Config, error)
	Save(cfg Config) error
}

// KeyedStore supplies an api key loaded outside the settings file to configs
// that carry none. The fallback key is never written back.
type KeyedStore struct {
	Storage
	fallback string
}

// WithFallbackKey wraps s. An empty key returns a store that behaves like s.
func WithFallbackKey(s Storage, key string) *KeyedStore {
	return &KeyedStore{Storage: s, fallback: strings.TrimSpace(key)}
}

func (k *KeyedStore) Load() (Config, error) {
	cfg, err := k.Storage.Load()
	if err != nil {
		return cfg, err
	}
	if !cfg.HasCredential() {
		cfg.APIKey = k.fallback
	}
	return cfg, nil
}

func (k *KeyedStore) Save(cfg Config) error {
	if k.fallback != "" && strings.TrimSpace(cfg.APIKey) == k.fallback {
		cfg.APIKey = ""
	}
	return k.Storage.Save(cfg)
}
