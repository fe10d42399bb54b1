package jwt

// Manager issues and verifies HS256 tokens. It is safe for concurrent use.
type Manager interface {
	GenerateToken(subject, role string) (string, error)
	Verify(token string) (Claims, error)
}

// New validates cfg and returns a Manager.
func New(cfg Config) (Manager, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &managerImpl{
		secretKey: []byte(cfg.SecretKey),
		issuer:    cfg.Issuer,
		ttl:       cfg.TTL,
		now:       timeNow,
	}, nil
}
