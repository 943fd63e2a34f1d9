package auth

// Cfg is the immutable gateway configuration, built once at process start
// and shared read-only across concurrent requests.
type Cfg struct {
	SigningKey      string
	TokenExpiration int
	Issuer          string
	Audience        []string
	UserStoreURL    string
	MailOrigin      string
}

// Verify interface compliance
var _ Config = (*Cfg)(nil)

func (c *Cfg) GetSigningKey() string { return c.SigningKey }

func (c *Cfg) GetTokenExpiration() int { return c.TokenExpiration }

func (c *Cfg) GetIssuer() string { return c.Issuer }

func (c *Cfg) GetAudience() []string { return c.Audience }

func (c *Cfg) GetUserStoreURL() string { return c.UserStoreURL }

func (c *Cfg) GetMailOrigin() string { return c.MailOrigin }
