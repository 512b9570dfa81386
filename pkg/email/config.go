package email

// Config holds email delivery settings. Without a Postmark server token the
// service falls back to the log sender.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"billing@localhost"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"support@localhost"`
}

// Enabled reports whether outbound delivery through Postmark is configured.
func (c Config) Enabled() bool {
	return c.PostmarkServerToken != ""
}
