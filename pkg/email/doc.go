// Package email sends transactional email.
//
// Sender has two implementations: a Postmark-backed sender for real delivery
// and LogSender, which only logs, for environments without a Postmark token.
//
//	var sender email.Sender = email.NewLogSender(log)
//	if cfg.Enabled() {
//		sender = email.MustNewPostmarkSender(cfg)
//	}
//	err := sender.Send(ctx, email.Message{To: "anna@example.com", Subject: "Plan changed", HTMLBody: body})
package email
