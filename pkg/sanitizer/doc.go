// Package sanitizer normalises free-form input before it is validated,
// stored or forwarded to the payment processor.
//
// Helpers never fail. They return the cleanest value they can produce and
// combine through Apply and Compose:
//
//	name := sanitizer.Apply(raw,
//		sanitizer.RemoveControlChars,
//		sanitizer.SingleLine,
//	)
//	email := sanitizer.NormalizeEmail(rawEmail)
package sanitizer
