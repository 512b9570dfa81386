// Package validator checks task inputs with composable rules.
//
// Each rule is evaluated eagerly and Apply collects every failure:
//
//	err := validator.Apply(
//		validator.RequiredString("priceId", in.PriceID),
//		validator.ValidEmail("email", in.Email),
//	)
//
// The returned ValidationErrors lists failures in rule order. Failures with
// CodeRequired are reported by the task runner as missing fields.
package validator
