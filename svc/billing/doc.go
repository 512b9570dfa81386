// Package billing is the payment-processor side of member subscriptions.
//
// It defines the read-through projections exposed to clients (Plan, Price,
// Card, Customer, Invoice, Intent), the coded error kinds the HTTP boundary
// maps to responses, the Processor port with its Stripe adapter, the plan
// catalog (projection plus Redis cache) and Tasks, the factory that builds
// one task per processor call.
//
// Every task owns exactly one processor call. Missing processor objects
// surface as the matching NotFound kind and rejected subscription changes
// as ErrPaymentFailed; nothing is retried.
package billing
