// Package task runs short, request-scoped chains of side-effecting steps.
//
// A Task wraps exactly one external call (a store read/write or a call to the
// payment processor) behind a typed Operation. Tasks are grouped into an ordered
// sequence and handed to a Runner, which executes them strictly one after
// another inside a single transaction.
//
// # Deferred input
//
// Inputs are assigned when a task is built, before anything runs. When a step
// depends on the output of an earlier one, wrap it with Defer. The Resolver is
// evaluated by the Runner right before the step runs, after every earlier step
// has completed or been skipped. It returns the merged input and may ask the
// Runner to skip the step:
//
//	getSub := subscriptions.NewGetSubscription(actor, subscription.GetInput{MemberID: actor.ID})
//	create := task.Defer(stripeTasks.NewCreateSubscription(actor, in),
//		func(in billing.CreateSubscriptionInput) (billing.CreateSubscriptionInput, bool, error) {
//			rec := getSub.Result()
//			if rec.SubscriptionID != nil {
//				return in, true, nil // already subscribed
//			}
//			in.CustomerID = *rec.CustomerID
//			return in, false, nil
//		})
//
//	res, err := runner.RunSequence(ctx, getSub, create)
//
// A resolver must only read Result or Skipped of strictly earlier steps.
//
// # Validation
//
// WithValidator checks the final input once, right before the operation.
// Required-rule failures surface as *MissingFieldError. When a Resolver built
// the input, any failure is wrapped in *ResolvedInputError: the caller sent
// nothing wrong and the sequence is miswired.
//
// # Transactions
//
// RunSequence and RunSingle open one transaction through the Transactor and
// share it across all steps; the first error aborts the sequence, rolls the
// transaction back and is returned to the caller unchanged. RunInline executes
// steps inside a transaction the caller already owns. Lifecycle hooks registered
// on another subsystem's task use it so their writes see rows that are not
// committed yet.
//
// # Hooks
//
// Hooks registers callbacks by task name. Post hooks run in the same
// transaction right after the named task succeeds, which is how one subsystem
// attaches work to another without the latter depending on it.
package task
