// Package handler adapts typed handler functions to net/http.
//
// Wrap binds the request into a struct with the configured binders, calls the
// handler and renders the Response it returns. Errors from binding,
// handlers and rendering go through one error handler that writes
//
//	{"error": {"code": "...", "message": "...", "data": ...}}
//
// Domain errors choose their status and code by implementing
// HTTPStatus() int and ErrorCode() string, and may attach diagnostic data
// through ErrorData() any. Anything else is a 500 with a generic message.
//
//	type planRequest struct {
//		PlanID string `path:"planId"`
//	}
//
//	getPlan := func(ctx handler.Context, req planRequest) handler.Response {
//		plan, err := plans.Get(ctx, req.PlanID)
//		if err != nil {
//			return handler.Error(err, log)
//		}
//		return handler.JSON(plan)
//	}
//
//	r.Get("/plans/{planId}", handler.Wrap(handler.HandlerFunc[handler.Context, planRequest](getPlan),
//		handler.WithBinders[handler.Context, planRequest](binder.Path(chi.URLParam)),
//	))
package handler
