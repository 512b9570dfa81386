// Package member is a minimal member subsystem: the member record and its
// store, the CreateMember task that other packages hook onto, and the
// request plumbing that turns an incoming member id into the actor of a
// task sequence.
//
// Requests are authenticated upstream; Middleware only resolves the member
// id carried by the request (by default the X-Member-ID header) and loads
// the member into the context.
//
//	r.Use(member.Middleware(member.NewHeaderResolver(""), member.StoreProvider(store, pool)))
//	r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
//		actor, ok := member.ActorFromContext(r.Context())
//		...
//	})
package member
