// Package http exposes the placement portal services as a JSON API.
//
// The router serves:
//   - GET /health: liveness and store reachability.
//   - POST /api/auth/register, POST /api/auth/login: account creation and
//     token issuance. Both are rate limited per client address. Login responds
//     with {"token","expiresAt","user"} and also sets a `token` cookie.
//   - GET /api/auth/me, PUT /api/auth/profile, PUT /api/auth/resume: the
//     caller's own account.
//   - GET /api/jobs, POST /api/jobs, GET /api/jobs/{id}: job postings.
//   - /api/applications/...: applying, listings, officer transitions and notes,
//     and the officer dashboard at GET /api/applications/stats.
//   - GET /api/stats, GET /api/stats/live, GET /api/public/stats: headline
//     counters, their Server-Sent Events stream and the public report.
//   - POST /api/contact, GET /api/messages: the contact form.
//
// Requests carry a bearer token in the Authorization header or the `token`
// cookie. Errors use the errorResponse body defined in responder.go. DTOs live
// in dto.go so tests and handlers share one definition of the wire format.
package http
