// Package http exposes the Hacktown operations store over a JSON API routed
// with gorilla/mux.
//
// Public endpoints:
//   - POST /auth/login: body {"email","password"}. Response
//     {"access_token","token_type","expires_at","user"}; the token is also set
//     as the `hacktown_session` cookie.
//   - GET /healthz, GET /readyz (503 until the store has loaded), GET /metrics.
//
// Every other endpoint requires a session token in the Authorization header
// (Bearer) or the session cookie:
//   - POST /auth/refresh rotates the token, POST /auth/logout,
//     DELETE /auth/sessions/{token} (administrators).
//   - GET /dashboard/overview, /dashboard/charts, /dashboard/charts/{chart},
//     /dashboard/activity-types, /dashboard/filters, /dashboard/checklists.
//     The day, nucleo and structure query parameters filter the views.
//   - GET /venues-with-slots?day=, /computed-slots?day=,
//     /capacity?start=HH:MM&end=HH:MM, /store.
//   - GET|POST /venues, PUT|DELETE /venues/{id}, POST /venues/bulk,
//     GET /venues/next-code/{type|none}, POST /venues/{id}/apply-default-slots.
//   - GET|POST /slot-templates, PUT /slot-templates/{id},
//     DELETE /slot-templates/{id}?force=true, POST /slot-templates/batch-days.
//   - POST|PUT|DELETE /slots/{templateId}/days/{day}/activity.
//   - GET /event-config, PUT /event-config/days, PUT /event-config/dates,
//     PUT /venue-day-activities/{venueId}/{day}.
//   - GET /infrastructure, POST /infrastructure/batch,
//     GET|PUT|DELETE /venues/{id}/infrastructure, and the same shape for
//     audiovisual.
//   - POST /reports exports a dashboard report.
//   - GET /ws upgrades to a websocket that receives store change events.
//
// Errors are rendered as {"error_code","message","errors"} with Portuguese
// messages. Validation failures answer 422, integrity conflicts 409, expired
// sessions 401, backend failures 502 and an unloaded store 503.
package http
