// Package http exposes the trip planner as a local JSON API.
//
// The router serves the following endpoints:
//   - GET /holidays?year=&window=: school holiday periods of the configured
//     region with temporal status, the unfiltered list and the selectable years.
//   - GET /departure-cities: departure hubs for flight searches.
//   - GET /destinations, GET /destinations/{id}: destinations with overrides
//     applied and a has_override marker.
//   - PUT /destinations/{id}/overrides: body {"field","value"} overrides one
//     editable field. DELETE removes every override of the destination.
//   - GET /destinations/{id}/original?field=: catalog value of a field.
//   - POST /sessions, GET|PATCH|DELETE /sessions/{id}: search sessions. PATCH
//     accepts any subset of the `sessionPatchRequest` fields including
//     holiday_id, which selects the dates of a holiday period.
//   - POST /sessions/{id}/generate: body {"destination_id"} derives the links.
//   - POST /sessions/{id}/open/{index}, POST /sessions/{id}/open-all and
//     POST /sessions/{id}/copy: desktop actions on the last generated links.
//
// Errors are returned as {"message","errors"} with German messages. Request
// and response DTOs live next to their handlers.
package http
