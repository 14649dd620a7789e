// Package api serves botanize over HTTP and defines its wire-format types.
//
// # Routes
//
//	GET    /api/organs              organs with question counts
//	GET    /api/questions/:organ    question cards with vocabulary options
//	POST   /api/observe             rank species against trait answers
//	POST   /api/adjust              re-score provider candidates with verified traits
//	POST   /api/identify            multipart photo identification
//	GET    /api/quota               today's answer usage
//	POST   /api/quota/answer        consume one answer (402 when exhausted)
//	GET    /api/species?q=          species search by name, family, or description
//	GET    /api/species/:name       species profile (locked species return 403)
//	GET    /api/journal             saved identifications, newest first
//	DELETE /api/journal/:id         remove a saved identification
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript consumers and are built from
// internal types by the From* converters. Errors are returned as
// {"error": "..."}; quota denials use 402 and locked features use 403.
// When Deps.Token is set every route requires "Authorization: Bearer <token>"
// and answers 401 otherwise.
//
// The observe endpoint is stateless: clients charge answers through
// /api/quota/answer as the user answers, then post the whole selection.
package api
