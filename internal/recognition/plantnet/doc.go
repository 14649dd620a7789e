// Package plantnet is a thin client for the Pl@ntNet identification API.
//
// Client implements recognition.Recognizer: it posts one image and organ hint
// as multipart form data to /identify/all and maps the ranked results onto
// recognition.Candidate values. A 404 from the service means no species was
// recognised and is reported as an empty result rather than an error.
package plantnet
