// Package api provides the HTTP handlers for the task-tracking API:
// authentication, task CRUD, and file transfer. Handlers decode and
// validate requests, delegate to the service layer, and map errors to
// status codes through MapErrorToStatusCode so internal details never
// reach clients.
package api
