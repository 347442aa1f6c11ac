// Package domain defines the core business entities of the task-tracking
// backend (users and tasks) along with their validation rules and the
// common domain errors shared across the application.
package domain
