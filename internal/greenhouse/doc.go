// Package greenhouse holds the domain core of Greenhouse Core: greenhouses
// and their ownership, setpoints with validation, telemetry and connection
// event reads, the plant/timezone catalog, and the MQTT setpoint notifier.
//
// Repositories are plain SQL over the shared SQLite handle. Ownership is
// not enforced here: repositories fetch by ID and the API layer compares
// the owner against the authenticated user, so the 403-vs-404 distinction
// stays in one place.
package greenhouse
