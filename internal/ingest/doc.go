// Package ingest consumes controller-originated MQTT traffic and turns
// it into rows the API serves.
//
// Two subscriptions run for the life of the process:
//
//	greenhouse/+/telemetry  sensor readings, validated and stored with
//	                        duplicate suppression on (greenhouse, time,
//	                        sequence)
//	greenhouse/+/status     online/offline notices, recorded as
//	                        connectivity intervals
//
// Validation is deliberately strict: readings from unknown greenhouses,
// mismatched device IDs, non-positive sequences, or timestamps further
// than the configured skew into the future are dropped and counted, never
// stored. A malfunctioning controller cannot corrupt history, only lose
// its own readings.
package ingest
