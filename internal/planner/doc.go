// Package planner is the application service layer: it validates input,
// classifies failures, and orchestrates the store for programs, properties,
// wing assignments and checklists. Handlers talk to planner services, never
// to the store directly.
package planner
