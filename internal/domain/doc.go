// Package domain defines the core business entities of the study engine:
// cards, review records (views), users, and the grade/maturity enumerations.
// Entities validate themselves; persistence and scheduling logic live in
// other packages.
package domain
