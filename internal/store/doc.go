// Package store defines the persistence interfaces and error sentinels of
// the study engine. Implementations live under internal/platform; services
// depend only on the interfaces here.
package store
