package tool

import "github.com/google/uuid"

// GenerateUUIDV7 returns a time-ordered UUID. Used for primary keys, trace
// ids and generated merchant keys.
func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}
