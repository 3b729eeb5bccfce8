package instance

import "github.com/angelmondragon/anuncios-backend/pkg/env"

// GetID identifies the running process in logs. The platform dyno name wins
// over ANUNCIOS_INSTANCE_ID; fallback is used when neither is set.
func GetID(fallback string) string {
	return env.First(fallback, "DYNO", "ANUNCIOS_INSTANCE_ID")
}
