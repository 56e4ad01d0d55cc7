package postgresql

import "github.com/google/uuid"

// isUUID reports whether id can be bound to a UUID column. Ids that cannot
// are reported as missing rows instead of driver encode errors.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
