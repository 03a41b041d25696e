package commerce

import "context"

// EntitlementService decides whether a user may access catalog nodes.
// A node that is not owned is a false result, never an error.
type EntitlementService interface {
	// HasAccess checks one node. An empty userID (anonymous) is always false.
	HasAccess(ctx context.Context, userID, nodeID string) (bool, error)

	// HasAccessBulk checks many nodes against a single ownership read.
	// The result has an entry for every requested id.
	HasAccessBulk(ctx context.Context, userID string, nodeIDs []string) (map[string]bool, error)
}
