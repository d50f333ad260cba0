// Package metadata resolves the identity of the task the process runs in.
//
// On ECS the identity comes from the container metadata endpoint advertised in
// ECS_CONTAINER_METADATA_URI_V4 (or ECS_CONTAINER_METADATA_URI). The endpoint
// is fetched once per shutdown; the task ID is the last segment of the task
// ARN label and the cluster comes from the cluster label:
//
//	r := metadata.NewECSResolver(cfg.MetadataEndpoint)
//	doc, err := r.Resolve(ctx)
//	if errors.Is(err, metadata.ErrNotAvailable) {
//	    // not running on ECS, nothing to classify
//	}
//
// On Kubernetes, PodResolver uses the pod name and namespace exposed through
// the downward API.
//
// Attribute values are restricted to letters, digits, underscore, hyphen,
// colon and slash. Documents that fail a typed JSON decode are scanned as text
// and the last occurrence of a key wins.
package metadata
