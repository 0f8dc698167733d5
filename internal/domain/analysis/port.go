package analysis

import "context"

// Repository port for the persisted analysis collection.
//
// Get returns ErrNotFound for unknown ids. Delete on an unknown id is a
// no-op. List is parse-failure tolerant: an unreadable backing store yields
// an empty list, not an error. Mutations persist before returning; a failed
// save or delete leaves the collection untouched.
type Repository interface {
	Save(ctx context.Context, a *StoredAnalysis) error
	Get(ctx context.Context, id AnalysisID) (*StoredAnalysis, error)
	List(ctx context.Context) ([]*StoredAnalysis, error)
	Delete(ctx context.Context, id AnalysisID) error
	DeleteAll(ctx context.Context) error
}

// ArtifactStore port for publishing exported analysis documents.
type ArtifactStore interface {
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
