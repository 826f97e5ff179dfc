package types

// ManifestIdentifier addresses a single manifest.
type ManifestIdentifier struct {
	ID int64
}

// ConfirmManifestInput carries the operator approving a manifest.
type ConfirmManifestInput struct {
	ID    int64
	Actor string
}

// ProcessManifestInput starts a fiscal run over a confirmed manifest.
type ProcessManifestInput struct {
	ManifestID int64
	Actor      string
}
