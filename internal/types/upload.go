package types

// DatasetFile is the metadata record kept for an uploaded dataset. Bytes live
// in the bucket under Key; this record lives in the per-user uploads
// collection.
type DatasetFile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Key        string `json:"key"`
	URL        string `json:"url"`
	SizeBytes  int64  `json:"size_bytes"`
	UploadedAt string `json:"uploaded_at"`
}
