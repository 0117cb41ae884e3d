package models

import "time"

// UnknownOwnerName is reported when a database's owner has no users row.
const UnknownOwnerName = "Unknown"

// DatabaseRecord is one row of the databases table.
type DatabaseRecord struct {
	ID            string
	Name          string
	Description   *string
	Type          *string
	IsPublic      bool
	LastUpdated   *time.Time
	DocumentCount *int64
	UsageCount    *int64
	Rating        *float64
	OwnerID       *string
	VectorSearch  VectorSearchColumns
}

// VectorSearchColumns are the vector_search_* columns, copied verbatim into the listing.
type VectorSearchColumns struct {
	Enabled                 bool
	Endpoint                *string
	Key                     *string
	Index                   *string
	SemanticConfig          *string
	EmbeddingDeployment     *string
	EmbeddingEndpoint       *string
	EmbeddingKey            *string
	StorageEndpoint         *string
	StorageAccessKey        *string
	StorageConnectionString *string
}

// ContributorLink is a database_contributors row joined with the user's name.
type ContributorLink struct {
	DatabaseID string
	UserID     string
	Name       string
}

// DatabaseFile is one row of database_files.
type DatabaseFile struct {
	DatabaseID string
	Name       string
	Size       *int64
	Type       *string
	UploadedAt *time.Time
}

// DatabaseTag is one row of database_tags.
type DatabaseTag struct {
	DatabaseID string
	Tag        string
}

// CatalogListing is the list_db response envelope.
type CatalogListing struct {
	Databases []CatalogEntry `json:"databases"`
}

// CatalogEntry is the denormalized view of one database record.
type CatalogEntry struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   *string       `json:"description"`
	Type          *string       `json:"type"`
	Owner         Owner         `json:"owner"`
	Contributors  []Contributor `json:"contributors"`
	IsPublic      bool          `json:"isPublic"`
	Tags          []string      `json:"tags"`
	LastUpdated   *string       `json:"lastUpdated"`
	DocumentCount *int64        `json:"documentCount"`
	UsageCount    *int64        `json:"usageCount"`
	Rating        *float64      `json:"rating"`
	IsSelected    bool          `json:"isSelected"`
	Files         []FileEntry   `json:"files"`

	VectorSearchEnabled                 bool    `json:"VECTOR_SEARCH_ENABLED"`
	VectorSearchEndpoint                *string `json:"VECTOR_SEARCH_ENDPOINT"`
	VectorSearchKey                     *string `json:"VECTOR_SEARCH_KEY"`
	VectorSearchIndex                   *string `json:"VECTOR_SEARCH_INDEX"`
	VectorSearchSemanticConfig          *string `json:"VECTOR_SEARCH_SEMANTIC_CONFIG"`
	VectorSearchEmbeddingDeployment     *string `json:"VECTOR_SEARCH_EMBEDDING_DEPLOYMENT"`
	VectorSearchEmbeddingEndpoint       *string `json:"VECTOR_SEARCH_EMBEDDING_ENDPOINT"`
	VectorSearchEmbeddingKey            *string `json:"VECTOR_SEARCH_EMBEDDING_KEY"`
	VectorSearchStorageEndpoint         *string `json:"VECTOR_SEARCH_STORAGE_ENDPOINT"`
	VectorSearchStorageAccessKey        *string `json:"VECTOR_SEARCH_STORAGE_ACCESS_KEY"`
	VectorSearchStorageConnectionString *string `json:"VECTOR_SEARCH_STORAGE_CONNECTION_STRING"`
}

// Owner identifies the owning user. ID is null when the row has no owner_id.
type Owner struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

// Contributor is a user with write access to a database.
type Contributor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FileEntry is a file uploaded into a database.
type FileEntry struct {
	Name       string  `json:"name"`
	Size       *int64  `json:"size"`
	Type       *string `json:"type"`
	UploadedAt *string `json:"uploadedAt"`
}

// FormatTimestamp renders t as a zone-less ISO-8601 timestamp, adding
// microseconds only when they are non-zero. Nil stays nil.
func FormatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}

	layout := "2006-01-02T15:04:05"
	if t.Nanosecond()/1000 != 0 {
		layout = "2006-01-02T15:04:05.000000"
	}
	s := t.Format(layout)
	return &s
}
