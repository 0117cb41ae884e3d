package models

// Fixed parameters for the resources created by the provisioner.
const (
	StorageSKUStandardLRS = "Standard_LRS"
	StorageKindV2         = "StorageV2"
	SearchSKUStandard     = "S1"
	SearchKind            = "Search"
)

// ProvisionRequest is a validated create_db request. It is consumed once and never persisted.
type ProvisionRequest struct {
	Title       string
	Description string
	Tags        []string
}

// StorageConfig describes a provisioned storage account. Key is the primary
// account key; it is returned to the caller and never kept in process state.
type StorageConfig struct {
	URL  string `json:"AZURE_STORAGE_URL"`
	Name string `json:"AZURE_STORAGE_NAME"`
	Key  string `json:"AZURE_STORAGE_KEY"`
}

// VectorSearchConfig describes a provisioned search service and its index.
type VectorSearchConfig struct {
	Endpoint  string `json:"search_endpoint"`
	AdminKey  string `json:"search_admin_key"`
	IndexName string `json:"index_name"`
}

// ProvisionResult is the create_db response body.
type ProvisionResult struct {
	Storage      *StorageConfig      `json:"storage"`
	VectorSearch *VectorSearchConfig `json:"vector_search"`
}

// StorageCredentials is passed explicitly to every operation that signs blob requests.
type StorageCredentials struct {
	AccountName string
	AccountKey  string
}

// StorageAccountSpec holds the creation parameters for a storage account.
type StorageAccountSpec struct {
	Location  string
	SKU       string
	Kind      string
	HTTPSOnly bool
}

// SearchServiceSpec holds the creation parameters for a search service account.
type SearchServiceSpec struct {
	Location string
	SKU      string
	Kind     string
}
