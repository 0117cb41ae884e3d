// Package search talks to the Azure AI Search data plane to manage indexes.
package search

// Index schema constants for the RAG vector index.
const (
	VectorDimensions    = 1536
	VectorAlgorithmName = "my-vector-config"
	VectorProfileName   = "my-vector-profile"
	ContentAnalyzer     = "en.lucene"

	hnswM              = 4
	hnswEfConstruction = 400
	hnswEfSearch       = 200
	hnswMetric         = "cosine"
)

// Field types used by the index.
const (
	TypeString           = "Edm.String"
	TypeSingleCollection = "Collection(Edm.Single)"
)

// Index is the index definition sent to PUT /indexes/{name}.
type Index struct {
	Name         string        `json:"name"`
	Fields       []Field       `json:"fields"`
	VectorSearch *VectorSearch `json:"vectorSearch,omitempty"`
}

// Field is a single index field. Unset attributes are left to service defaults.
type Field struct {
	Name                string `json:"name"`
	Type                string `json:"type"`
	Key                 bool   `json:"key,omitempty"`
	Searchable          *bool  `json:"searchable,omitempty"`
	Filterable          *bool  `json:"filterable,omitempty"`
	Facetable           *bool  `json:"facetable,omitempty"`
	Analyzer            string `json:"analyzer,omitempty"`
	Dimensions          int    `json:"dimensions,omitempty"`
	VectorSearchProfile string `json:"vectorSearchProfile,omitempty"`
}

// VectorSearch holds the algorithm configurations and the profiles that reference them.
type VectorSearch struct {
	Algorithms []VectorAlgorithm `json:"algorithms"`
	Profiles   []VectorProfile   `json:"profiles"`
}

// VectorAlgorithm is a named approximate nearest neighbour configuration.
type VectorAlgorithm struct {
	Name           string          `json:"name"`
	Kind           string          `json:"kind"`
	HNSWParameters *HNSWParameters `json:"hnswParameters,omitempty"`
}

// HNSWParameters tunes the HNSW graph.
type HNSWParameters struct {
	M              int    `json:"m"`
	EfConstruction int    `json:"efConstruction"`
	EfSearch       int    `json:"efSearch"`
	Metric         string `json:"metric"`
}

// VectorProfile binds vector fields to an algorithm configuration.
type VectorProfile struct {
	Name      string `json:"name"`
	Algorithm string `json:"algorithm"`
}

// NewVectorIndex returns the definition of the RAG index: a string key,
// English full-text content, two filterable metadata fields and a
// 1536-dimension embedding searched through a single HNSW profile.
func NewVectorIndex(name string) *Index {
	return &Index{
		Name: name,
		Fields: []Field{
			{Name: "id", Type: TypeString, Key: true},
			{Name: "content", Type: TypeString, Searchable: boolPtr(true), Analyzer: ContentAnalyzer},
			{Name: "metadata_author", Type: TypeString, Filterable: boolPtr(true), Facetable: boolPtr(true)},
			{Name: "metadata_category", Type: TypeString, Filterable: boolPtr(true), Facetable: boolPtr(true)},
			{
				Name:                "contentVector",
				Type:                TypeSingleCollection,
				Searchable:          boolPtr(true),
				Dimensions:          VectorDimensions,
				VectorSearchProfile: VectorProfileName,
			},
		},
		VectorSearch: &VectorSearch{
			Algorithms: []VectorAlgorithm{
				{
					Name: VectorAlgorithmName,
					Kind: "hnsw",
					HNSWParameters: &HNSWParameters{
						M:              hnswM,
						EfConstruction: hnswEfConstruction,
						EfSearch:       hnswEfSearch,
						Metric:         hnswMetric,
					},
				},
			},
			Profiles: []VectorProfile{
				{Name: VectorProfileName, Algorithm: VectorAlgorithmName},
			},
		},
	}
}

func boolPtr(b bool) *bool {
	return &b
}
