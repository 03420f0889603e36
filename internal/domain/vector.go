package domain

import "time"

// ProductVector is one indexed product embedding. SearchableText is the
// exact string that was embedded, kept so drift against the current
// catalog row can be detected.
type ProductVector struct {
	ProductID      string    `json:"product_id"`
	ProductName    string    `json:"product_name"`
	Embedding      []float32 `json:"embedding"`
	SearchableText string    `json:"searchable_text"`
	CreatedAt      time.Time `json:"created_at"`
}

// ScoredProduct is an ephemeral vector search hit.
type ScoredProduct struct {
	ProductID      string
	ProductName    string
	SemanticScore  float64
	SearchableText string
}

// IndexStats is a snapshot of the vector index state for observability.
type IndexStats struct {
	Ready              bool `json:"ready"`
	TotalProducts      int  `json:"total_products"`
	EmbeddingDimension int  `json:"embedding_dimension"`
	CacheExists        bool `json:"cache_exists"`
}
