package domain

// Product is a catalog product record as the retrieval layer sees it.
// Brand, Category and Description are optional and may be empty.
type Product struct {
	ID          string
	Name        string
	Brand       string
	Category    string
	Description string
	Price       float64
	Rating      float64
	ReviewCount int
	StockCount  int
}

// Recommendation is one ranked product returned to a caller, with the
// signals that produced its position.
type Recommendation struct {
	Product       Product
	SemanticScore float64
	KeywordScore  float64
	HybridScore   float64
}

// CatalogStats summarizes the catalog for the stats endpoint.
type CatalogStats struct {
	TotalProducts   int
	TotalCategories int
	AvgRating       float64
	AvgPrice        float64
	TopCategories   []string
}
