package dto

// AggregatedItemResponse is a per-product amount still to cook.
type AggregatedItemResponse struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Pending     int    `json:"pending"`
	Cooking     int    `json:"cooking"`
}
