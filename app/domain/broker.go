package domain

import "context"

type StockMessage struct {
	ProductID string `json:"product_id"`
	Available int64  `json:"available"`
}

type BrokerPublisher interface {
	PublishStockAvailable(ctx context.Context, data StockMessage) error
}
