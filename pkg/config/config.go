package config

import (
	"github.com/kelseyhightower/envconfig"

	pkgtls "github.com/retail-dashboard/ledger-service/pkg/tls"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"3000"`
	APIBase  string `envconfig:"API_BASE" default:"/api"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// LocalMode persists to flat JSON files under DataDir instead of
	// DynamoDB.
	LocalMode bool   `envconfig:"LOCAL_MODE" default:"true"`
	DataDir   string `envconfig:"DATA_DIR" default:"./data"`

	AWSRegion        string `envconfig:"AWS_REGION" default:"ap-northeast-2"`
	DynamoEndpoint   string `envconfig:"DYNAMO_ENDPOINT" default:""`
	ProductTableName string `envconfig:"PRODUCT_TABLE_NAME" default:"products-table"`
	ReviewTableName  string `envconfig:"REVIEW_TABLE_NAME" default:"reviews-table"`
	OrderTableName   string `envconfig:"ORDER_TABLE_NAME" default:"orders-table"`

	// Kafka integration stays off unless brokers are configured.
	KafkaBrokers     string `envconfig:"KAFKA_BROKERS" default:""`
	KafkaGroupID     string `envconfig:"KAFKA_GROUP_ID" default:"ledger-service"`
	OrderEventsTopic string `envconfig:"ORDER_EVENTS_TOPIC" default:"order-events"`
	StockEventsTopic string `envconfig:"STOCK_EVENTS_TOPIC" default:"stock-events"`
	RestockTopic     string `envconfig:"RESTOCK_TOPIC" default:"restock-events"`

	TLS pkgtls.TLSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
