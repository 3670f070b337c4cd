package config

import (
	"github.com/jomei/notionapi"
)

func NewNotionClient(cfg *Config) *notionapi.Client {
	return notionapi.NewClient(notionapi.Token(cfg.NotionAPIKey))
}
