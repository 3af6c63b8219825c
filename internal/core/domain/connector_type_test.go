package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectorType_MissingKeys(t *testing.T) {
	ct := ConnectorType{
		ID: "notion",
		ConfigKeys: []ConfigKey{
			{Key: "root_page_ids", Required: true},
			{Key: "max_depth", Default: "3"},
		},
	}

	assert.Equal(t, []string{"root_page_ids"}, ct.MissingKeys(map[string]string{}))
	assert.Empty(t, ct.MissingKeys(map[string]string{"root_page_ids": "abc"}))
}

func TestConnectorType_WebURLResolver(t *testing.T) {
	ct := ConnectorType{
		WebURLResolver: func(uri string, _ map[string]any) string { return "https://example.com/" + uri },
	}

	assert.Equal(t, "https://example.com/x", ct.WebURLResolver("x", nil))
}
