package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfig(t *testing.T) {
	eventData := map[string]interface{}{
		"client": map[string]interface{}{
			"name":  "Acme Corp",
			"email": "billing@acme.test",
		},
		"invoice": map[string]interface{}{
			"total": float64(149.5),
		},
		"overdue": true,
	}

	t.Run("replaces placeholders in nested values", func(t *testing.T) {
		config := map[string]interface{}{
			"subject": "Invoice for {{trigger.client.name}}",
			"to":      "{{trigger.client.email}}",
			"nested": map[string]interface{}{
				"body": "Total due: {{trigger.invoice.total}} (overdue: {{trigger.overdue}})",
			},
			"tags":  []interface{}{"billing", "{{trigger.client.name}}"},
			"count": float64(3),
		}

		resolved := ResolveConfig(config, eventData)

		assert.Equal(t, "Invoice for Acme Corp", resolved["subject"])
		assert.Equal(t, "billing@acme.test", resolved["to"])
		assert.Equal(t, "Total due: 149.5 (overdue: true)", resolved["nested"].(map[string]interface{})["body"])
		assert.Equal(t, "Acme Corp", resolved["tags"].([]interface{})[1])
		assert.Equal(t, float64(3), resolved["count"])
	})

	t.Run("unresolved placeholder stays intact", func(t *testing.T) {
		config := map[string]interface{}{
			"subject": "Hello {{trigger.missing.path}}",
		}
		resolved := ResolveConfig(config, eventData)
		assert.Equal(t, "Hello {{trigger.missing.path}}", resolved["subject"])
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		config := map[string]interface{}{
			"subject": "{{trigger.client.name}}",
			"nested":  map[string]interface{}{"v": "{{trigger.client.email}}"},
		}
		_ = ResolveConfig(config, eventData)
		assert.Equal(t, "{{trigger.client.name}}", config["subject"])
		assert.Equal(t, "{{trigger.client.email}}", config["nested"].(map[string]interface{})["v"])
	})

	t.Run("nil config", func(t *testing.T) {
		require.Nil(t, ResolveConfig(nil, eventData))
	})

	t.Run("multiple placeholders in one string", func(t *testing.T) {
		config := map[string]interface{}{
			"msg": "{{trigger.client.name}} owes {{trigger.invoice.total}}",
		}
		resolved := ResolveConfig(config, eventData)
		assert.Equal(t, "Acme Corp owes 149.5", resolved["msg"])
	})
}
