package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

func TestStringField(t *testing.T) {
	obj := map[string]interface{}{
		"name":  "hello",
		"count": 42,
		"empty": nil,
	}
	assert.Equal(t, "hello", stringField(obj, "name"))
	assert.Equal(t, "", stringField(obj, "count"))
	assert.Equal(t, "", stringField(obj, "missing"))
}

func TestField_DottedPath(t *testing.T) {
	r := models.Resource{
		"profile_setting": map[string]interface{}{
			"group": []interface{}{"best-practice"},
		},
		"protocol": models.Resource{
			"ikev2": map[string]interface{}{"ike_crypto_profile": "suite-b"},
		},
	}
	assert.Equal(t, []string{"best-practice"}, stringValues(r, "profile_setting.group"))
	assert.Equal(t, []string{"suite-b"}, stringValues(r, "protocol.ikev2.ike_crypto_profile"))
	assert.Nil(t, field(r, "profile_setting.group.deeper"))
	assert.Nil(t, field(r, "nosection.name"))
	assert.True(t, hasField(r, "protocol.ikev2"))
	assert.False(t, hasField(r, "protocol.ikev1"))
}

func TestStringValues(t *testing.T) {
	tests := []struct {
		name   string
		value  interface{}
		expect []string
	}{
		{"single string", "web", []string{"web"}},
		{"empty string", "", nil},
		{"string slice", []string{"a", "b"}, []string{"a", "b"}},
		{"interface slice", []interface{}{"a", 3, "b"}, []string{"a", "b"}},
		{"named maps", []interface{}{map[string]interface{}{"name": "gw-1"}}, []string{"gw-1"}},
		{"number", 42, nil},
		{"missing", nil, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := models.Resource{}
			if tc.value != nil {
				r["f"] = tc.value
			}
			assert.Equal(t, tc.expect, stringValues(r, "f"))
		})
	}
}
