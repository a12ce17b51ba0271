package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlexInt_Unmarshal(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		value   int
		valid   bool
	}{
		{"number", `{"duration": 45}`, 45, true},
		{"numeric string", `{"duration": "90"}`, 90, true},
		{"float", `{"duration": 30.0}`, 30, true},
		{"null", `{"duration": null}`, 0, false},
		{"absent", `{}`, 0, false},
		{"non-numeric string", `{"duration": "soon"}`, 0, false},
		{"empty string", `{"duration": ""}`, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req GeneratePassRequest
			assert.NoError(t, json.Unmarshal([]byte(tc.payload), &req))

			// a JSON null leaves the pointer nil, same as an absent field
			if tc.name == "absent" || tc.name == "null" {
				assert.Nil(t, req.Duration)
				return
			}
			if assert.NotNil(t, req.Duration) {
				assert.Equal(t, tc.valid, req.Duration.Valid)
				assert.Equal(t, tc.value, req.Duration.Value)
			}
		})
	}
}
