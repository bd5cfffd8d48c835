package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConditionText(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "快晴"},
		{1, "晴れ"},
		{2, "晴れ"},
		{3, "くもり"},
		{45, "霧"},
		{51, "霧雨"},
		{61, "雨"},
		{71, "雪"},
		{80, "にわか雨"},
		{85, "にわか雪"},
		{95, "雷雨"},
		{200, "不明"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ConditionText(tt.code), "code %d", tt.code)
	}
}
