package llmerrors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"auth status", fmt.Errorf("request failed: 401 Unauthorized"), KindAuth},
		{"bad key", fmt.Errorf("invalid api key provided"), KindAuth},
		{"rate limit", fmt.Errorf("429 too many requests"), KindRateLimit},
		{"quota", fmt.Errorf("you have exceeded your quota"), KindQuota},
		{"context length", fmt.Errorf("prompt exceeds maximum context window"), KindContextTooLong},
		{"network", fmt.Errorf("dial tcp: connection refused"), KindNetwork},
		{"server", fmt.Errorf("503 service unavailable"), KindServer},
		{"overloaded", fmt.Errorf("the model is overloaded"), KindServer},
		{"cancelled context", context.Canceled, KindNetwork},
		{"unrecognized", fmt.Errorf("something odd happened"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
