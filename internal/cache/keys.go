package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// FlowResultKey addresses the cached output of a flow for a given input.
func FlowResultKey(flow string, input []byte) string {
	sum := sha256.Sum256(input)
	return fmt.Sprintf("flow:%s:%s", flow, hex.EncodeToString(sum[:]))
}

func RateLimitKey(client string) string {
	return fmt.Sprintf("ratelimit:%s", client)
}
