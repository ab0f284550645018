package response

import (
	"github.com/one-of-one-tools/marketsync/src/ingest"
)

type Import struct {
	Success bool           `json:"success"`
	Result  *ingest.Result `json:"result"`
}
